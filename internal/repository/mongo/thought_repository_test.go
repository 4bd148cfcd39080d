package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zhouzirui/happy-thoughts/backend/internal/model/thought"
	"github.com/zhouzirui/happy-thoughts/backend/internal/model/thought/thoughttest"
)

// These tests need a running MongoDB, e.g.
//
//	MONGO_TEST_URL=mongodb://localhost:27017 go test ./internal/repository/mongo/
func testClient(t *testing.T) *mongo.Client {
	t.Helper()
	url := os.Getenv("MONGO_TEST_URL")
	if url == "" {
		t.Skip("MONGO_TEST_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("ping: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return client
}

func TestThoughtRepository(t *testing.T) {
	client := testClient(t)
	n := 0

	thoughttest.RunStoreTests(t, func(t *testing.T) thought.Store {
		n++
		db := client.Database(fmt.Sprintf("happy_thoughts_test_%d_%d", time.Now().UnixNano(), n))
		t.Cleanup(func() { _ = db.Drop(context.Background()) })

		repo, err := NewThoughtRepository(context.Background(), db)
		if err != nil {
			t.Fatalf("NewThoughtRepository: %v", err)
		}
		return repo
	})
}

func TestNewDBUsesDatabaseFromURL(t *testing.T) {
	url := os.Getenv("MONGO_TEST_URL")
	if url == "" {
		t.Skip("MONGO_TEST_URL not set")
	}

	db, err := NewDB(context.Background(), url, 5*time.Second)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	defer db.Client().Disconnect(context.Background())

	if db.Name() == "" {
		t.Fatal("expected a database name")
	}
}

func TestNewDBRejectsInvalidURL(t *testing.T) {
	if _, err := NewDB(context.Background(), "postgres://nope", time.Second); err == nil {
		t.Fatal("expected error for non-mongo url")
	}
}

func TestObjectIDRejectsMalformed(t *testing.T) {
	if _, err := objectID("not-an-id"); err == nil {
		t.Fatal("expected error")
	}
	id := thought.NewID()
	oid, err := objectID(id)
	if err != nil {
		t.Fatalf("objectID: %v", err)
	}
	if oid.Hex() != id.String() {
		t.Fatalf("expected %s, got %s", id, oid.Hex())
	}
}
