package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/zhouzirui/happy-thoughts/backend/internal/model/thought"
	"github.com/zhouzirui/happy-thoughts/backend/internal/model/thought/thoughttest"
)

func newTestRepository(t *testing.T) *ThoughtRepository {
	t.Helper()
	repo, err := NewThoughtRepository(filepath.Join(t.TempDir(), "thoughts.db"))
	if err != nil {
		t.Fatalf("NewThoughtRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close(context.Background()) })
	return repo
}

func TestThoughtRepository(t *testing.T) {
	thoughttest.RunStoreTests(t, func(t *testing.T) thought.Store {
		return newTestRepository(t)
	})
}

func TestReopenKeepsThoughts(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "thoughts.db")

	repo, err := NewThoughtRepository(path)
	if err != nil {
		t.Fatalf("NewThoughtRepository: %v", err)
	}
	in := thought.New("persisted across restarts", time.UnixMilli(1700000000000))
	if err := repo.Insert(ctx, in); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	repo.Close(ctx)

	reopened, err := NewThoughtRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close(ctx)

	got, err := reopened.List(ctx, thought.ListLimit)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0] != in {
		t.Fatalf("expected %+v after reopen, got %+v", in, got)
	}
}
