package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/happy-thoughts/backend/internal/config"
	"github.com/zhouzirui/happy-thoughts/backend/internal/model/thought"
	"github.com/zhouzirui/happy-thoughts/backend/internal/repository/sqlite"
)

func TestNewMemoryStore(t *testing.T) {
	store, err := New(context.Background(), config.StoreConfig{Backend: config.BackendMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &thought.MemoryStore{}, store)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestNewSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "thoughts.db")

	store, err := New(ctx, config.StoreConfig{Backend: config.BackendSQLite, SQLitePath: path}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(ctx) })

	assert.IsType(t, &sqlite.ThoughtRepository{}, store)
	require.NoError(t, store.Insert(ctx, thought.New("stored on disk", time.Now())))

	list, err := store.List(ctx, thought.ListLimit)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "stored on disk", list[0].Message)
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), config.StoreConfig{Backend: "redis"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
}

func TestNewMongoRejectsBadURL(t *testing.T) {
	cfg := config.StoreConfig{Backend: config.BackendMongo, MongoURL: "postgres://nope", ConnectTimeout: time.Second}
	_, err := New(context.Background(), cfg, nil)
	require.Error(t, err)
}
