package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zhouzirui/happy-thoughts/backend/internal/config"
	"github.com/zhouzirui/happy-thoughts/backend/internal/model/thought"
	"github.com/zhouzirui/happy-thoughts/backend/internal/repository/mongo"
	"github.com/zhouzirui/happy-thoughts/backend/internal/repository/sqlite"
)

// New opens the thought store selected by cfg.Backend.
func New(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (thought.Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Backend {
	case config.BackendMongo, "":
		db, err := mongo.NewDB(ctx, cfg.MongoURL, cfg.ConnectTimeout)
		if err != nil {
			return nil, err
		}
		repo, err := mongo.NewThoughtRepository(ctx, db)
		if err != nil {
			_ = db.Client().Disconnect(context.Background())
			return nil, err
		}
		logger.Info("using mongo thought store", zap.String("database", db.Name()))
		return repo, nil

	case config.BackendSQLite:
		repo, err := sqlite.NewThoughtRepository(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("using sqlite thought store", zap.String("path", cfg.SQLitePath))
		return repo, nil

	case config.BackendMemory:
		logger.Warn("using in-memory thought store, data is lost on restart")
		return thought.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
