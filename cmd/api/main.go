package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zhouzirui/happy-thoughts/backend/internal/config"
	"github.com/zhouzirui/happy-thoughts/backend/internal/handler"
	"github.com/zhouzirui/happy-thoughts/backend/internal/observability"
	"github.com/zhouzirui/happy-thoughts/backend/internal/repository"
	"github.com/zhouzirui/happy-thoughts/backend/internal/service/feed"
	"github.com/zhouzirui/happy-thoughts/backend/internal/service/thought"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Debug("no .env file loaded, using system environment only", zap.Error(envErr))
	}

	store, err := repository.New(ctx, cfg.Store, logger.Named("store"))
	if err != nil {
		logger.Fatal("failed to open thought store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}

	hub := feed.NewHub(cfg.Feed.Buffer, logger.Named("feed"))

	var metrics *observability.Collector
	if cfg.Metrics.Enabled {
		metrics = observability.NewCollector("happy_thoughts")
	}

	thoughtService := thought.NewService(store, hub, metrics, logger.Named("thoughts"))

	router := handler.NewRouter(handler.Dependencies{
		Thoughts:       thoughtService,
		Feed:           hub,
		Metrics:        metrics,
		Logger:         logger.Named("http"),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	// live feed connections would otherwise hold Shutdown open
	srv.RegisterOnShutdown(hub.Close)

	logger.Info("happy thoughts api listening", zap.String("addr", cfg.Server.Addr))
	serveErr := runServer(ctx, srv)

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := store.Close(closeCtx); err != nil {
		logger.Warn("failed to close thought store", zap.Error(err))
	}

	if serveErr != nil {
		logger.Fatal("server error", zap.Error(serveErr))
	}
	logger.Info("server stopped")
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
