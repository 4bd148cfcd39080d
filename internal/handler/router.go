package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/zhouzirui/happy-thoughts/backend/internal/handler/feed"
	"github.com/zhouzirui/happy-thoughts/backend/internal/handler/thought"
	middlewarePkg "github.com/zhouzirui/happy-thoughts/backend/internal/middleware"
	"github.com/zhouzirui/happy-thoughts/backend/internal/observability"
	thoughtService "github.com/zhouzirui/happy-thoughts/backend/internal/service/thought"
	"github.com/zhouzirui/happy-thoughts/backend/pkg/utils"
)

const greeting = "Hello world! This is my API for the project Happy Thoughts, view it live at https://anna-happy-thoughts.netlify.app/ "

const healthTimeout = 2 * time.Second

// Dependencies collects what the router needs. Metrics and Feed are optional.
type Dependencies struct {
	Thoughts       *thoughtService.Service
	Feed           feed.Source
	Metrics        *observability.Collector
	Logger         *zap.Logger
	AllowedOrigins []string
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.Logger(logger))
	if deps.Metrics != nil {
		r.Use(middlewarePkg.Metrics(deps.Metrics))
	}
	r.Use(middlewarePkg.CORS(origins))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondText(w, http.StatusOK, greeting)
	})
	r.Get("/health", healthHandler(deps.Thoughts, logger))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	if deps.Feed != nil {
		feed.New(deps.Feed, logger.Named("feed")).RegisterRoutes(r)
	}
	thought.New(deps.Thoughts, logger.Named("thoughts")).RegisterRoutes(r)

	return r
}

func healthHandler(svc *thoughtService.Service, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := svc.Ping(ctx); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			utils.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}
