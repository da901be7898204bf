package api

import (
	"net/http"

	"github.com/afisha-events/server/internal/api/handlers"
	"github.com/afisha-events/server/internal/api/middleware"
	"github.com/afisha-events/server/internal/config"
	"github.com/afisha-events/server/internal/domain/categories"
	"github.com/afisha-events/server/internal/domain/compilations"
	"github.com/afisha-events/server/internal/domain/events"
	"github.com/afisha-events/server/internal/domain/requests"
	"github.com/afisha-events/server/internal/domain/subscriptions"
	"github.com/afisha-events/server/internal/domain/users"
	"github.com/afisha-events/server/internal/metrics"
	"github.com/afisha-events/server/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter wires repositories, services and handlers into the main
// service's HTTP handler.
func NewRouter(cfg config.Config, repo storage.Repository, pool *pgxpool.Pool, stats events.StatsProvider, logger zerolog.Logger) http.Handler {
	userSvc := users.NewService(repo.Users())
	categorySvc := categories.NewService(repo.Categories())
	eventSvc := events.NewService(repo.Events(), categorySvc, userSvc, stats, logger)
	requestSvc := requests.NewService(repo.Requests(), eventSvc, userSvc)
	compilationSvc := compilations.NewService(repo.Compilations(), eventSvc)
	subscriptionSvc := subscriptions.NewService(repo.Subscriptions(), userSvc)

	mux := http.NewServeMux()
	handlers.NewUserHandler(userSvc).Register(mux)
	handlers.NewCategoryHandler(categorySvc).Register(mux)
	handlers.NewEventHandler(eventSvc).Register(mux)
	handlers.NewRequestHandler(requestSvc).Register(mux)
	handlers.NewCompilationHandler(compilationSvc).Register(mux)
	handlers.NewSubscriptionHandler(subscriptionSvc).Register(mux)

	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if pool != nil {
			if err := pool.Ping(r.Context()); err != nil {
				http.Error(w, `{"status":"unavailable"}`, http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	handler := metrics.Instrument(mux)
	handler = middleware.RateLimit(cfg.RateLimit)(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.CorrelationID(logger)(handler)
	return handler
}
