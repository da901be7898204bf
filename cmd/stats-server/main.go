// The statistics micro-service: records endpoint hits and serves
// aggregate view counts for the main service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/afisha-events/server/internal/api/middleware"
	"github.com/afisha-events/server/internal/config"
	"github.com/afisha-events/server/internal/stats/server"
	"github.com/afisha-events/server/internal/storage/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	migrate := flag.Bool("migrate", false, "apply migrations before serving")
	migrationsPath := flag.String("migrations", "migrations/stats", "migrations directory")
	flag.Parse()

	if err := run(*migrate, *migrationsPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(migrate bool, migrationsPath string) error {
	databaseURL := os.Getenv("STATS_DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("STATS_DATABASE_URL is required")
	}
	port := os.Getenv("STATS_SERVER_PORT")
	if port == "" {
		port = "9090"
	}

	logger := config.NewLogger(config.LoggingConfig{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
	})
	logger.Info().Msg("starting statistics service")

	if migrate {
		if err := postgres.MigrateUp(databaseURL, migrationsPath); err != nil {
			return err
		}
		logger.Info().Msg("migrations applied")
	}

	poolCtx, poolCancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := pgxpool.New(poolCtx, databaseURL)
	poolCancel()
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	repo, err := server.NewPostgresRepository(pool)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	server.NewHandler(server.NewService(repo)).Register(mux)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			http.Error(w, `{"status":"unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	var handler http.Handler = mux
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.CorrelationID(logger)(handler)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
