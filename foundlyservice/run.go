// Package foundlyservice wires configuration, storage, background workers and
// the HTTP API into a runnable service.
package foundlyservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/foundly/foundly-server/internal/api"
	"github.com/foundly/foundly-server/internal/auth"
	"github.com/foundly/foundly-server/internal/config"
	"github.com/foundly/foundly-server/internal/health"
	"github.com/foundly/foundly-server/internal/logger"
	"github.com/foundly/foundly-server/internal/services"
	"github.com/foundly/foundly-server/internal/store"
	"github.com/foundly/foundly-server/internal/store/postgres"
	"github.com/foundly/foundly-server/internal/store/sqlite"
	"github.com/foundly/foundly-server/internal/sweep"
)

// Run starts the service HTTP server and blocks until shutdown or error.
func Run() error {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		return err
	}

	log := logger.New("foundly-service")
	if !cfg.IsProduction() {
		log = logger.NewConsole("foundly-service")
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Int("match_window_hours", cfg.MatchWindowHours).
		Int("sweep_interval_minutes", cfg.SweepIntervalMinutes).
		Msg("foundly service starting")

	ctx, stop := newServerContext()
	defer stop()

	st, err := newStore(ctx, cfg)
	if err != nil {
		log.Error().Stack().Err(err).Msg("store unavailable")
		return err
	}

	svcHealth := startHealthCheckers(ctx, cfg, log, st)
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	sweeper := sweep.New(st, sweep.Config{Interval: cfg.SweepInterval()}, log)
	go func() { _ = sweeper.Run(ctx) }()

	handler := buildHandler(cfg, log, st, svcHealth)
	server := newHTTPServer(ctx, cfg, handler)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("server forced to shutdown")
			return err
		}
		log.Info().Msg("server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		return postgres.Bootstrap(ctx, cfg.PostgresDSN)
	case "sqlite":
		return sqlite.Bootstrap(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported DB driver: %s", cfg.DBDriver)
	}
}

func buildHandler(cfg *config.Config, log zerolog.Logger, st store.Store, svcHealth *health.ServiceHealthChecker) http.Handler {
	matcher := services.NewMatchService(st, log)
	router := api.NewRouter(api.Deps{
		Users:         services.NewUserService(st),
		Items:         services.NewItemService(st, matcher, cfg.MatchWindow()),
		Matches:       matcher,
		Claims:        services.NewClaimService(st),
		Notifications: services.NewNotificationService(st),
		Authorizer:    auth.NewStoreAuthorizer(st),
		IsHealthy:     svcHealth.IsHealthy,
	})

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	return c.Handler(router)
}

func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store) *health.ServiceHealthChecker {
	interval := cfg.HealthCheckInterval()

	storeChecker := store.NewHealthChecker(log, st)
	go storeChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// waitUntilHealthy blocks until service health is green or the startup window
// expires. Checkers start unhealthy and need one probe cycle to flip.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeout := 2 * cfg.HealthCheckInterval()
	if timeout < time.Minute {
		timeout = time.Minute
	}
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %s", timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
