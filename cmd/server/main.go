// Command server runs the cargoport registry gateway.
//
// Configuration is layered: built-in defaults, a YAML config file
// (-config flag, CARGOPORT_CONFIG, ./config.yaml, /etc/cargoport/config.yaml),
// then CARGOPORT_* environment variable overrides.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/cargoport/cargoport/pkg/app"
	"github.com/cargoport/cargoport/pkg/auth/session"
	"github.com/cargoport/cargoport/pkg/config"
	"github.com/cargoport/cargoport/pkg/observability"
	"github.com/cargoport/cargoport/pkg/requestlog"
	"github.com/cargoport/cargoport/pkg/storage"
	"github.com/cargoport/cargoport/pkg/storage/memory"
	"github.com/cargoport/cargoport/pkg/storage/postgres"
	"github.com/cargoport/cargoport/pkg/transport"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create the store.
	var store storage.Store
	switch cfg.Storage.Type {
	case "postgres":
		store, err = postgres.New(ctx, postgres.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
		if err != nil {
			return fmt.Errorf("creating postgres store: %w", err)
		}
		slog.Info("storage enabled", "type", "postgres")
	default:
		store = memory.New()
		slog.Info("storage enabled", "type", "memory")
	}
	defer store.Close()

	if cfg.Session.Key == "" {
		slog.Warn("no session key configured, cookie sessions disabled")
	}

	a := app.New(cfg, store, []byte(cfg.Session.Key), slog.Default())
	verifier := session.NewVerifier(a.SessionKey, cfg.Session.CookieName)

	// Build the middleware chain around the route handler. Order matters:
	// request logging and metrics observe everything, the app handle must
	// be attached before session verification and auth run, and recovery
	// sits just outside the handlers so the app teardown invariant stays
	// loud.
	var handler http.Handler = transport.NewHandler(
		cfg.Observability.Metrics.Enabled,
		cfg.Observability.Metrics.Path,
	)
	handler = transport.Recovery(handler)
	handler = verifier.Middleware(handler)
	handler = a.Middleware(handler)
	handler = observability.MetricsMiddleware(handler)
	handler = requestlog.Middleware(a.Logger)(handler)

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port, "storage", cfg.Storage.Type)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
