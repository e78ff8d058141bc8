/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the rule evaluation server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Read environment and command-line flags
  2. Set up structured logging
  3. Initialize SQLite store
  4. Register Prometheus metrics and build the engine
  5. Create API handler and router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port           HTTP server port (default: 8080)
  -db             SQLite database path (default: regler.db)
                  Use ":memory:" for in-memory database
  -log-level      DEBUG, INFO, WARN or ERROR (default: INFO)
  -regel-versjon  Rule version stamped on every result

ENVIRONMENT:
  PORT, DATABASE_PATH, LOG_LEVEL, REGEL_VERSJON. Flags take precedence.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with in-memory database and debug logging
  ./server -db=":memory:" -log-level=DEBUG

  # Run on different port
  PORT=3000 ./server

SEE ALSO:
  - api/server.go: Router configuration
  - internal/config: Configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/api"
	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/internal/config"
	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/internal/logger"
	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/kjoering"
	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/regler"
	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/regler/metrics"
	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.LogLevel)

	// Initialize store
	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	// Metrics and engine
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	motor := regler.NyMotor(
		regler.MedLogger(log),
		regler.MedMetrics(metrics.New(reg)),
		regler.MedRegelVersjon(cfg.RegelVersjon),
	)

	// Initialize handler
	handler, err := api.NewHandler(kjoering.NyTjeneste(store, motor, log), store, log)
	if err != nil {
		return err
	}

	// Create server
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      api.NewRouter(handler, reg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", slog.String("addr", cfg.Addr()), slog.String("db", cfg.DatabasePath))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Shut down on signal or when the listener fails
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
