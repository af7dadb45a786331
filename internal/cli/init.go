// Package cli provides common CLI initialization utilities.
// This package consolidates repeated initialization patterns across
// cmd/budgetlens and cmd/insight-worker.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"budgetlens/internal/amqp"
	"budgetlens/internal/backend"
	"budgetlens/internal/cache"
	"budgetlens/internal/config"
	"budgetlens/internal/core"
	"budgetlens/internal/engine"
	"budgetlens/internal/log"
	"budgetlens/internal/services"
)

// SetupLogger initializes structured logging at the level named by LOG_LEVEL.
// Returns the configured logger and sets it as the default logger.
func SetupLogger() *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(os.Getenv("LOG_LEVEL")),
		Component: log.ComponentApp,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			log.FieldOperation, log.OpValidate,
			log.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg
}

// App bundles the components every binary wires the same way.
type App struct {
	Config  *config.Config
	Logger  *log.Logger
	Backend *backend.BackendResult
	Engine  *engine.Engine
	Reports *services.ReportService
	Caches  *cache.Manager

	// PlanCache holds plan snapshots for Reports.
	PlanCache *cache.LRUCache[core.BudgetPlan]

	// AMQP is nil when messaging is disabled.
	AMQP *amqp.Client
}

// Bootstrap opens the configured ledger, builds the engine from the policy
// file and assembles the report service. When withAMQP is set and AMQP_URL
// is configured the broker is dialed and reports are published.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *log.Logger, withAMQP bool) (*App, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", backendCfg.Type, err)
	}

	app := &App{
		Config:  cfg,
		Logger:  logger,
		Backend: res,
		Engine:  engine.New(engine.WithPolicy(policy), engine.WithLogger(logger)),
		Caches:  cache.NewManager(logger),
	}

	app.PlanCache = cache.NewLRUCache[core.BudgetPlan](cfg.PlanCacheSize, cfg.PlanCacheTTL)
	app.Caches.Register(app.PlanCache)

	opts := []services.Option{
		services.WithPlanCache(app.PlanCache),
		services.WithLogger(logger),
	}
	if res.Writer != nil {
		opts = append(opts, services.WithWriter(res.Writer))
	}

	if withAMQP && cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, amqp.Options{
			Exchange:         cfg.AMQPExchange,
			RequestQueue:     cfg.AMQPRequestQueue,
			ReportRoutingKey: cfg.AMQPReportRoutingKey,
			Logger:           logger,
		})
		if err != nil {
			_ = res.Close()
			return nil, fmt.Errorf("connect to AMQP: %w", err)
		}
		app.AMQP = client
		opts = append(opts, services.WithPublisher(client))
		logger.Info("AMQP publishing enabled", "exchange", cfg.AMQPExchange)
	}

	app.Reports = services.NewReportService(res.Source, app.Engine, opts...)

	logger.Info("Application initialized",
		log.FieldBackend, cfg.DataBackend,
		"recommendation_cap", policy.RecommendationCap,
		"amqp_enabled", app.AMQP != nil)
	return app, nil
}

// Close stops the cache sweeper and releases the broker and ledger connections.
func (a *App) Close() error {
	a.Caches.Stop()
	var errs []error
	if a.AMQP != nil {
		if err := a.AMQP.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close AMQP: %w", err))
		}
	}
	if err := a.Backend.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close backend: %w", err))
	}
	return errors.Join(errs...)
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
