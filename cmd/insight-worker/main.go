// Command insight-worker answers queued analysis requests and refreshes every
// plan's report on a timer.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"budgetlens/internal/cli"
	"budgetlens/internal/log"
	"budgetlens/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	logger.Info("Starting insight-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if err := cfg.RequireAMQP(); err != nil {
		logger.Error("Worker needs a broker", log.FieldError, err.Error())
		os.Exit(1)
	}

	app, err := cli.Bootstrap(context.Background(), cfg, logger, true)
	if err != nil {
		logger.Error("Failed to initialize",
			log.FieldOperation, log.OpStartup,
			log.FieldError, err.Error())
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)
	app.Caches.StartCleanup(ctx, 10*time.Minute)

	w := worker.NewReportWorker(app.Reports, cfg.RefreshInterval, logger)

	// Catch up on anything missed while the worker was down
	if err := w.Refresh(ctx); err != nil {
		logger.Error("Startup refresh failed", log.FieldError, err.Error())
	}

	go func() {
		if err := app.AMQP.ConsumeAnalysisRequests(ctx, w.HandleAnalysisRequest); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err.Error())
		}
	}()
	go func() {
		if err := w.RunPeriodicRefresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Periodic refresh stopped", log.FieldError, err.Error())
		}
	}()

	logger.Info("Worker running",
		"refresh_interval", cfg.RefreshInterval.String(),
		"queue", cfg.AMQPRequestQueue)

	cli.WaitForShutdown(ctx, done)
	if err := app.Close(); err != nil {
		logger.Warn("Cleanup failed", log.FieldError, err.Error())
	}
	logger.Info("Worker stopped")
}
