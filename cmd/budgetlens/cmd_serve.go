package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"budgetlens/internal/cli"
	apphttp "budgetlens/internal/http"
	"budgetlens/internal/log"
)

const cacheSweepInterval = 10 * time.Minute

var serveRPM int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve reports over the JSON API",
	Long: `Starts the HTTP API on PORT:

  GET  /api/plans
  GET  /api/plans/{id}/report?as_of=YYYY-MM-DD
  POST /api/plans/{id}/transactions
  GET  /healthz, /readyz, /metrics

When AMQP_URL is set, generated reports are announced and posted
transactions queue an analysis request for the worker.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&serveRPM, "rate-limit", 60, "transaction posts allowed per client per minute")
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := cli.Bootstrap(cmd.Context(), cfg, logger, true)
	if err != nil {
		return err
	}

	srv := apphttp.NewServer(":"+cfg.Port, app.Reports, apphttp.Options{
		Logger:            logger,
		RequestsPerMinute: serveRPM,
		PlanCache:         app.PlanCache,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error",
				log.FieldOperation, log.OpShutdown,
				log.FieldError, err.Error())
		}
	})
	app.Caches.StartCleanup(ctx, cacheSweepInterval)

	logger.Info("Starting budgetlens server", "port", cfg.Port, log.FieldBackend, cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_ = app.Close()
		return err
	}

	cli.WaitForShutdown(ctx, done)
	if err := app.Close(); err != nil {
		logger.Warn("Cleanup failed", log.FieldError, err.Error())
	}
	logger.Info("Server stopped gracefully")
	return nil
}
