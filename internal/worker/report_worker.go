// Package worker runs report generation off the request path: it answers
// queued analysis requests and refreshes every plan on a timer.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"budgetlens/internal/amqp"
	"budgetlens/internal/ledger"
	"budgetlens/internal/log"
	"budgetlens/internal/report"
)

// ReportGenerator is the part of services.ReportService the worker drives.
type ReportGenerator interface {
	Generate(ctx context.Context, planID string, asOf time.Time) (*report.AnalysisReport, error)
	RefreshAll(ctx context.Context) (int, error)
	Invalidate(planID string)
}

type ReportWorker struct {
	reports  ReportGenerator
	interval time.Duration
	logger   *log.Logger
}

func NewReportWorker(reports ReportGenerator, interval time.Duration, logger *log.Logger) *ReportWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &ReportWorker{
		reports:  reports,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleAnalysisRequest generates a report for one queued request. Requests
// for unknown plans are dropped; other failures are returned so the message
// is requeued.
func (w *ReportWorker) HandleAnalysisRequest(ctx context.Context, msg *amqp.AnalysisRequestMessage) error {
	asOf, err := msg.AsOfTime()
	if err != nil {
		return fmt.Errorf("parse as_of: %w", err)
	}

	w.logger.InfoContext(ctx, "Processing analysis request",
		log.FieldPlanID, msg.PlanID,
		log.FieldAsOf, msg.AsOf)

	// The plan changed since the request was queued
	w.reports.Invalidate(msg.PlanID)

	r, err := w.reports.Generate(ctx, msg.PlanID, asOf)
	if errors.Is(err, ledger.ErrPlanNotFound) {
		w.logger.WarnContext(ctx, "Dropping analysis request for unknown plan", log.FieldPlanID, msg.PlanID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("generate report for %s: %w", msg.PlanID, err)
	}

	w.logger.InfoContext(ctx, "Analysis request completed",
		log.FieldPlanID, msg.PlanID,
		log.FieldReportID, r.ID,
		log.FieldHealthScore, r.OverallHealthScore)
	return nil
}

// Refresh regenerates every plan once.
func (w *ReportWorker) Refresh(ctx context.Context) error {
	start := time.Now()
	n, err := w.reports.RefreshAll(ctx)
	w.logger.InfoContext(ctx, "Refreshed plan reports",
		"reports", n,
		log.FieldDuration, time.Since(start).Milliseconds(),
		log.FieldSuccess, err == nil)
	return err
}

// RunPeriodicRefresh refreshes all plans on every tick until ctx is done.
// Failed refreshes are logged and retried on the next tick.
func (w *ReportWorker) RunPeriodicRefresh(ctx context.Context) error {
	if w.interval <= 0 {
		return fmt.Errorf("invalid refresh interval %v", w.interval)
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Refresh(ctx); err != nil && ctx.Err() == nil {
				log.NewStructuredLogger(w.logger).
					LogError(ctx, "Periodic refresh failed", err, log.ComponentWorker, log.OpRefresh, nil)
			}
		}
	}
}
