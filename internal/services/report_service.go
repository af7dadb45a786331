// Package services orchestrates report generation over a ledger source.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"budgetlens/internal/amqp"
	"budgetlens/internal/analysis"
	"budgetlens/internal/cache"
	"budgetlens/internal/core"
	"budgetlens/internal/engine"
	"budgetlens/internal/ledger"
	"budgetlens/internal/log"
	"budgetlens/internal/report"
)

var (
	// ErrReadOnly is returned when posting to a source that cannot record transactions.
	ErrReadOnly = errors.New("ledger is read-only")
	// ErrInvalidTransaction wraps validation failures of a posted transaction.
	ErrInvalidTransaction = errors.New("invalid transaction")
)

// Publisher announces reports and queues analysis requests. *amqp.Client
// implements it.
type Publisher interface {
	PublishReportGenerated(ctx context.Context, msg *amqp.ReportGeneratedMessage) error
	PublishAnalysisRequest(ctx context.Context, msg *amqp.AnalysisRequestMessage) error
}

// ReportService loads plans from a ledger, evaluates them and publishes the
// outcome. Reports are not stored.
type ReportService struct {
	source    ledger.Source
	writer    ledger.TransactionWriter
	engine    *engine.Engine
	plans     cache.Cache[core.BudgetPlan]
	publisher Publisher
	logger    *log.Logger
	events    *log.StructuredLogger
	clock     func() time.Time
}

type Option func(*ReportService)

// WithPlanCache caches plan snapshots between evaluations.
func WithPlanCache(c cache.Cache[core.BudgetPlan]) Option {
	return func(s *ReportService) { s.plans = c }
}

// WithPublisher enables report and request messages.
func WithPublisher(p Publisher) Option {
	return func(s *ReportService) { s.publisher = p }
}

// WithWriter overrides the transaction writer detected on the source.
func WithWriter(w ledger.TransactionWriter) Option {
	return func(s *ReportService) { s.writer = w }
}

func WithLogger(l *log.Logger) Option {
	return func(s *ReportService) { s.logger = l }
}

func WithClock(clock func() time.Time) Option {
	return func(s *ReportService) { s.clock = clock }
}

func NewReportService(source ledger.Source, eng *engine.Engine, opts ...Option) *ReportService {
	s := &ReportService{
		source: source,
		engine: eng,
		logger: log.Discard(),
		clock:  time.Now,
	}
	if w, ok := source.(ledger.TransactionWriter); ok {
		s.writer = w
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = engine.New(engine.WithLogger(s.logger), engine.WithClock(s.clock))
	}
	s.logger = s.logger.WithComponent(log.ComponentReport)
	s.events = log.NewStructuredLogger(s.logger)
	return s
}

// Generate evaluates planID as of asOf (zero means now). Publishing failures
// are logged and do not fail the call.
func (s *ReportService) Generate(ctx context.Context, planID string, asOf time.Time) (*report.AnalysisReport, error) {
	if asOf.IsZero() {
		asOf = s.clock()
	}

	plan, err := s.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	since := analysis.WindowStart(plan, asOf, s.engine.Policy().HistoryPeriods)
	txs, err := s.source.ListTransactions(ctx, planID, since)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	r := s.engine.Evaluate(engine.Input{Plan: plan, Transactions: txs, AsOf: asOf})

	s.events.LogReportGenerated(ctx, planID, r.ID, r.OverallHealthScore, r.HealthBand(),
		r.TotalInsightCount(), r.HighPriorityInsightCount())

	if s.publisher != nil {
		if err := s.publisher.PublishReportGenerated(ctx, amqp.NewReportGeneratedMessage(r)); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish report event",
				log.FieldPlanID, planID,
				log.FieldReportID, r.ID,
				log.FieldError, err.Error())
		}
	}
	return r, nil
}

func (s *ReportService) loadPlan(ctx context.Context, planID string) (core.BudgetPlan, error) {
	if s.plans != nil {
		if p, ok := s.plans.Get(planID); ok {
			return p, nil
		}
	}
	p, err := s.source.ReadPlan(ctx, planID)
	if err != nil {
		return core.BudgetPlan{}, fmt.Errorf("read plan: %w", err)
	}
	if s.plans != nil {
		s.plans.Set(planID, p)
	}
	return p, nil
}

// PostTransaction records tx, drops the cached plan and queues a fresh
// analysis for it.
func (s *ReportService) PostTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	if s.writer == nil {
		return "", ErrReadOnly
	}
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}

	id, err := s.writer.AddTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("save transaction: %w", err)
	}
	s.Invalidate(tx.PlanID)

	s.logger.InfoContext(ctx, "Transaction recorded",
		log.FieldPlanID, tx.PlanID,
		log.FieldCategoryID, tx.CategoryID,
		log.FieldAmountCents, tx.Amount.Cents)

	if s.publisher != nil {
		if err := s.publisher.PublishAnalysisRequest(ctx, amqp.NewAnalysisRequestMessage(tx.PlanID, time.Time{})); err != nil {
			s.logger.WarnContext(ctx, "Failed to queue analysis request",
				log.FieldPlanID, tx.PlanID,
				log.FieldError, err.Error())
		}
	}
	return id, nil
}

// Invalidate drops the cached snapshot of planID.
func (s *ReportService) Invalidate(planID string) {
	if s.plans != nil {
		s.plans.Delete(planID)
	}
}

// RefreshAll regenerates a report for every plan as of now. It returns the
// number of reports built; failures are joined into the error.
func (s *ReportService) RefreshAll(ctx context.Context) (int, error) {
	ids, err := s.PlanIDs(ctx)
	if err != nil {
		return 0, err
	}
	var errs []error
	built := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		s.Invalidate(id)
		if _, err := s.Generate(ctx, id, time.Time{}); err != nil {
			errs = append(errs, fmt.Errorf("plan %s: %w", id, err))
			continue
		}
		built++
	}
	return built, errors.Join(errs...)
}

// PlanIDs lists the plans known to the ledger.
func (s *ReportService) PlanIDs(ctx context.Context) ([]string, error) {
	ids, err := s.source.ListPlanIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return ids, nil
}
