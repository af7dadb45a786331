// Package engine runs the analyzers over a plan and hands their output to
// the report aggregator. It performs no I/O.
package engine

import (
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetlens/internal/analysis"
	"budgetlens/internal/core"
	"budgetlens/internal/insight"
	"budgetlens/internal/log"
	"budgetlens/internal/report"
)

// Input is the materialized data for one evaluation.
type Input struct {
	Plan         core.BudgetPlan
	Transactions []core.Transaction
	// AsOf is the evaluation instant; zero means now.
	AsOf time.Time
}

// Engine evaluates budget plans. It is safe for concurrent use.
type Engine struct {
	registry   *analysis.Registry
	policy     analysis.Policy
	aggregator *report.Aggregator
	logger     *log.Logger
	clock      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry replaces the default analyzer registry.
func WithRegistry(r *analysis.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithPolicy sets the analyzer thresholds.
func WithPolicy(p analysis.Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithLogger sets the logger used for analyzer failures.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l.WithComponent(log.ComponentEngine) }
}

// WithClock sets the clock used for zero AsOf and report timestamps.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithAggregator replaces the report aggregator.
func WithAggregator(a *report.Aggregator) Option {
	return func(e *Engine) { e.aggregator = a }
}

// New builds an engine with the default analyzers and policy.
func New(opts ...Option) *Engine {
	e := &Engine{
		registry: analysis.Default,
		policy:   analysis.DefaultPolicy(),
		logger:   log.New(log.DefaultConfig()).WithComponent(log.ComponentEngine),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.aggregator == nil {
		e.aggregator = report.NewAggregator(e.policy.RecommendationCap)
		e.aggregator.Clock = e.clock
	}
	return e
}

// Policy returns the thresholds the engine applies.
func (e *Engine) Policy() analysis.Policy {
	return e.policy
}

// Evaluate runs every registered analyzer in parallel and builds a report.
// Results are merged in registry order so identical input yields identical
// insights. A failing analyzer contributes no insights and is logged.
func (e *Engine) Evaluate(in Input) *report.AnalysisReport {
	start := time.Now()
	asOf := in.AsOf
	if asOf.IsZero() {
		asOf = e.clock()
	}

	if in.Plan.IsMalformed() {
		e.logger.Warn("Plan has negative amounts, analyzers will skip it", log.FieldPlanID, in.Plan.ID)
	}

	base := analysis.Input{
		Plan:    in.Plan,
		History: analysis.NewHistory(in.Transactions, in.Plan, asOf, e.policy.HistoryPeriods),
		AsOf:    asOf,
		Policy:  e.policy,
	}

	kinds := e.registry.Kinds()
	results := make([]analysis.Result, len(kinds))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, kind := range kinds {
		a, err := e.registry.Lookup(kind)
		if err != nil {
			results[i] = analysis.Result{Kind: kind, Err: err}
			continue
		}
		g.Go(func() error {
			results[i] = run(kind, a, isolate(base))
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		if res.Err != nil {
			e.logger.Warn("Analyzer failed, contributing no insights",
				log.FieldAnalyzer, string(res.Kind),
				log.FieldPlanID, in.Plan.ID,
				log.FieldError, res.Err.Error(),
			)
		}
	}

	rep := e.aggregator.Build(in.Plan, results, asOf)
	rep.PerformanceMetrics[report.MetricAnalysisDuration] = float64(time.Since(start).Microseconds()) / 1000

	e.logger.Debug("Evaluation complete",
		log.FieldPlanID, in.Plan.ID,
		log.FieldReportID, rep.ID,
		log.FieldInsightCount, rep.TotalInsightCount(),
		log.FieldHealthScore, rep.OverallHealthScore,
	)
	return rep
}

// run calls one analyzer and turns a panic into an error result. The kind
// is the one the registry stored, so the analyzer is only asked to Analyze.
func run(kind analysis.Kind, a analysis.Analyzer, in analysis.Input) (res analysis.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = analysis.Result{Kind: kind, Err: fmt.Errorf("analyzer %s panicked: %v", kind, r)}
		}
	}()
	res.Kind = kind

	found := a.Analyze(in)
	if len(found) == 0 {
		return res
	}
	res.Insights = make([]insight.Insight, len(found))
	for i, f := range found {
		f = f.Clone()
		if f.Source == "" {
			f.Source = string(kind)
		}
		res.Insights[i] = f
	}
	return res
}

// isolate gives each analyzer its own copy of the category slice.
func isolate(in analysis.Input) analysis.Input {
	in.Plan.Categories = append([]core.CategoryBudget(nil), in.Plan.Categories...)
	return in
}
