package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"budgetlens/internal/analysis"
	"budgetlens/internal/core"
	"budgetlens/internal/insight"
	"budgetlens/internal/scoring"
)

// Metric names written by the aggregator.
const (
	MetricCategories        = "categories_total"
	MetricCategoriesAtRisk  = "categories_at_risk"
	MetricInsights          = "insights_total"
	MetricHighPriority      = "insights_high_priority"
	MetricActionable        = "insights_actionable"
	MetricAnalyzersRun      = "analyzers_run"
	MetricAnalyzersFailed   = "analyzers_failed"
	MetricTotalAllocated    = "total_allocated"
	MetricTotalSpent        = "total_spent"
	MetricOverallVariance   = "overall_variance"
	MetricOverallUsage      = "overall_usage_percentage"
	MetricElapsedFraction   = "elapsed_fraction"
	MetricTotalsOverride    = "totals_override"
	MetricAnalysisDuration  = "analysis_duration_ms"
	metricAnalyzerInsightsF = "insights_%s"
)

// AnalyzerMetric names the per-analyzer insight count metric.
func AnalyzerMetric(kind analysis.Kind) string {
	return fmt.Sprintf(metricAnalyzerInsightsF, kind)
}

// Aggregator builds reports from analyzer results.
type Aggregator struct {
	RecommendationCap int
	Clock             func() time.Time
	NewID             func() string
}

// NewAggregator returns an aggregator with a wall clock and random UUIDs.
func NewAggregator(recommendationCap int) *Aggregator {
	return &Aggregator{
		RecommendationCap: recommendationCap,
		Clock:             time.Now,
		NewID:             uuid.NewString,
	}
}

// Build routes every result into a fresh report, then scores and summarizes it.
func (a *Aggregator) Build(plan core.BudgetPlan, results []analysis.Result, asOf time.Time) *AnalysisReport {
	r := &AnalysisReport{
		ID:                 a.newID(),
		PlanID:             plan.ID,
		GeneratedAt:        a.now().UTC(),
		PerformanceMetrics: make(map[string]float64),
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
		r.PerformanceMetrics[AnalyzerMetric(res.Kind)] = float64(len(res.Insights))
		for _, in := range res.Insights {
			r.route(res.Kind, in)
		}
	}

	all := r.Insights()
	r.OverallHealthScore = scoring.Score(plan.Categories, all)
	r.TopRecommendations = TopRecommendations(all, a.RecommendationCap)
	r.Summary = summarize(plan, r)

	totals := plan.ComputedTotals()
	m := r.PerformanceMetrics
	m[MetricCategories] = float64(len(plan.Categories))
	m[MetricCategoriesAtRisk] = float64(plan.AtRiskCount())
	m[MetricInsights] = float64(len(all))
	m[MetricHighPriority] = float64(r.HighPriorityInsightCount())
	m[MetricActionable] = float64(insight.Count(all, insight.Insight.Actionable))
	m[MetricAnalyzersRun] = float64(len(results))
	m[MetricAnalyzersFailed] = float64(failed)
	m[MetricTotalAllocated] = totals.Allocated.Units()
	m[MetricTotalSpent] = totals.Spent.Units()
	m[MetricOverallVariance] = totals.Variance().Units()
	m[MetricOverallUsage] = overallUsage(totals)
	m[MetricElapsedFraction] = plan.ElapsedFraction(asOf)
	m[MetricTotalsOverride] = 0
	if plan.HasTotalsOverride() {
		m[MetricTotalsOverride] = 1
	}
	return r
}

// route files an insight by the kind of analyzer that produced it. Kinds
// registered outside the built-in set are filed by insight type.
func (r *AnalysisReport) route(kind analysis.Kind, in insight.Insight) {
	switch kind {
	case analysis.KindPattern:
		r.AddPattern(in)
	case analysis.KindVariance:
		r.AddVariance(in)
	case analysis.KindForecast:
		if r.CashFlow == nil {
			r.SetCashFlow(in)
		}
	case analysis.KindRisk:
		if r.Risk == nil {
			r.SetRisk(in)
		}
	case analysis.KindOptimization:
		r.AddOptimization(in)
	case analysis.KindAnomaly:
		r.AddAnomaly(in)
	default:
		switch in.Type {
		case insight.TypeOptimization:
			r.AddOptimization(in)
		case insight.TypeRisk:
			r.AddAnomaly(in)
		case insight.TypeWarning, insight.TypePositive, insight.TypeForecast:
			r.AddVariance(in)
		default:
			r.AddPattern(in)
		}
	}
}

func overallUsage(t core.PlanTotals) float64 {
	if t.Allocated.Cents <= 0 {
		return 0
	}
	return float64(t.Spent.Cents) * 100 / float64(t.Allocated.Cents)
}

func summarize(plan core.BudgetPlan, r *AnalysisReport) string {
	if len(plan.Categories) == 0 {
		return "No budget categories to analyze yet."
	}
	name := plan.Name
	if name == "" {
		name = plan.ID
	}
	if name == "" {
		name = "The plan"
	}
	return fmt.Sprintf("%s scores %.1f (%s). %d of %d categories are at risk and %d insights are high priority.",
		name, r.OverallHealthScore, r.HealthBand(), plan.AtRiskCount(), len(plan.Categories), r.HighPriorityInsightCount())
}

func (a *Aggregator) now() time.Time {
	if a.Clock == nil {
		return time.Now()
	}
	return a.Clock()
}

func (a *Aggregator) newID() string {
	if a.NewID == nil {
		return uuid.NewString()
	}
	return a.NewID()
}
