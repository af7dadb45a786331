// Package report assembles analyzer output into an AnalysisReport.
package report

import (
	"time"

	"budgetlens/internal/insight"
	"budgetlens/internal/scoring"
)

// CriticalScore is the score below which a report has critical issues
// regardless of its insights.
const CriticalScore = 40.0

// AnalysisReport is the output of one evaluation. Collections are appended
// during construction only.
type AnalysisReport struct {
	ID          string
	PlanID      string
	GeneratedAt time.Time

	Patterns      []insight.Insight
	Variances     []insight.Insight
	Optimizations []insight.Insight
	Anomalies     []insight.Insight
	CashFlow      *insight.Insight
	Risk          *insight.Insight

	OverallHealthScore float64
	Summary            string
	TopRecommendations []string
	PerformanceMetrics map[string]float64
}

func (r *AnalysisReport) AddPattern(in insight.Insight)      { r.Patterns = append(r.Patterns, in) }
func (r *AnalysisReport) AddVariance(in insight.Insight)     { r.Variances = append(r.Variances, in) }
func (r *AnalysisReport) AddOptimization(in insight.Insight) { r.Optimizations = append(r.Optimizations, in) }
func (r *AnalysisReport) AddAnomaly(in insight.Insight)      { r.Anomalies = append(r.Anomalies, in) }

// SetCashFlow stores the single cash-flow forecast insight.
func (r *AnalysisReport) SetCashFlow(in insight.Insight) { r.CashFlow = &in }

// SetRisk stores the single risk-assessment insight.
func (r *AnalysisReport) SetRisk(in insight.Insight) { r.Risk = &in }

// Insights returns every insight in a stable order: patterns, variances,
// cash flow, risk, optimizations, anomalies.
func (r *AnalysisReport) Insights() []insight.Insight {
	out := make([]insight.Insight, 0, r.TotalInsightCount())
	out = append(out, r.Patterns...)
	out = append(out, r.Variances...)
	if r.CashFlow != nil {
		out = append(out, *r.CashFlow)
	}
	if r.Risk != nil {
		out = append(out, *r.Risk)
	}
	out = append(out, r.Optimizations...)
	out = append(out, r.Anomalies...)
	return out
}

func (r *AnalysisReport) TotalInsightCount() int {
	n := len(r.Patterns) + len(r.Variances) + len(r.Optimizations) + len(r.Anomalies)
	if r.CashFlow != nil {
		n++
	}
	if r.Risk != nil {
		n++
	}
	return n
}

func (r *AnalysisReport) HighPriorityInsightCount() int {
	return insight.Count(r.Insights(), insight.Insight.HighPriority)
}

// HasCriticalIssues is true with any high-priority insight or a score below 40.
func (r *AnalysisReport) HasCriticalIssues() bool {
	return r.HighPriorityInsightCount() > 0 || r.OverallHealthScore < CriticalScore
}

func (r *AnalysisReport) IsEmpty() bool {
	return r.TotalInsightCount() == 0
}

// HealthBand labels the overall score.
func (r *AnalysisReport) HealthBand() string {
	return scoring.Band(r.OverallHealthScore)
}

// Metric returns a performance metric, or 0 when absent.
func (r *AnalysisReport) Metric(name string) float64 {
	return r.PerformanceMetrics[name]
}
