// Package analysis contains the rule-based analyzers that turn a budget plan
// and its recent history into insights.
//
// Analyzers are pure: they read the Input they are given, never mutate it and
// never perform I/O. Each one is safe on an empty plan or a history with a
// single period, and returns nil for a malformed plan.
package analysis

import (
	"math"
	"time"

	"budgetlens/internal/core"
	"budgetlens/internal/insight"
)

// Kind names an analyzer family.
type Kind string

const (
	KindPattern      Kind = "pattern"
	KindVariance     Kind = "variance"
	KindForecast     Kind = "forecast"
	KindRisk         Kind = "risk"
	KindOptimization Kind = "optimization"
	KindAnomaly      Kind = "anomaly"
)

// Analyzer is the strategy interface implemented by every analyzer family.
type Analyzer interface {
	Kind() Kind
	Analyze(in Input) []insight.Insight
}

// Input is everything an analyzer may look at.
type Input struct {
	Plan    core.BudgetPlan
	History History
	AsOf    time.Time
	Policy  Policy
}

// policy returns the configured policy, or the defaults when none was set.
func (in Input) policy() Policy {
	if in.Policy == (Policy{}) {
		return DefaultPolicy()
	}
	return in.Policy
}

// usable reports whether the plan can be analyzed at all.
func (in Input) usable() bool {
	return len(in.Plan.Categories) > 0 && !in.Plan.IsMalformed()
}

// budgeted returns the categories with a positive allocation, in plan order.
func (in Input) budgeted() []core.CategoryBudget {
	out := make([]core.CategoryBudget, 0, len(in.Plan.Categories))
	for _, c := range in.Plan.Categories {
		if c.Allocated.Cents > 0 {
			out = append(out, c)
		}
	}
	return out
}

// ratio divides with the zero guard: a non-positive denominator yields 0.
func ratio(num, den float64) float64 {
	if den <= 0 || math.IsNaN(num) || math.IsInf(num, 0) {
		return 0
	}
	return num / den
}

// round2 rounds to two decimals for insight values.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Result is one analyzer's output within an evaluation. A failed analyzer
// carries Err and no insights.
type Result struct {
	Kind     Kind
	Insights []insight.Insight
	Err      error
}
