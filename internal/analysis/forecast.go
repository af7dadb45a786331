package analysis

import (
	"fmt"
	"math"

	"budgetlens/internal/core"
	"budgetlens/internal/insight"
)

// ForecastAnalyzer projects end-of-period spend from the current burn rate.
// It emits at most one insight for the whole plan.
type ForecastAnalyzer struct{}

func (ForecastAnalyzer) Kind() Kind { return KindForecast }

func (ForecastAnalyzer) Analyze(in Input) []insight.Insight {
	if !in.usable() {
		return nil
	}
	pol := in.policy()

	elapsed := in.Plan.ElapsedFraction(in.AsOf)
	totals := in.Plan.ComputedTotals()
	allocated := float64(totals.Allocated.Cents)
	if elapsed < pol.ForecastMinElapsed || allocated <= 0 {
		return nil
	}

	projected := ratio(float64(totals.Spent.Cents), elapsed)
	diff := core.Money{Cents: int64(math.Round(projected - allocated))}
	share := ratio(float64(diff.Cents), allocated)
	value := insight.WithValue(round2(diff.Units()))
	src := insight.From(string(KindForecast))

	if diff.Cents <= 0 {
		return []insight.Insight{insight.New(insight.TypeForecast, insight.ImpactPositive,
			"On track for this period",
			fmt.Sprintf("At the current pace spending ends about %s under the %s budget.", diff.Neg(), totals.Allocated),
			value, src,
		)}
	}

	impact := insight.ImpactLow
	switch {
	case share > pol.ForecastHighOvershoot:
		impact = insight.ImpactHigh
	case share > pol.ForecastMediumOvershoot:
		impact = insight.ImpactMedium
	}
	return []insight.Insight{insight.New(insight.TypeForecast, impact,
		"Projected to exceed budget",
		fmt.Sprintf("At the current pace spending reaches %s, %s over the %s budget.",
			core.Money{Cents: int64(math.Round(projected))}, diff, totals.Allocated),
		value, src,
		insight.WithSuggestion(dailyLimit(in, totals)),
	)}
}

// dailyLimit suggests how much can still be spent per day this period.
func dailyLimit(in Input, totals core.PlanTotals) string {
	remaining := totals.Variance()
	days := int(math.Ceil(in.Plan.PeriodEnd(in.AsOf).Sub(in.AsOf).Hours() / 24))
	if remaining.Cents <= 0 || days <= 0 {
		return "The budget is used up: pause non-essential spending until the period ends"
	}
	perDay := core.Money{Cents: remaining.Cents / int64(days)}
	return fmt.Sprintf("Keep spending under %s per day for the remaining %d days", perDay, days)
}
