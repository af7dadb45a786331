package analysis

import (
	"fmt"

	"budgetlens/internal/core"
	"budgetlens/internal/insight"
)

// PatternAnalyzer flags recurring overspend and steadily rising spend.
type PatternAnalyzer struct{}

func (PatternAnalyzer) Kind() Kind { return KindPattern }

func (a PatternAnalyzer) Analyze(in Input) []insight.Insight {
	if !in.usable() {
		return nil
	}
	pol := in.policy()

	var out []insight.Insight
	for _, c := range in.budgeted() {
		if run := overspendRun(c, in.History); run >= pol.PatternMinConsecutive {
			impact := insight.ImpactMedium
			if run >= pol.PatternHighConsecutive {
				impact = insight.ImpactHigh
			}
			out = append(out, insight.New(insight.TypePattern, impact,
				fmt.Sprintf("Recurring overspend in %s", c.Label()),
				fmt.Sprintf("%s went over its %s allocation in %d consecutive periods.", c.Label(), c.Allocated, run),
				insight.WithValue(float64(run)),
				insight.WithSuggestion(fmt.Sprintf("Raise the %s allocation or set a spending cap for it", c.Label())),
				insight.ForCategory(c.ID),
				insight.From(string(KindPattern)),
			))
		}
		if growth, ok := risingTrend(c.ID, in.History, pol.TrendMinPeriods); ok {
			out = append(out, insight.New(insight.TypeTrend, insight.ImpactLow,
				fmt.Sprintf("%s spending is rising", c.Label()),
				fmt.Sprintf("%s spend grew in each of the last %d periods, up %.0f%% overall.", c.Label(), pol.TrendMinPeriods, growth),
				insight.WithValue(round2(growth)),
				insight.ForCategory(c.ID),
				insight.From(string(KindPattern)),
			))
		}
	}
	return out
}

// overspendRun counts consecutive over-budget periods, newest first. The
// current period counts only once it is already over.
func overspendRun(c core.CategoryBudget, h History) int {
	run := 0
	if c.IsOverBudget() {
		run++
	}
	for n := 1; n < h.Periods(); n++ {
		if h.Spend(c.ID, n).Cents <= c.Allocated.Cents {
			break
		}
		run++
	}
	return run
}

// risingTrend reports whether the last periods completed periods rose
// strictly, and the total growth in percent from the oldest to the newest.
func risingTrend(categoryID string, h History, periods int) (float64, bool) {
	if periods < 2 || periods >= h.Periods() {
		return 0, false
	}
	prev := int64(-1)
	for n := periods; n >= 1; n-- {
		if !h.HasData(categoryID, n) {
			return 0, false
		}
		cur := h.Spend(categoryID, n).Cents
		if cur <= prev {
			return 0, false
		}
		prev = cur
	}
	oldest := float64(h.Spend(categoryID, periods).Cents)
	newest := float64(h.Spend(categoryID, 1).Cents)
	return ratio(newest-oldest, oldest) * 100, true
}
