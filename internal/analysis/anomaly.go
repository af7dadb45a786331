package analysis

import (
	"fmt"

	"budgetlens/internal/insight"
)

// AnomalyAnalyzer compares current spend with each category's trailing
// average. Spikes are reported at any time; dips only once the period is
// over, since partial spend always looks low.
type AnomalyAnalyzer struct{}

func (AnomalyAnalyzer) Kind() Kind { return KindAnomaly }

func (AnomalyAnalyzer) Analyze(in Input) []insight.Insight {
	if !in.usable() {
		return nil
	}
	pol := in.policy()
	finished := in.Plan.ElapsedFraction(in.AsOf) >= 1

	var out []insight.Insight
	for _, c := range in.Plan.Categories {
		avg, used := in.History.TrailingAverage(c.ID, pol.AnomalyLookback)
		if used == 0 || avg <= 0 {
			continue
		}
		current := float64(c.Spent.Cents)
		multiple := ratio(current, avg)
		opts := []insight.Option{
			insight.WithValue(round2(multiple)),
			insight.ForCategory(c.ID),
			insight.From(string(KindAnomaly)),
		}

		switch {
		case current > avg*pol.AnomalyMultiple:
			impact := insight.ImpactMedium
			if current >= avg*pol.AnomalyHighMultiple {
				impact = insight.ImpactHigh
			}
			opts = append(opts, insight.WithSuggestion(
				fmt.Sprintf("Check recent %s transactions for one-off or duplicate charges", c.Label())))
			out = append(out, insight.New(insight.TypeRisk, impact,
				fmt.Sprintf("Unusual spending in %s", c.Label()),
				fmt.Sprintf("%s spend is %.1fx its average over the last %d periods.", c.Label(), multiple, used),
				opts...,
			))
		case finished && current < avg/pol.AnomalyMultiple:
			out = append(out, insight.New(insight.TypePattern, insight.ImpactLow,
				fmt.Sprintf("Lower spending in %s", c.Label()),
				fmt.Sprintf("%s spend is %.1fx its average over the last %d periods.", c.Label(), multiple, used),
				opts...,
			))
		}
	}
	return out
}
