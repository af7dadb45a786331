package analysis

import (
	"fmt"
	"math"

	"budgetlens/internal/insight"
)

// VarianceAnalyzer flags categories whose variance is material relative to
// their allocation. Unbudgeted categories are skipped.
type VarianceAnalyzer struct{}

func (VarianceAnalyzer) Kind() Kind { return KindVariance }

func (VarianceAnalyzer) Analyze(in Input) []insight.Insight {
	if !in.usable() {
		return nil
	}
	pol := in.policy()

	var out []insight.Insight
	for _, c := range in.budgeted() {
		variance := c.Variance()
		share := ratio(math.Abs(float64(variance.Cents)), float64(c.Allocated.Cents))
		if share <= pol.VarianceMateriality || variance.IsZero() {
			continue
		}

		opts := []insight.Option{
			insight.WithValue(round2(variance.Units())),
			insight.ForCategory(c.ID),
			insight.From(string(KindVariance)),
		}

		if !variance.IsNegative() {
			out = append(out, insight.New(insight.TypePositive, insight.ImpactPositive,
				fmt.Sprintf("%s is under budget", c.Label()),
				fmt.Sprintf("%s has %s left, %.0f%% of its allocation.", c.Label(), variance, share*100),
				opts...,
			))
			continue
		}

		impact := insight.ImpactLow
		switch {
		case share > pol.VarianceHigh:
			impact = insight.ImpactHigh
		case share > pol.VarianceMedium:
			impact = insight.ImpactMedium
		}
		opts = append(opts, insight.WithSuggestion(
			fmt.Sprintf("Cut %s spending by %s or move budget into it", c.Label(), variance.Neg())))
		out = append(out, insight.New(insight.TypeWarning, impact,
			fmt.Sprintf("%s is over budget", c.Label()),
			fmt.Sprintf("%s is %s over its %s allocation (%.0f%%).", c.Label(), variance.Neg(), c.Allocated, share*100),
			opts...,
		))
	}
	return out
}
