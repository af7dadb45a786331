package analysis

import (
	"fmt"
	"sort"

	"budgetlens/internal/core"
	"budgetlens/internal/insight"
)

// OptimizationAnalyzer suggests moving unused allocation from comfortable
// categories to overspent ones.
type OptimizationAnalyzer struct{}

func (OptimizationAnalyzer) Kind() Kind { return KindOptimization }

type transferSide struct {
	cat    core.CategoryBudget
	amount int64
}

func (OptimizationAnalyzer) Analyze(in Input) []insight.Insight {
	if !in.usable() {
		return nil
	}
	pol := in.policy()
	if pol.OptimizationMaxSuggestions == 0 {
		return nil
	}

	var donors, recipients []transferSide
	for _, c := range in.budgeted() {
		variance := c.Variance().Cents
		status := c.HealthStatus()
		switch {
		case variance > 0 && (status == core.Excellent || status == core.Good) &&
			c.UsagePercentage() < pol.OptimizationDonorMaxUsage:
			release := int64(float64(variance) * pol.OptimizationReleaseShare)
			if release > 0 {
				donors = append(donors, transferSide{cat: c, amount: release})
			}
		case variance < 0:
			recipients = append(recipients, transferSide{cat: c, amount: -variance})
		}
	}
	if len(donors) == 0 || len(recipients) == 0 {
		return nil
	}
	byAmount := func(s []transferSide) {
		sort.SliceStable(s, func(i, j int) bool {
			if s[i].amount != s[j].amount {
				return s[i].amount > s[j].amount
			}
			return s[i].cat.ID < s[j].cat.ID
		})
	}
	byAmount(recipients)

	var out []insight.Insight
	for _, r := range recipients {
		for r.amount > 0 && len(out) < pol.OptimizationMaxSuggestions {
			byAmount(donors)
			if donors[0].amount <= 0 {
				return out
			}
			d := &donors[0]
			move := min(d.amount, r.amount)
			d.amount -= move
			r.amount -= move

			amount := core.Money{Cents: move}
			impact := insight.ImpactMedium
			if r.amount > 0 {
				impact = insight.ImpactLow
			}
			out = append(out, insight.New(insight.TypeOptimization, impact,
				fmt.Sprintf("Rebalance %s", r.cat.Label()),
				fmt.Sprintf("%s is using %.0f%% of its allocation while %s is %s over.",
					d.cat.Label(), d.cat.UsagePercentage(), r.cat.Label(), r.cat.Variance().Neg()),
				insight.WithValue(round2(amount.Units())),
				insight.WithSuggestion(fmt.Sprintf("Move %s from %s to %s", amount, d.cat.Label(), r.cat.Label())),
				insight.ForCategory(r.cat.ID),
				insight.From(string(KindOptimization)),
			))
		}
		if len(out) >= pol.OptimizationMaxSuggestions {
			break
		}
	}
	return out
}
