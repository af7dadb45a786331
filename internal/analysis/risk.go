package analysis

import (
	"fmt"
	"sort"
	"strings"

	"budgetlens/internal/core"
	"budgetlens/internal/insight"
)

// riskiestNamed caps how many categories the risk suggestion names.
const riskiestNamed = 3

// RiskAnalyzer combines danger and critical categories into one narrative.
type RiskAnalyzer struct{}

func (RiskAnalyzer) Kind() Kind { return KindRisk }

func (RiskAnalyzer) Analyze(in Input) []insight.Insight {
	if !in.usable() {
		return nil
	}
	pol := in.policy()

	budgeted := in.budgeted()
	var atRisk []core.CategoryBudget
	warning, critical := 0, 0
	for _, c := range budgeted {
		if c.IsWarningLevel() {
			warning++
		}
		switch c.HealthStatus() {
		case core.Critical:
			critical++
			atRisk = append(atRisk, c)
		case core.Danger:
			atRisk = append(atRisk, c)
		}
	}
	if len(atRisk) == 0 {
		return nil
	}

	share := ratio(float64(warning), float64(len(budgeted)))
	impact := insight.ImpactLow
	switch {
	case share > pol.RiskShareThreshold:
		impact = insight.ImpactHigh
	case critical > 0:
		impact = insight.ImpactMedium
	}

	sort.SliceStable(atRisk, func(i, j int) bool {
		ui, uj := atRisk[i].UsagePercentage(), atRisk[j].UsagePercentage()
		if ui != uj {
			return ui > uj
		}
		return atRisk[i].ID < atRisk[j].ID
	})
	names := make([]string, 0, riskiestNamed)
	for i, c := range atRisk {
		if i == riskiestNamed {
			break
		}
		names = append(names, c.Label())
	}

	return []insight.Insight{insight.New(insight.TypeRisk, impact,
		"Budget risk",
		fmt.Sprintf("%d of %d categories are at risk (%d over budget, %d near the limit).",
			len(atRisk), len(budgeted), critical, len(atRisk)-critical),
		insight.WithValue(round2(share*100)),
		insight.WithSuggestion("Review spending in "+strings.Join(names, ", ")+" first"),
		insight.From(string(KindRisk)),
	)}
}
