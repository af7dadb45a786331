package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"budgetlens/internal/insight"
)

func TestAnalysisReport_Counts(t *testing.T) {
	var r AnalysisReport
	assert.True(t, r.IsEmpty())
	assert.Zero(t, r.TotalInsightCount())
	assert.NotNil(t, r.Insights())

	r.AddPattern(insight.New(insight.TypePattern, insight.ImpactHigh, "p", ""))
	r.AddVariance(insight.New(insight.TypeWarning, insight.ImpactMedium, "v", ""))
	r.AddOptimization(insight.New(insight.TypeOptimization, insight.ImpactLow, "o", ""))
	r.AddAnomaly(insight.New(insight.TypeRisk, insight.ImpactHigh, "a", ""))
	r.SetCashFlow(insight.New(insight.TypeForecast, insight.ImpactPositive, "c", ""))
	r.SetRisk(insight.New(insight.TypeRisk, insight.ImpactLow, "r", ""))

	assert.False(t, r.IsEmpty())
	assert.Equal(t, 6, r.TotalInsightCount())
	assert.Equal(t, 2, r.HighPriorityInsightCount())

	titles := make([]string, 0, 6)
	for _, in := range r.Insights() {
		titles = append(titles, in.Title)
	}
	assert.Equal(t, []string{"p", "v", "c", "r", "o", "a"}, titles)
}

func TestAnalysisReport_SetKeepsSingleValue(t *testing.T) {
	var r AnalysisReport
	r.SetRisk(insight.New(insight.TypeRisk, insight.ImpactLow, "first", ""))
	r.SetRisk(insight.New(insight.TypeRisk, insight.ImpactLow, "second", ""))
	assert.Equal(t, 1, r.TotalInsightCount())
	assert.Equal(t, "second", r.Risk.Title)
}

func TestAnalysisReport_HasCriticalIssues(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		high  bool
		want  bool
	}{
		{"healthy", 85, false, false},
		{"high priority insight", 85, true, true},
		{"low score", 39.9, false, true},
		{"boundary score", 40, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := AnalysisReport{OverallHealthScore: tt.score}
			if tt.high {
				r.AddPattern(insight.New(insight.TypePattern, insight.ImpactHigh, "", ""))
			}
			assert.Equal(t, tt.want, r.HasCriticalIssues())
		})
	}
}

func TestAnalysisReport_HealthBand(t *testing.T) {
	assert.Equal(t, "needs attention", (&AnalysisReport{OverallHealthScore: 45}).HealthBand())
}

func TestTopRecommendations(t *testing.T) {
	list := []insight.Insight{
		insight.New(insight.TypePositive, insight.ImpactPositive, "", "", insight.WithSuggestion("Keep it up")),
		insight.New(insight.TypeWarning, insight.ImpactLow, "", "", insight.WithSuggestion("Low one")),
		insight.New(insight.TypeInfo, insight.ImpactHigh, "", ""),
		insight.New(insight.TypeWarning, insight.ImpactHigh, "", "", insight.WithSuggestion("Cut  food spending.")),
		insight.New(insight.TypeWarning, insight.ImpactMedium, "", "", insight.WithSuggestion("cut food spending")),
		insight.New(insight.TypeWarning, insight.ImpactMedium, "", "", insight.WithSuggestion("Medium one")),
		insight.New(insight.TypeWarning, "", "", "", insight.WithSuggestion("Unset one")),
	}

	got := TopRecommendations(list, 10)
	assert.Equal(t, []string{"Cut  food spending.", "Medium one", "Low one", "Keep it up", "Unset one"}, got)

	assert.Equal(t, []string{"Cut  food spending.", "Medium one"}, TopRecommendations(list, 2))
	assert.Len(t, TopRecommendations(list, 0), DefaultRecommendationCap)
	assert.Empty(t, TopRecommendations(nil, 5))
}

func TestTopRecommendations_NeverDuplicates(t *testing.T) {
	var list []insight.Insight
	for _, s := range []string{"Save more", "save more!", " SAVE   MORE ", "Save more...", "Spend less"} {
		list = append(list, insight.New(insight.TypeInfo, insight.ImpactMedium, "", "", insight.WithSuggestion(s)))
	}
	got := TopRecommendations(list, 5)
	assert.Equal(t, []string{"Save more", "Spend less"}, got)

	seen := map[string]bool{}
	for _, s := range got {
		key := NormalizeText(s)
		assert.False(t, seen[key], "duplicate %q", s)
		seen[key] = true
	}
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "move 10.00 from fun to food", NormalizeText("  Move 10.00\tfrom Fun to  Food!! "))
	assert.Equal(t, "", NormalizeText(" ... "))
}
