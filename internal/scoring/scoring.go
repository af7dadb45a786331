// Package scoring turns category health and insight impacts into a single
// 0-100 health score.
package scoring

import (
	"math"

	"budgetlens/internal/core"
	"budgetlens/internal/insight"
)

// Score bands for the aggregate health score.
const (
	BandExcellent      = "excellent"
	BandGood           = "good"
	BandNeedsAttention = "needs attention"
	BandUrgent         = "needs urgent attention"
)

// Deductions applied per insight impact.
const (
	HighImpactPenalty   = 5.0
	MediumImpactPenalty = 2.0
)

// Confidence maps an impact to a confidence percentage.
func Confidence(impact insight.Impact) int {
	switch impact {
	case insight.ImpactHigh:
		return 90
	case insight.ImpactMedium:
		return 70
	case insight.ImpactLow:
		return 50
	case insight.ImpactPositive:
		return 85
	default:
		return 60
	}
}

// CategoryPoints is the health value of a single category.
func CategoryPoints(status core.HealthStatus) float64 {
	switch status {
	case core.Excellent:
		return 100
	case core.Good:
		return 85
	case core.Warning:
		return 65
	case core.Danger:
		return 40
	case core.Critical:
		return 15
	default:
		return 0
	}
}

// CategoryWeight weights troubled categories more heavily in the mean.
func CategoryWeight(status core.HealthStatus) float64 {
	switch status {
	case core.Danger:
		return 2
	case core.Critical:
		return 3
	default:
		return 1
	}
}

// CategoryAverage is the weighted mean of category points, 100 for no categories.
func CategoryAverage(categories []core.CategoryBudget) float64 {
	var sum, weights float64
	for _, c := range categories {
		status := c.HealthStatus()
		w := CategoryWeight(status)
		sum += w * CategoryPoints(status)
		weights += w
	}
	if weights == 0 {
		return 100
	}
	return sum / weights
}

// Penalty is the total deduction for a set of insights. Dismissed insights
// still count.
func Penalty(insights []insight.Insight) float64 {
	var p float64
	for _, in := range insights {
		switch in.Impact {
		case insight.ImpactHigh:
			p += HighImpactPenalty
		case insight.ImpactMedium:
			p += MediumImpactPenalty
		}
	}
	return p
}

// Score computes the overall health score, clamped to [0,100] and rounded
// to one decimal. For a fixed set of categories the score never rises when
// one of them degrades to danger or critical, or when a high-impact insight
// is added. Adding a category is not covered: a new danger category can lift
// a plan whose other categories are all critical.
func Score(categories []core.CategoryBudget, insights []insight.Insight) float64 {
	return Clamp(CategoryAverage(categories) - Penalty(insights))
}

// Clamp bounds a score to [0,100] and rounds it to one decimal. NaN maps to 0.
func Clamp(score float64) float64 {
	switch {
	case math.IsNaN(score) || score < 0:
		return 0
	case score > 100:
		return 100
	}
	return math.Round(score*10) / 10
}

// Band labels an aggregate score.
func Band(score float64) string {
	switch {
	case score >= 80:
		return BandExcellent
	case score >= 60:
		return BandGood
	case score >= 40:
		return BandNeedsAttention
	default:
		return BandUrgent
	}
}
