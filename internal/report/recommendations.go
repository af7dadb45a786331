package report

import (
	"sort"
	"strings"
	"unicode"

	"budgetlens/internal/insight"
)

// DefaultRecommendationCap bounds TopRecommendations when no cap is given.
const DefaultRecommendationCap = 5

// TopRecommendations collects the suggestions of actionable insights,
// ranked by impact, deduplicated by normalized text and truncated to limit.
// Ties keep the input order.
func TopRecommendations(insights []insight.Insight, limit int) []string {
	if limit <= 0 {
		limit = DefaultRecommendationCap
	}

	actionable := make([]insight.Insight, 0, len(insights))
	for _, in := range insights {
		if in.Actionable() {
			actionable = append(actionable, in)
		}
	}
	sort.SliceStable(actionable, func(i, j int) bool {
		return actionable[i].Impact.Rank() < actionable[j].Impact.Rank()
	})

	seen := make(map[string]bool, len(actionable))
	out := make([]string, 0, limit)
	for _, in := range actionable {
		key := NormalizeText(in.Suggestion)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(in.Suggestion))
		if len(out) == limit {
			break
		}
	}
	return out
}

// NormalizeText lower-cases s, collapses whitespace and drops trailing
// punctuation, so near-identical suggestions compare equal.
func NormalizeText(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	return strings.TrimRightFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
}
