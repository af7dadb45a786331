// Package insight defines the analytic finding emitted by the analyzers.
package insight

import "strings"

// Type classifies what an insight is about.
type Type string

const (
	TypePattern      Type = "pattern"
	TypeTrend        Type = "trend"
	TypeWarning      Type = "warning"
	TypeRisk         Type = "risk"
	TypeOptimization Type = "optimization"
	TypeForecast     Type = "forecast"
	TypePositive     Type = "positive"
	TypeInfo         Type = "info"
)

// Impact is the severity of an insight. The zero value means unset.
type Impact string

const (
	ImpactHigh     Impact = "high"
	ImpactMedium   Impact = "medium"
	ImpactLow      Impact = "low"
	ImpactPositive Impact = "positive"
)

// Rank orders impacts for recommendation ranking: high first, unset last.
func (i Impact) Rank() int {
	switch i {
	case ImpactHigh:
		return 0
	case ImpactMedium:
		return 1
	case ImpactLow:
		return 2
	case ImpactPositive:
		return 3
	default:
		return 4
	}
}

// Insight is a single analytic finding. Actionable and HighPriority are
// derived from Suggestion and Impact and cannot be set independently.
type Insight struct {
	Title      string
	Message    string
	Type       Type
	Impact     Impact
	Value      *float64
	Suggestion string
	CategoryID string
	Source     string
	Dismissed  bool
}

// Option customizes an Insight built by New.
type Option func(*Insight)

// WithValue attaches the numeric payload.
func WithValue(v float64) Option {
	return func(in *Insight) { in.Value = &v }
}

// WithSuggestion attaches a suggestion, which makes the insight actionable.
func WithSuggestion(s string) Option {
	return func(in *Insight) { in.Suggestion = strings.TrimSpace(s) }
}

// ForCategory ties the insight to a category id.
func ForCategory(id string) Option {
	return func(in *Insight) { in.CategoryID = id }
}

// From records the analyzer that produced the insight.
func From(source string) Option {
	return func(in *Insight) { in.Source = source }
}

// New builds an insight.
func New(t Type, impact Impact, title, message string, opts ...Option) Insight {
	in := Insight{Title: title, Message: message, Type: t, Impact: impact}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}

func (in Insight) Actionable() bool {
	return strings.TrimSpace(in.Suggestion) != ""
}

func (in Insight) HighPriority() bool {
	return in.Impact == ImpactHigh
}

// HasValue reports whether a numeric payload is attached.
func (in Insight) HasValue() bool {
	return in.Value != nil
}

// ValueOr returns the numeric payload or def when none is attached.
func (in Insight) ValueOr(def float64) float64 {
	if in.Value == nil {
		return def
	}
	return *in.Value
}

// Dismiss returns a dismissed copy.
func (in Insight) Dismiss() Insight {
	in.Dismissed = true
	return in
}

// Restore returns a copy that is no longer dismissed.
func (in Insight) Restore() Insight {
	in.Dismissed = false
	return in
}

// Clone returns a copy that shares no memory with in.
func (in Insight) Clone() Insight {
	if in.Value != nil {
		v := *in.Value
		in.Value = &v
	}
	return in
}

// Count returns how many insights match pred.
func Count(insights []Insight, pred func(Insight) bool) int {
	n := 0
	for _, in := range insights {
		if pred(in) {
			n++
		}
	}
	return n
}
