package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivedFlags(t *testing.T) {
	tests := []struct {
		name           string
		impact         Impact
		opts           []Option
		wantActionable bool
		wantHigh       bool
	}{
		{"high with suggestion", ImpactHigh, []Option{WithSuggestion("cut back")}, true, true},
		{"high without suggestion", ImpactHigh, nil, false, true},
		{"blank suggestion is not actionable", ImpactMedium, []Option{WithSuggestion("   ")}, false, false},
		{"positive", ImpactPositive, []Option{WithSuggestion("keep going")}, true, false},
		{"unset impact", "", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := New(TypeInfo, tt.impact, "t", "m", tt.opts...)
			assert.Equal(t, tt.wantActionable, in.Actionable())
			assert.Equal(t, tt.wantHigh, in.HighPriority())
		})
	}
}

func TestNew_Options(t *testing.T) {
	in := New(TypeWarning, ImpactLow, "Over", "msg",
		WithValue(-12.5), ForCategory("food"), From("variance"))

	require.True(t, in.HasValue())
	assert.Equal(t, -12.5, *in.Value)
	assert.Equal(t, "food", in.CategoryID)
	assert.Equal(t, "variance", in.Source)
	assert.Equal(t, 7.0, New(TypeInfo, "", "", "").ValueOr(7))
}

func TestDismissRestore(t *testing.T) {
	in := New(TypeRisk, ImpactHigh, "t", "m")
	d := in.Dismiss()

	assert.True(t, d.Dismissed)
	assert.False(t, in.Dismissed, "Dismiss must return a copy")
	assert.False(t, d.Restore().Dismissed)
	assert.True(t, d.HighPriority(), "dismissal does not change priority")
}

func TestImpactRank(t *testing.T) {
	order := []Impact{ImpactHigh, ImpactMedium, ImpactLow, ImpactPositive, "", "bogus"}
	for i := 1; i < len(order); i++ {
		assert.LessOrEqual(t, order[i-1].Rank(), order[i].Rank(), "%q before %q", order[i-1], order[i])
	}
	assert.Equal(t, Impact("").Rank(), Impact("bogus").Rank())
}

func TestClone(t *testing.T) {
	in := New(TypeInfo, ImpactLow, "t", "m", WithValue(1))
	c := in.Clone()
	*c.Value = 2
	assert.Equal(t, 1.0, *in.Value)
}

func TestCount(t *testing.T) {
	list := []Insight{
		New(TypeInfo, ImpactHigh, "", ""),
		New(TypeInfo, ImpactLow, "", ""),
		New(TypeInfo, ImpactHigh, "", ""),
	}
	assert.Equal(t, 2, Count(list, Insight.HighPriority))
	assert.Zero(t, Count(nil, Insight.HighPriority))
}
