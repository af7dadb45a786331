package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetlens/internal/core"
)

func TestNewHistory_Buckets(t *testing.T) {
	p := plan(cat("food", 10000, 0))
	other := tx("food", 3, 5, 999)
	other.PlanID = "office"

	h := NewHistory([]core.Transaction{
		tx("food", 4, 2, 100),
		tx("food", 4, 30, 50),
		tx("food", 3, 31, 200),
		tx("food", 3, 1, 300),
		tx("food", 1, 15, 400),
		tx("food", 12, 31, 7000), // 2025-12-31: after the window
		tx("food", 2, 10, -10),   // refunds are ignored
		tx("rent", 2, 1, 800),
		other,
	}, p, midApril, 4)

	require.Equal(t, 4, h.Periods())
	assert.Equal(t, aprilStart.Time, h.Start(0))
	assert.Equal(t, core.NewDate(2025, 1, 1).Time, h.Start(3))

	assert.Equal(t, int64(150), h.Spend("food", 0).Cents)
	assert.Equal(t, int64(500), h.Spend("food", 1).Cents)
	assert.Equal(t, 2, h.Count("food", 1))
	assert.False(t, h.HasData("food", 2))
	assert.Equal(t, int64(400), h.Spend("food", 3).Cents)
	assert.Equal(t, int64(800), h.Spend("rent", 2).Cents)
	assert.Equal(t, []string{"food", "rent"}, h.Categories())

	assert.Zero(t, h.Spend("food", 9).Cents)
	assert.Zero(t, h.Spend("missing", 0).Cents)
}

func TestNewHistory_MonthEndStart(t *testing.T) {
	p := core.NewBudgetPlan("home", "Home", core.Monthly, core.NewDate(2025, 3, 31), cat("food", 10000, 0))
	asOf := core.NewDate(2025, 4, 15).Time

	h := NewHistory([]core.Transaction{
		tx("food", 4, 30, 1), // first day of the next period
		tx("food", 3, 31, 10),
		tx("food", 3, 5, 20),
		tx("food", 2, 28, 40),
		tx("food", 2, 27, 80),
		tx("food", 1, 31, 160),
		tx("food", 1, 30, 320), // before the window
	}, p, asOf, 3)

	assert.Equal(t, core.NewDate(2025, 3, 31).Time, h.Start(0))
	assert.Equal(t, core.NewDate(2025, 2, 28).Time, h.Start(1))
	assert.Equal(t, core.NewDate(2025, 1, 31).Time, h.Start(2))
	assert.Equal(t, core.NewDate(2025, 1, 31).Time, WindowStart(p, asOf, 3))

	assert.Equal(t, int64(10), h.Spend("food", 0).Cents)
	assert.Equal(t, int64(60), h.Spend("food", 1).Cents, "March 5 belongs to the period starting Feb 28")
	assert.Equal(t, int64(240), h.Spend("food", 2).Cents)
}

func TestNewHistory_DropsOlderThanWindow(t *testing.T) {
	p := plan(cat("food", 10000, 0))
	h := NewHistory([]core.Transaction{tx("food", 1, 10, 100)}, p, midApril, 2)
	assert.Empty(t, h.Categories())
}

func TestHistory_TrailingAverage(t *testing.T) {
	p := plan(cat("food", 10000, 0))
	h := NewHistory([]core.Transaction{
		tx("food", 4, 3, 99999), // current period is never averaged
		tx("food", 3, 3, 1000),
		tx("food", 1, 3, 3000),
	}, p, midApril, 4)

	avg, used := h.TrailingAverage("food", 3)
	assert.Equal(t, 2000.0, avg)
	assert.Equal(t, 2, used)

	avg, used = h.TrailingAverage("food", 1)
	assert.Equal(t, 1000.0, avg)
	assert.Equal(t, 1, used)

	avg, used = h.TrailingAverage("rent", 3)
	assert.Zero(t, avg)
	assert.Zero(t, used)
}

func TestHistory_ZeroValue(t *testing.T) {
	var h History
	assert.Zero(t, h.Periods())
	assert.True(t, h.Start(0).IsZero())
	assert.Zero(t, h.Spend("x", 0).Cents)
	avg, used := h.TrailingAverage("x", 3)
	assert.Zero(t, avg)
	assert.Zero(t, used)
}

func TestWindowStart(t *testing.T) {
	p := plan(cat("food", 10000, 0))
	assert.Equal(t, core.NewDate(2025, 1, 1).Time, WindowStart(p, midApril, 4))
	assert.Equal(t, aprilStart.Time, WindowStart(p, midApril, 0))
}
