package analysis

import (
	"sort"
	"time"

	"budgetlens/internal/core"
)

// History buckets transaction spend per category and period. Bucket 0 is
// the period containing AsOf, bucket n lies n periods back. The zero value
// is an empty history.
type History struct {
	starts []time.Time
	spend  map[string][]int64
	counts map[string][]int
}

// NewHistory buckets txs into periods windows ending with the plan period
// that contains asOf. Transactions for another plan, with a non-positive
// amount or outside the window are ignored.
func NewHistory(txs []core.Transaction, plan core.BudgetPlan, asOf time.Time, periods int) History {
	if periods < 1 {
		periods = 1
	}
	cal := plan.Period.Calendar()
	current := plan.PeriodStart(asOf)

	h := History{
		starts: make([]time.Time, periods),
		spend:  make(map[string][]int64),
		counts: make(map[string][]int),
	}
	for n := range h.starts {
		h.starts[n] = cal.Shift(current, -n)
	}
	end := cal.Shift(current, 1)

	for _, tx := range txs {
		if tx.PlanID != "" && plan.ID != "" && tx.PlanID != plan.ID {
			continue
		}
		if tx.Amount.Cents <= 0 || tx.CategoryID == "" {
			continue
		}
		at := tx.Date.Time
		if !at.Before(end) {
			continue
		}
		n := h.bucketOf(at)
		if n < 0 {
			continue
		}
		if h.spend[tx.CategoryID] == nil {
			h.spend[tx.CategoryID] = make([]int64, periods)
			h.counts[tx.CategoryID] = make([]int, periods)
		}
		h.spend[tx.CategoryID][n] += tx.Amount.Cents
		h.counts[tx.CategoryID][n]++
	}
	return h
}

// WindowStart is the first instant NewHistory would bucket for the same
// arguments. Loaders use it to bound the transactions they fetch.
func WindowStart(plan core.BudgetPlan, asOf time.Time, periods int) time.Time {
	if periods < 1 {
		periods = 1
	}
	return plan.Period.Calendar().Shift(plan.PeriodStart(asOf), -(periods - 1))
}

// bucketOf returns the bucket index for t, or -1 when t is older than the window.
func (h History) bucketOf(t time.Time) int {
	for n, start := range h.starts {
		if !t.Before(start) {
			return n
		}
	}
	return -1
}

// Periods is the number of buckets.
func (h History) Periods() int {
	return len(h.starts)
}

// Start returns the first instant of bucket n.
func (h History) Start(n int) time.Time {
	if n < 0 || n >= len(h.starts) {
		return time.Time{}
	}
	return h.starts[n]
}

// Spend returns the summed spend of a category in bucket n.
func (h History) Spend(categoryID string, n int) core.Money {
	buckets := h.spend[categoryID]
	if n < 0 || n >= len(buckets) {
		return core.Money{}
	}
	return core.Money{Cents: buckets[n]}
}

// Count returns the number of transactions of a category in bucket n.
func (h History) Count(categoryID string, n int) int {
	counts := h.counts[categoryID]
	if n < 0 || n >= len(counts) {
		return 0
	}
	return counts[n]
}

// HasData reports whether bucket n holds any transaction for the category.
func (h History) HasData(categoryID string, n int) bool {
	return h.Count(categoryID, n) > 0
}

// Categories returns the category ids seen in the history, sorted.
func (h History) Categories() []string {
	ids := make([]string, 0, len(h.spend))
	for id := range h.spend {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TrailingAverage averages the spend of up to lookback completed periods
// (buckets 1..lookback) that have data. It returns the average in cents and
// how many periods contributed; with none it returns 0, 0.
func (h History) TrailingAverage(categoryID string, lookback int) (float64, int) {
	var sum int64
	used := 0
	for n := 1; n <= lookback && n < h.Periods(); n++ {
		if !h.HasData(categoryID, n) {
			continue
		}
		sum += h.Spend(categoryID, n).Cents
		used++
	}
	if used == 0 {
		return 0, 0
	}
	return float64(sum) / float64(used), used
}
