package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// PlanTotals are the plan-level sums of allocation and spend.
type PlanTotals struct {
	Allocated Money
	Spent     Money
}

// Variance is allocated minus spent.
func (t PlanTotals) Variance() Money {
	return t.Allocated.Sub(t.Spent)
}

// BudgetPlan is an ordered set of category budgets for one period.
type BudgetPlan struct {
	ID         string
	Name       string
	Period     Period
	Start      Date
	Categories []CategoryBudget

	// override replaces the computed totals. Callers should not need it.
	override *PlanTotals
}

// NewBudgetPlan builds a plan; the category slice is copied.
func NewBudgetPlan(id, name string, period Period, start Date, categories ...CategoryBudget) BudgetPlan {
	return BudgetPlan{
		ID:         id,
		Name:       name,
		Period:     period,
		Start:      start,
		Categories: append([]CategoryBudget(nil), categories...),
	}
}

// ComputedTotals sums the categories, ignoring any override.
func (p BudgetPlan) ComputedTotals() PlanTotals {
	var t PlanTotals
	for _, c := range p.Categories {
		t.Allocated = t.Allocated.Add(c.Allocated)
		t.Spent = t.Spent.Add(c.Spent)
	}
	return t
}

// Totals returns the override when set, else the computed totals.
func (p BudgetPlan) Totals() PlanTotals {
	if p.override != nil {
		return *p.override
	}
	return p.ComputedTotals()
}

func (p BudgetPlan) TotalAllocated() Money { return p.Totals().Allocated }

func (p BudgetPlan) TotalSpent() Money { return p.Totals().Spent }

func (p BudgetPlan) OverallVariance() Money { return p.Totals().Variance() }

// WithTotalsOverride pins plan totals to explicit values.
//
// Deprecated: totals should come from the categories. Kept for sources that
// only carry plan-level figures.
func (p BudgetPlan) WithTotalsOverride(t PlanTotals) BudgetPlan {
	p.override = &t
	return p
}

// HasTotalsOverride reports whether Totals differ in origin from the categories.
func (p BudgetPlan) HasTotalsOverride() bool {
	return p.override != nil
}

// WithCategory returns a copy with c replacing the category of the same id,
// or appended when the id is new.
func (p BudgetPlan) WithCategory(c CategoryBudget) BudgetPlan {
	cats := make([]CategoryBudget, 0, len(p.Categories)+1)
	replaced := false
	for _, existing := range p.Categories {
		if existing.ID == c.ID {
			cats = append(cats, c)
			replaced = true
			continue
		}
		cats = append(cats, existing)
	}
	if !replaced {
		cats = append(cats, c)
	}
	p.Categories = cats
	return p
}

// Category finds a category by id.
func (p BudgetPlan) Category(id string) (CategoryBudget, bool) {
	for _, c := range p.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return CategoryBudget{}, false
}

// Post applies a transaction to its category and returns the updated plan.
func (p BudgetPlan) Post(tx Transaction) (BudgetPlan, error) {
	c, ok := p.Category(tx.CategoryID)
	if !ok {
		return p, fmt.Errorf("%w: %s", ErrUnknownCategory, tx.CategoryID)
	}
	updated, err := c.Post(tx)
	if err != nil {
		return p, err
	}
	return p.WithCategory(updated), nil
}

// PeriodStart returns the start of the plan's period. Plans without an
// explicit start use the period containing asOf.
func (p BudgetPlan) PeriodStart(asOf time.Time) time.Time {
	if !p.Start.IsZero() {
		return p.Start.Time
	}
	return p.Period.Calendar().Start(asOf)
}

// PeriodEnd returns the exclusive end of the plan's period.
func (p BudgetPlan) PeriodEnd(asOf time.Time) time.Time {
	return p.Period.End(p.PeriodStart(asOf))
}

// Covers reports whether d falls inside the plan's own period. Plans
// without an explicit start cover every date.
func (p BudgetPlan) Covers(d Date) bool {
	if p.Start.IsZero() {
		return true
	}
	return !d.Before(p.Start.Time) && d.Before(p.Period.End(p.Start.Time))
}

// ElapsedFraction is how much of the period has passed at asOf, in [0,1].
func (p BudgetPlan) ElapsedFraction(asOf time.Time) float64 {
	start := p.PeriodStart(asOf)
	end := p.Period.End(start)
	total := end.Sub(start)
	if total <= 0 {
		return 0
	}
	elapsed := asOf.Sub(start)
	switch {
	case elapsed <= 0:
		return 0
	case elapsed >= total:
		return 1
	}
	return float64(elapsed) / float64(total)
}

// IsMalformed reports whether any category carries negative amounts.
func (p BudgetPlan) IsMalformed() bool {
	for _, c := range p.Categories {
		if c.Malformed() {
			return true
		}
	}
	return false
}

// AtRiskCount counts categories classified as danger or critical.
func (p BudgetPlan) AtRiskCount() int {
	n := 0
	for _, c := range p.Categories {
		if c.HealthStatus().AtRisk() {
			n++
		}
	}
	return n
}

func (p BudgetPlan) Validate() error {
	var errs []error
	if strings.TrimSpace(p.ID) == "" {
		errs = append(errs, ErrEmptyPlan)
	}
	if err := p.Period.Validate(); err != nil {
		errs = append(errs, err)
	}
	seen := make(map[string]bool, len(p.Categories))
	for _, c := range p.Categories {
		if err := c.Validate(); err != nil {
			errs = append(errs, err)
		}
		if seen[c.ID] {
			errs = append(errs, fmt.Errorf("duplicate category %q", c.ID))
		}
		seen[c.ID] = true
	}
	return errors.Join(errs...)
}
