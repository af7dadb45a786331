package core

import (
	"fmt"
	"strings"
)

// HealthStatus is the five-band classification of a category's usage.
type HealthStatus string

const (
	Excellent HealthStatus = "excellent"
	Good      HealthStatus = "good"
	Warning   HealthStatus = "warning"
	Danger    HealthStatus = "danger"
	Critical  HealthStatus = "critical"
)

// WarningLevelPercentage is the usage at which a category needs attention.
const WarningLevelPercentage = 80.0

// ClassifyUsage maps a usage percentage to a health status.
// Upper bounds are inclusive: 50 is excellent, 50.01 is good.
func ClassifyUsage(pct float64) HealthStatus {
	switch {
	case pct <= 50:
		return Excellent
	case pct <= 70:
		return Good
	case pct <= 80:
		return Warning
	case pct <= 100:
		return Danger
	default:
		return Critical
	}
}

// AtRisk reports whether the status is danger or critical.
func (s HealthStatus) AtRisk() bool {
	return s == Danger || s == Critical
}

// CategoryBudget is one category's allocation and spend for a period.
// Remaining, variance and usage are always derived from Allocated and Spent.
type CategoryBudget struct {
	ID               string
	Name             string
	Allocated        Money
	Spent            Money
	TransactionCount int
}

// NewCategoryBudget builds a category budget value.
func NewCategoryBudget(id, name string, allocated, spent Money) CategoryBudget {
	return CategoryBudget{ID: id, Name: name, Allocated: allocated, Spent: spent}
}

// Label returns the display name, falling back to the id.
func (c CategoryBudget) Label() string {
	if strings.TrimSpace(c.Name) != "" {
		return c.Name
	}
	return c.ID
}

// Remaining is allocated minus spent; it may be negative.
func (c CategoryBudget) Remaining() Money {
	return c.Allocated.Sub(c.Spent)
}

// Variance is allocated minus spent: positive under budget, negative overspend.
func (c CategoryBudget) Variance() Money {
	return c.Allocated.Sub(c.Spent)
}

// UsagePercentage is spent/allocated*100, or 0 when nothing is allocated.
// The value is not clamped; usage above 100 means overspend.
func (c CategoryBudget) UsagePercentage() float64 {
	if c.Allocated.Cents <= 0 {
		return 0
	}
	return float64(c.Spent.Cents) * 100 / float64(c.Allocated.Cents)
}

func (c CategoryBudget) HealthStatus() HealthStatus {
	return ClassifyUsage(c.UsagePercentage())
}

func (c CategoryBudget) IsOverBudget() bool {
	return c.Spent.Cents > c.Allocated.Cents
}

func (c CategoryBudget) IsWarningLevel() bool {
	return c.UsagePercentage() >= WarningLevelPercentage
}

// WithAllocated returns a copy with a new allocation.
func (c CategoryBudget) WithAllocated(m Money) CategoryBudget {
	c.Allocated = m
	return c
}

// WithSpent returns a copy with a new spent amount.
func (c CategoryBudget) WithSpent(m Money) CategoryBudget {
	c.Spent = m
	return c
}

// Post returns a copy with the transaction amount added to spend.
func (c CategoryBudget) Post(tx Transaction) (CategoryBudget, error) {
	if tx.CategoryID != c.ID {
		return c, fmt.Errorf("%w: transaction for %q posted to %q", ErrUnknownCategory, tx.CategoryID, c.ID)
	}
	if err := tx.Amount.Validate(); err != nil {
		return c, err
	}
	c.Spent = c.Spent.Add(tx.Amount)
	c.TransactionCount++
	return c, nil
}

// Malformed reports whether the category holds values the analyzers cannot trust.
func (c CategoryBudget) Malformed() bool {
	return c.Allocated.IsNegative() || c.Spent.IsNegative() || c.TransactionCount < 0
}

func (c CategoryBudget) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrEmptyCategory
	}
	if c.Allocated.IsNegative() {
		return fmt.Errorf("category %s: %w", c.ID, ErrNegativeAllocation)
	}
	if c.Spent.IsNegative() {
		return fmt.Errorf("category %s: %w", c.ID, ErrNegativeSpend)
	}
	if c.TransactionCount < 0 {
		return fmt.Errorf("category %s: negative transaction count", c.ID)
	}
	return nil
}
