package core

import (
	"errors"
	"testing"
	"time"
)

func samplePlan() BudgetPlan {
	return NewBudgetPlan("home", "Home", Monthly, NewDate(2025, 4, 1),
		NewCategoryBudget("rent", "Rent", Money{Cents: 100000}, Money{Cents: 100000}),
		NewCategoryBudget("food", "Food", Money{Cents: 40000}, Money{Cents: 10000}),
	)
}

func TestBudgetPlan_Totals(t *testing.T) {
	p := samplePlan()
	if p.TotalAllocated().Cents != 140000 || p.TotalSpent().Cents != 110000 {
		t.Fatalf("totals = %v / %v", p.TotalAllocated(), p.TotalSpent())
	}
	if p.OverallVariance().Cents != 30000 {
		t.Fatalf("OverallVariance() = %v", p.OverallVariance())
	}
	if p.HasTotalsOverride() {
		t.Fatalf("fresh plan reports an override")
	}

	o := p.WithTotalsOverride(PlanTotals{Allocated: Money{Cents: 1}, Spent: Money{Cents: 2}})
	if !o.HasTotalsOverride() || o.TotalSpent().Cents != 2 {
		t.Fatalf("override not applied: %+v", o.Totals())
	}
	if o.ComputedTotals() != p.Totals() {
		t.Fatalf("ComputedTotals() must ignore override")
	}
	if p.HasTotalsOverride() {
		t.Fatalf("WithTotalsOverride mutated receiver")
	}
}

func TestBudgetPlan_PostAndWithCategory(t *testing.T) {
	p := samplePlan()

	updated, err := p.Post(Transaction{CategoryID: "food", Amount: Money{Cents: 500}})
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	food, _ := updated.Category("food")
	if food.Spent.Cents != 10500 {
		t.Errorf("food spent = %v", food.Spent)
	}
	orig, _ := p.Category("food")
	if orig.Spent.Cents != 10000 {
		t.Errorf("Post() mutated the original plan")
	}

	if _, err := p.Post(Transaction{CategoryID: "travel", Amount: Money{Cents: 1}}); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("Post() unknown category error = %v", err)
	}

	added := p.WithCategory(NewCategoryBudget("fun", "Fun", Money{Cents: 100}, Money{}))
	if len(added.Categories) != 3 || added.Categories[2].ID != "fun" {
		t.Errorf("WithCategory() append = %+v", added.Categories)
	}
}

func TestBudgetPlan_ElapsedFraction(t *testing.T) {
	p := samplePlan() // April: 30 days

	tests := []struct {
		name string
		asOf time.Time
		want float64
	}{
		{"before start", time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC), 0},
		{"at start", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), 0},
		{"midway", time.Date(2025, 4, 16, 0, 0, 0, 0, time.UTC), 0.5},
		{"after end", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.ElapsedFraction(tt.asOf); got != tt.want {
				t.Errorf("ElapsedFraction() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBudgetPlan_PeriodStartWithoutExplicitStart(t *testing.T) {
	p := NewBudgetPlan("p", "", Weekly, Date{})
	asOf := time.Date(2024, 1, 17, 10, 0, 0, 0, time.UTC)
	if got := p.PeriodStart(asOf); !got.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("PeriodStart() = %v", got)
	}
	if got := p.PeriodEnd(asOf); !got.Equal(time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("PeriodEnd() = %v", got)
	}
}

func TestBudgetPlan_ValidateAndMalformed(t *testing.T) {
	if err := samplePlan().Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if samplePlan().IsMalformed() {
		t.Fatalf("valid plan reported malformed")
	}

	bad := NewBudgetPlan("", "", "daily", Date{},
		NewCategoryBudget("a", "", Money{Cents: -1}, Money{}),
		NewCategoryBudget("a", "", Money{}, Money{}),
	)
	err := bad.Validate()
	for _, want := range []error{ErrEmptyPlan, ErrInvalidPeriod, ErrNegativeAllocation} {
		if !errors.Is(err, want) {
			t.Errorf("Validate() missing %v in %v", want, err)
		}
	}
	if !bad.IsMalformed() {
		t.Errorf("IsMalformed() = false for negative allocation")
	}
}

func TestBudgetPlan_AtRiskCount(t *testing.T) {
	p := samplePlan() // rent at 100% is danger
	if got := p.AtRiskCount(); got != 1 {
		t.Errorf("AtRiskCount() = %d, want 1", got)
	}
}

func TestBudgetPlan_Covers(t *testing.T) {
	p := samplePlan()
	tests := []struct {
		date Date
		want bool
	}{
		{NewDate(2025, 3, 31), false},
		{NewDate(2025, 4, 1), true},
		{NewDate(2025, 4, 30), true},
		{NewDate(2025, 5, 1), false},
	}
	for _, tt := range tests {
		if got := p.Covers(tt.date); got != tt.want {
			t.Errorf("Covers(%s) = %v, want %v", tt.date, got, tt.want)
		}
	}
	if !NewBudgetPlan("open", "", Monthly, Date{}).Covers(NewDate(1999, 1, 1)) {
		t.Error("plan without start should cover every date")
	}
}

func TestBudgetPlan_MonthEndStart(t *testing.T) {
	p := NewBudgetPlan("home", "Home", Monthly, NewDate(2025, 1, 31))

	if got, want := p.PeriodEnd(time.Time{}), NewDate(2025, 2, 28).Time; !got.Equal(want) {
		t.Errorf("PeriodEnd() = %v, want %v", got, want)
	}
	tests := []struct {
		date Date
		want bool
	}{
		{NewDate(2025, 1, 30), false},
		{NewDate(2025, 1, 31), true},
		{NewDate(2025, 2, 27), true},
		{NewDate(2025, 2, 28), false},
		{NewDate(2025, 3, 2), false},
	}
	for _, tt := range tests {
		if got := p.Covers(tt.date); got != tt.want {
			t.Errorf("Covers(%s) = %v, want %v", tt.date, got, tt.want)
		}
	}

	// 14 of the period's 28 days have passed
	if got := p.ElapsedFraction(NewDate(2025, 2, 14).Time); got != 0.5 {
		t.Errorf("ElapsedFraction(Feb 14) = %v, want 0.5", got)
	}
	if got := p.ElapsedFraction(NewDate(2025, 2, 28).Time); got != 1 {
		t.Errorf("ElapsedFraction(Feb 28) = %v, want 1", got)
	}
}
