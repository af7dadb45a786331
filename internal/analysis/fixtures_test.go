package analysis

import (
	"time"

	"budgetlens/internal/core"
)

var (
	aprilStart = core.NewDate(2025, 4, 1)
	midApril   = time.Date(2025, 4, 16, 0, 0, 0, 0, time.UTC)
	endOfApril = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
)

func cat(id string, allocated, spent int64) core.CategoryBudget {
	return core.NewCategoryBudget(id, titleCase(id), core.Money{Cents: allocated}, core.Money{Cents: spent})
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

func plan(cats ...core.CategoryBudget) core.BudgetPlan {
	return core.NewBudgetPlan("home", "Home", core.Monthly, aprilStart, cats...)
}

func tx(category string, month, day int, cents int64) core.Transaction {
	return core.Transaction{
		PlanID:     "home",
		CategoryID: category,
		Amount:     core.Money{Cents: cents},
		Date:       core.NewDate(2025, month, day),
	}
}

func input(p core.BudgetPlan, asOf time.Time, txs ...core.Transaction) Input {
	pol := DefaultPolicy()
	return Input{
		Plan:    p,
		History: NewHistory(txs, p, asOf, pol.HistoryPeriods),
		AsOf:    asOf,
		Policy:  pol,
	}
}
