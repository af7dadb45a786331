package google

import (
	"fmt"
	"strings"
	"time"

	"budgetlens/internal/core"
)

var (
	budgetHeaders      = []string{"Plan", "Period", "Start", "Category", "Name", "Allocated", "Spent"}
	transactionHeaders = []string{"Plan", "Date", "Category", "Amount", "Description"}
)

// columns maps each wanted header to its index in the header row.
func columns(header []string, want []string) (map[string]int, error) {
	cols := make(map[string]int, len(want))
	var missing []string
	for _, h := range want {
		i := indexOf(header, h)
		if i == -1 {
			missing = append(missing, h)
			continue
		}
		cols[h] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unexpected sheet header: missing %s; got headers=%v", strings.Join(missing, ","), header)
	}
	return cols, nil
}

// parseBudget converts the budget sheet into plans, in first-seen order.
// Each row is one category; the plan's period and start come from its
// first row.
func parseBudget(values [][]interface{}) ([]core.BudgetPlan, error) {
	if len(values) == 0 {
		return nil, nil
	}
	cols, err := columns(toStrings(values[0]), budgetHeaders)
	if err != nil {
		return nil, err
	}

	var order []string
	plans := map[string]core.BudgetPlan{}
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		planID := safeGet(row, cols["Plan"])
		catID := safeGet(row, cols["Category"])
		if planID == "" || catID == "" || strings.HasPrefix(planID, "#") {
			continue
		}
		p, seen := plans[planID]
		if !seen {
			period := core.Period(strings.ToLower(safeGet(row, cols["Period"])))
			if period == "" {
				period = core.Monthly
			}
			if err := period.Validate(); err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
			var start core.Date
			if s := safeGet(row, cols["Start"]); s != "" {
				if start, err = core.ParseDate(s); err != nil {
					return nil, fmt.Errorf("row %d: start: %w", i+1, err)
				}
			}
			p = core.NewBudgetPlan(planID, planID, period, start)
			order = append(order, planID)
		}
		c := core.NewCategoryBudget(catID, safeGet(row, cols["Name"]),
			core.NormalizeAmount(safeGet(row, cols["Allocated"])),
			core.NormalizeAmount(safeGet(row, cols["Spent"])))
		plans[planID] = p.WithCategory(c)
	}

	out := make([]core.BudgetPlan, 0, len(order))
	for _, id := range order {
		out = append(out, plans[id])
	}
	return out, nil
}

// parseTransactions returns the rows for planID dated on or after the day
// of since.
// Rows with an unparseable date or a non-positive amount are skipped; ids
// are the sheet row reference.
func parseTransactions(sheet string, values [][]interface{}, planID string, since time.Time) ([]core.Transaction, error) {
	if len(values) == 0 {
		return nil, nil
	}
	cols, err := columns(toStrings(values[0]), transactionHeaders)
	if err != nil {
		return nil, err
	}
	from := core.DateOf(since).Time
	var out []core.Transaction
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if safeGet(row, cols["Plan"]) != planID {
			continue
		}
		d, err := core.ParseDate(safeGet(row, cols["Date"]))
		if err != nil || d.Before(from) {
			continue
		}
		amount := core.NormalizeAmount(safeGet(row, cols["Amount"]))
		if amount.Cents <= 0 {
			continue
		}
		out = append(out, core.Transaction{
			ID:          fmt.Sprintf("%s!A%d", sheet, i+1),
			PlanID:      planID,
			CategoryID:  safeGet(row, cols["Category"]),
			Amount:      amount,
			Date:        d,
			Description: safeGet(row, cols["Description"]),
		})
	}
	return out, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return strings.TrimSpace(arr[idx])
}
