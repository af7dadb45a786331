package memory

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"budgetlens/internal/core"
)

// Seed is the YAML document a memory store can be loaded from.
//
//	plans:
//	  - id: home
//	    name: Home
//	    period: monthly
//	    start: 2025-04-01
//	    categories:
//	      - {id: rent, name: Rent, allocated: "1200", spent: "1200"}
//	transactions:
//	  - {plan: home, category: rent, date: 2025-03-01, amount: "1200.00", description: March rent}
type Seed struct {
	Plans        []SeedPlan        `yaml:"plans"`
	Transactions []SeedTransaction `yaml:"transactions"`
}

type SeedPlan struct {
	ID         string         `yaml:"id"`
	Name       string         `yaml:"name"`
	Period     string         `yaml:"period"`
	Start      string         `yaml:"start"`
	Categories []SeedCategory `yaml:"categories"`
}

// Amounts are strings so "12,50" and "€ 12.50" survive YAML decoding.
type SeedCategory struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Allocated string `yaml:"allocated"`
	Spent     string `yaml:"spent"`
}

type SeedTransaction struct {
	ID          string `yaml:"id"`
	Plan        string `yaml:"plan"`
	Category    string `yaml:"category"`
	Date        string `yaml:"date"`
	Amount      string `yaml:"amount"`
	Description string `yaml:"description"`
}

// LoadSeed reads and decodes a seed file.
func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes a seed document.
func ParseSeed(data []byte) (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	return s, nil
}

// ToPlans converts the seed plans to domain values. A plan without a period
// is monthly.
func (s Seed) ToPlans() ([]core.BudgetPlan, error) {
	out := make([]core.BudgetPlan, 0, len(s.Plans))
	for _, sp := range s.Plans {
		period := core.Period(strings.ToLower(strings.TrimSpace(sp.Period)))
		if period == "" {
			period = core.Monthly
		}
		var start core.Date
		if strings.TrimSpace(sp.Start) != "" {
			d, err := core.ParseDate(sp.Start)
			if err != nil {
				return nil, fmt.Errorf("plan %s: start: %w", sp.ID, err)
			}
			start = d
		}
		cats := make([]core.CategoryBudget, 0, len(sp.Categories))
		for _, sc := range sp.Categories {
			cats = append(cats, core.NewCategoryBudget(sc.ID, sc.Name,
				core.NormalizeAmount(sc.Allocated), core.NormalizeAmount(sc.Spent)))
		}
		p := core.NewBudgetPlan(sp.ID, sp.Name, period, start, cats...)
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("plan %s: %w", sp.ID, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// ToTransactions converts the seed transactions. Ids default to seed:<n>.
func (s Seed) ToTransactions() ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(s.Transactions))
	for i, st := range s.Transactions {
		d, err := core.ParseDate(st.Date)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: date: %w", i+1, err)
		}
		tx := core.Transaction{
			ID:          st.ID,
			PlanID:      st.Plan,
			CategoryID:  st.Category,
			Amount:      core.NormalizeAmount(st.Amount),
			Date:        d,
			Description: strings.TrimSpace(st.Description),
		}
		if tx.ID == "" {
			tx.ID = fmt.Sprintf("seed:%d", i+1)
		}
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i+1, err)
		}
		out = append(out, tx)
	}
	return out, nil
}
