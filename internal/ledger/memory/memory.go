// Package memory is an in-process ledger, optionally seeded from YAML.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"budgetlens/internal/core"
	"budgetlens/internal/ledger"
)

var (
	_ ledger.Source            = (*Store)(nil)
	_ ledger.TransactionWriter = (*Store)(nil)
)

type Store struct {
	mu    sync.Mutex
	order []string
	plans map[string]core.BudgetPlan
	txs   []core.Transaction
}

func New(plans ...core.BudgetPlan) *Store {
	s := &Store{plans: make(map[string]core.BudgetPlan)}
	for _, p := range plans {
		s.SavePlan(p)
	}
	return s
}

// NewFromSeed builds a store from a seed document. Seed transactions are
// history: they are listed but not applied to category spend, which the
// seed states explicitly.
func NewFromSeed(seed Seed) (*Store, error) {
	plans, err := seed.ToPlans()
	if err != nil {
		return nil, err
	}
	txs, err := seed.ToTransactions()
	if err != nil {
		return nil, err
	}
	s := New(plans...)
	s.txs = txs
	return s, nil
}

// NewFromFile loads a seed file; an empty path yields an empty store.
func NewFromFile(path string) (*Store, error) {
	if path == "" {
		return New(), nil
	}
	seed, err := LoadSeed(path)
	if err != nil {
		return nil, err
	}
	return NewFromSeed(seed)
}

// SavePlan inserts or replaces a plan.
func (s *Store) SavePlan(p core.BudgetPlan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.plans[p.ID]; !ok {
		s.order = append(s.order, p.ID)
	}
	s.plans[p.ID] = core.NewBudgetPlan(p.ID, p.Name, p.Period, p.Start, p.Categories...)
}

func (s *Store) ReadPlan(_ context.Context, planID string) (core.BudgetPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[planID]
	if !ok {
		return core.BudgetPlan{}, fmt.Errorf("%w: %s", ledger.ErrPlanNotFound, planID)
	}
	return core.NewBudgetPlan(p.ID, p.Name, p.Period, p.Start, p.Categories...), nil
}

// ListTransactions returns the plan's transactions from the day of since
// on, sorted by date.
func (s *Store) ListTransactions(_ context.Context, planID string, since time.Time) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	from := core.DateOf(since).Time
	var out []core.Transaction
	for _, tx := range s.txs {
		if tx.PlanID == planID && !tx.Date.Before(from) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

func (s *Store) ListPlanIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.order), nil
}

// AddTransaction stores the transaction and, when it falls inside the
// plan's period, adds it to the category spend.
func (s *Store) AddTransaction(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[tx.PlanID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ledger.ErrPlanNotFound, tx.PlanID)
	}
	if _, ok := p.Category(tx.CategoryID); !ok {
		return "", fmt.Errorf("%w: %s", core.ErrUnknownCategory, tx.CategoryID)
	}
	if p.Covers(tx.Date) {
		updated, err := p.Post(tx)
		if err != nil {
			return "", err
		}
		s.plans[p.ID] = updated
	}
	if tx.ID == "" {
		tx.ID = fmt.Sprintf("mem:%d", len(s.txs)+1)
	}
	s.txs = append(s.txs, tx)
	return tx.ID, nil
}
