// Package ledger declares the ports the report service reads budget plans
// and transactions through. Implementations live in the memory, google and
// storage packages.
package ledger

import (
	"context"
	"errors"
	"time"

	"budgetlens/internal/core"
)

// ErrPlanNotFound is returned when a plan id is unknown to the source.
var ErrPlanNotFound = errors.New("plan not found")

// Ports for outbound adapters.
type (
	PlanReader interface {
		ReadPlan(ctx context.Context, planID string) (core.BudgetPlan, error)
	}

	// TransactionLister returns a plan's transactions dated on or after the
	// day of since.
	TransactionLister interface {
		ListTransactions(ctx context.Context, planID string, since time.Time) ([]core.Transaction, error)
	}

	PlanLister interface {
		ListPlanIDs(ctx context.Context) ([]string, error)
	}

	// TransactionWriter records a transaction and applies it to its
	// category. Read-only sources do not implement it.
	TransactionWriter interface {
		AddTransaction(ctx context.Context, tx core.Transaction) (id string, err error)
	}

	// Source is what every backend provides.
	Source interface {
		PlanReader
		TransactionLister
		PlanLister
	}
)
