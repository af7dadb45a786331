// Package storage persists budget plans and transactions in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"budgetlens/internal/core"
	"budgetlens/internal/ledger"
	"budgetlens/internal/log"
)

const dateLayout = "2006-01-02"

var (
	_ ledger.Source            = (*SQLiteRepository)(nil)
	_ ledger.TransactionWriter = (*SQLiteRepository)(nil)
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// SavePlan inserts or replaces a plan and its categories. Categories no
// longer in the plan are removed; their transactions are kept.
func (r *SQLiteRepository) SavePlan(ctx context.Context, p core.BudgetPlan) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validate plan: %w", err)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	start := ""
	if !p.Start.IsZero() {
		start = p.Start.String()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO budget_plans (id, name, period, start_date)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			period = excluded.period,
			start_date = excluded.start_date,
			updated_at = CURRENT_TIMESTAMP`,
		p.ID, p.Name, string(p.Period), start)
	if err != nil {
		return fmt.Errorf("upsert plan %s: %w", p.ID, err)
	}

	keep := make([]any, 0, len(p.Categories)+1)
	keep = append(keep, p.ID)
	for i, c := range p.Categories {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO category_budgets (plan_id, category_id, name, allocated_cents, spent_cents, transaction_count, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (plan_id, category_id) DO UPDATE SET
				name = excluded.name,
				allocated_cents = excluded.allocated_cents,
				spent_cents = excluded.spent_cents,
				transaction_count = excluded.transaction_count,
				position = excluded.position`,
			p.ID, c.ID, c.Name, c.Allocated.Cents, c.Spent.Cents, c.TransactionCount, i)
		if err != nil {
			return fmt.Errorf("upsert category %s/%s: %w", p.ID, c.ID, err)
		}
		keep = append(keep, c.ID)
	}

	query := "DELETE FROM category_budgets WHERE plan_id = ?"
	if len(p.Categories) > 0 {
		query += " AND category_id NOT IN (" + strings.TrimSuffix(strings.Repeat("?,", len(p.Categories)), ",") + ")"
	}
	if _, err := tx.ExecContext(ctx, query, keep...); err != nil {
		return fmt.Errorf("prune categories of %s: %w", p.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	slog.InfoContext(ctx, "Plan saved to SQLite",
		log.FieldComponent, log.ComponentStorage,
		log.FieldPlanID, p.ID,
		"categories", len(p.Categories))
	return nil
}

func (r *SQLiteRepository) ReadPlan(ctx context.Context, planID string) (core.BudgetPlan, error) {
	var name, period, start string
	err := r.db.QueryRowContext(ctx,
		`SELECT name, period, start_date FROM budget_plans WHERE id = ?`, planID).
		Scan(&name, &period, &start)
	if errors.Is(err, sql.ErrNoRows) {
		return core.BudgetPlan{}, fmt.Errorf("%w: %s", ledger.ErrPlanNotFound, planID)
	}
	if err != nil {
		return core.BudgetPlan{}, fmt.Errorf("read plan %s: %w", planID, err)
	}

	var startDate core.Date
	if start != "" {
		if startDate, err = core.ParseDate(start); err != nil {
			return core.BudgetPlan{}, fmt.Errorf("plan %s start: %w", planID, err)
		}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT category_id, name, allocated_cents, spent_cents, transaction_count
		FROM category_budgets WHERE plan_id = ? ORDER BY position, category_id`, planID)
	if err != nil {
		return core.BudgetPlan{}, fmt.Errorf("read categories of %s: %w", planID, err)
	}
	defer rows.Close()

	var cats []core.CategoryBudget
	for rows.Next() {
		var c core.CategoryBudget
		if err := rows.Scan(&c.ID, &c.Name, &c.Allocated.Cents, &c.Spent.Cents, &c.TransactionCount); err != nil {
			return core.BudgetPlan{}, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return core.BudgetPlan{}, fmt.Errorf("read categories of %s: %w", planID, err)
	}

	return core.NewBudgetPlan(planID, name, core.Period(period), startDate, cats...), nil
}

// ListTransactions returns the plan's transactions dated on or after the
// day of since, oldest first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, planID string, since time.Time) ([]core.Transaction, error) {
	from := ""
	if !since.IsZero() {
		from = core.DateOf(since).String()
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, category_id, amount_cents, occurred_on, description
		FROM transactions WHERE plan_id = ? AND occurred_on >= ?
		ORDER BY occurred_on, created_at, id`, planID, from)
	if err != nil {
		return nil, fmt.Errorf("list transactions of %s: %w", planID, err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t := core.Transaction{PlanID: planID}
		var occurred string
		if err := rows.Scan(&t.ID, &t.CategoryID, &t.Amount.Cents, &occurred, &t.Description); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.Date, err = core.ParseDate(occurred); err != nil {
			return nil, fmt.Errorf("transaction %s date: %w", t.ID, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListPlanIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM budget_plans ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan plan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AddTransaction records tx and, when it falls inside the plan's period,
// adds it to the category's spend and count in the same SQL transaction.
func (r *SQLiteRepository) AddTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var period, start string
	err = tx.QueryRowContext(ctx,
		`SELECT period, start_date FROM budget_plans WHERE id = ?`, t.PlanID).Scan(&period, &start)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ledger.ErrPlanNotFound, t.PlanID)
	}
	if err != nil {
		return "", fmt.Errorf("read plan %s: %w", t.PlanID, err)
	}

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM category_budgets WHERE plan_id = ? AND category_id = ?`, t.PlanID, t.CategoryID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", core.ErrUnknownCategory, t.CategoryID)
	}
	if err != nil {
		return "", fmt.Errorf("read category %s: %w", t.CategoryID, err)
	}

	if err := insertTransaction(ctx, tx, t); err != nil {
		return "", err
	}

	plan := core.BudgetPlan{Period: core.Period(period)}
	if start != "" {
		if plan.Start, err = core.ParseDate(start); err != nil {
			return "", fmt.Errorf("plan %s start: %w", t.PlanID, err)
		}
	}
	if plan.Covers(t.Date) {
		_, err = tx.ExecContext(ctx, `
			UPDATE category_budgets
			SET spent_cents = spent_cents + ?, transaction_count = transaction_count + 1
			WHERE plan_id = ? AND category_id = ?`,
			t.Amount.Cents, t.PlanID, t.CategoryID)
		if err != nil {
			return "", fmt.Errorf("apply transaction to %s: %w", t.CategoryID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		log.FieldComponent, log.ComponentStorage,
		"id", t.ID,
		log.FieldPlanID, t.PlanID,
		log.FieldCategoryID, t.CategoryID,
		log.FieldAmountCents, t.Amount.Cents,
		"date", t.Date.String())
	return t.ID, nil
}

// ImportTransactions stores historical transactions without touching
// category spend. Rows whose id already exists are skipped.
func (r *SQLiteRepository) ImportTransactions(ctx context.Context, txs []core.Transaction) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	imported := 0
	for _, t := range txs {
		if err := t.Validate(); err != nil {
			return 0, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE id = ?`, t.ID).Scan(&n); err != nil {
			return 0, fmt.Errorf("check transaction %s: %w", t.ID, err)
		}
		if n > 0 {
			continue
		}
		if err := insertTransaction(ctx, tx, t); err != nil {
			return 0, err
		}
		imported++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return imported, nil
}

func insertTransaction(ctx context.Context, tx *sql.Tx, t core.Transaction) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, plan_id, category_id, amount_cents, occurred_on, description)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.PlanID, t.CategoryID, t.Amount.Cents, t.Date.Format(dateLayout), t.Description)
	if err != nil {
		return fmt.Errorf("insert transaction %s: %w", t.ID, err)
	}
	return nil
}
