// Package google reads budget plans and transactions from a Google
// spreadsheet. The source is read-only.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"budgetlens/internal/core"
	"budgetlens/internal/ledger"
	"budgetlens/internal/log"
)

var _ ledger.Source = (*Client)(nil)

// Config names the spreadsheet and its two tabs.
type Config struct {
	SpreadsheetID     string
	BudgetSheet       string
	TransactionsSheet string
}

// valuesGetter is the slice of the Sheets API the client uses.
type valuesGetter interface {
	Get(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error)
}

type sheetsValues struct {
	svc *gsheet.Service
}

func (s sheetsValues) Get(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

type Client struct {
	values valuesGetter
	cfg    Config
}

// New creates a Sheets client using service account credentials from the
// environment (GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS).
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{values: sheetsValues{svc: svc}, cfg: cfg}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials", log.FieldComponent, log.ComponentLedger)
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file",
			log.FieldComponent, log.ComponentLedger,
			"path", serviceAccountFile)
		var err error
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) readPlans(ctx context.Context) ([]core.BudgetPlan, error) {
	rng := fmt.Sprintf("%s!A:G", c.cfg.BudgetSheet)
	values, err := c.values.Get(ctx, c.cfg.SpreadsheetID, rng)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	plans, err := parseBudget(values)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", c.cfg.BudgetSheet, err)
	}
	return plans, nil
}

func (c *Client) ReadPlan(ctx context.Context, planID string) (core.BudgetPlan, error) {
	plans, err := c.readPlans(ctx)
	if err != nil {
		return core.BudgetPlan{}, err
	}
	for _, p := range plans {
		if p.ID == planID {
			return p, nil
		}
	}
	return core.BudgetPlan{}, fmt.Errorf("%w: %s", ledger.ErrPlanNotFound, planID)
}

func (c *Client) ListPlanIDs(ctx context.Context) ([]string, error) {
	plans, err := c.readPlans(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(plans))
	for _, p := range plans {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func (c *Client) ListTransactions(ctx context.Context, planID string, since time.Time) ([]core.Transaction, error) {
	rng := fmt.Sprintf("%s!A:E", c.cfg.TransactionsSheet)
	values, err := c.values.Get(ctx, c.cfg.SpreadsheetID, rng)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	txs, err := parseTransactions(c.cfg.TransactionsSheet, values, planID, since)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", c.cfg.TransactionsSheet, err)
	}
	return txs, nil
}
