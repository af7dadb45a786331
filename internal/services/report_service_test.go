package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetlens/internal/amqp"
	"budgetlens/internal/cache"
	"budgetlens/internal/core"
	"budgetlens/internal/engine"
	"budgetlens/internal/ledger"
	"budgetlens/internal/ledger/memory"
	"budgetlens/internal/log"
	"budgetlens/internal/report"
)

var midApril = time.Date(2025, 4, 16, 0, 0, 0, 0, time.UTC)

func homePlan() core.BudgetPlan {
	return core.NewBudgetPlan("home", "Home", core.Monthly, core.NewDate(2025, 4, 1),
		core.NewCategoryBudget("rent", "Rent", core.Money{Cents: 120000}, core.Money{Cents: 120000}),
		core.NewCategoryBudget("food", "Food", core.Money{Cents: 40000}, core.Money{Cents: 52000}),
		core.NewCategoryBudget("fun", "Fun", core.Money{Cents: 20000}, core.Money{Cents: 3000}),
	)
}

// countingSource wraps a ledger and counts plan reads.
type countingSource struct {
	ledger.Source
	mu    sync.Mutex
	reads int
}

func (c *countingSource) ReadPlan(ctx context.Context, id string) (core.BudgetPlan, error) {
	c.mu.Lock()
	c.reads++
	c.mu.Unlock()
	return c.Source.ReadPlan(ctx, id)
}

func (c *countingSource) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

type fakePublisher struct {
	mu       sync.Mutex
	reports  []*amqp.ReportGeneratedMessage
	requests []*amqp.AnalysisRequestMessage
	err      error
}

func (f *fakePublisher) PublishReportGenerated(_ context.Context, msg *amqp.ReportGeneratedMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, msg)
	return f.err
}

func (f *fakePublisher) PublishAnalysisRequest(_ context.Context, msg *amqp.AnalysisRequestMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, msg)
	return f.err
}

func newService(t *testing.T, source ledger.Source, opts ...Option) *ReportService {
	t.Helper()
	clock := func() time.Time { return midApril }
	eng := engine.New(engine.WithLogger(log.Discard()), engine.WithClock(clock))
	return NewReportService(source, eng, append([]Option{WithClock(clock)}, opts...)...)
}

func TestReportService_Generate(t *testing.T) {
	store := memory.New(homePlan())
	pub := &fakePublisher{}
	svc := newService(t, store, WithPublisher(pub))

	r, err := svc.Generate(context.Background(), "home", time.Time{})
	require.NoError(t, err)

	assert.Equal(t, "home", r.PlanID)
	assert.NotEmpty(t, r.ID)
	assert.True(t, r.HasCriticalIssues())
	assert.NotEmpty(t, r.Variances)

	require.Len(t, pub.reports, 1)
	assert.Equal(t, r.ID, pub.reports[0].ReportID)
	assert.Equal(t, r.OverallHealthScore, pub.reports[0].Score)
}

func TestReportService_GenerateUnknownPlan(t *testing.T) {
	svc := newService(t, memory.New())
	_, err := svc.Generate(context.Background(), "nope", midApril)
	assert.True(t, errors.Is(err, ledger.ErrPlanNotFound))
}

func TestReportService_PublishFailureDoesNotFail(t *testing.T) {
	pub := &fakePublisher{err: errors.New("circuit breaker is open")}
	svc := newService(t, memory.New(homePlan()), WithPublisher(pub))

	_, err := svc.Generate(context.Background(), "home", midApril)
	assert.NoError(t, err)
	assert.Len(t, pub.reports, 1)
}

func TestReportService_PlanCache(t *testing.T) {
	source := &countingSource{Source: memory.New(homePlan())}
	plans := cache.NewLRUCache[core.BudgetPlan](10, time.Minute)
	svc := newService(t, source, WithPlanCache(plans))
	ctx := context.Background()

	_, err := svc.Generate(ctx, "home", midApril)
	require.NoError(t, err)
	_, err = svc.Generate(ctx, "home", midApril)
	require.NoError(t, err)
	assert.Equal(t, 1, source.Reads())

	svc.Invalidate("home")
	_, err = svc.Generate(ctx, "home", midApril)
	require.NoError(t, err)
	assert.Equal(t, 2, source.Reads())
}

func TestReportService_PostTransaction(t *testing.T) {
	store := memory.New(homePlan())
	pub := &fakePublisher{}
	plans := cache.NewLRUCache[core.BudgetPlan](10, time.Minute)
	svc := newService(t, store, WithPlanCache(plans), WithPublisher(pub))
	ctx := context.Background()

	_, err := svc.Generate(ctx, "home", midApril)
	require.NoError(t, err)
	require.Equal(t, 1, plans.Size())

	id, err := svc.PostTransaction(ctx, core.Transaction{
		PlanID: "home", CategoryID: "fun", Amount: core.Money{Cents: 15000}, Date: core.NewDate(2025, 4, 15),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 0, plans.Size())

	require.Len(t, pub.requests, 1)
	assert.Equal(t, "home", pub.requests[0].PlanID)

	r, err := svc.Generate(ctx, "home", midApril)
	require.NoError(t, err)
	assert.Equal(t, 1900.0, r.Metric(report.MetricTotalSpent))
}

func TestReportService_PostTransactionErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid transaction", func(t *testing.T) {
		svc := newService(t, memory.New(homePlan()))
		_, err := svc.PostTransaction(ctx, core.Transaction{PlanID: "home", CategoryID: "fun", Date: core.NewDate(2025, 4, 1)})
		assert.True(t, errors.Is(err, core.ErrInvalidAmount))
		assert.True(t, errors.Is(err, ErrInvalidTransaction))
	})

	t.Run("read-only source", func(t *testing.T) {
		readOnly := struct{ ledger.Source }{memory.New(homePlan())}
		svc := newService(t, readOnly)
		_, err := svc.PostTransaction(ctx, core.Transaction{PlanID: "home", CategoryID: "fun", Amount: core.Money{Cents: 1}, Date: core.NewDate(2025, 4, 1)})
		assert.True(t, errors.Is(err, ErrReadOnly))
	})

	t.Run("unknown category", func(t *testing.T) {
		svc := newService(t, memory.New(homePlan()))
		_, err := svc.PostTransaction(ctx, core.Transaction{PlanID: "home", CategoryID: "pets", Amount: core.Money{Cents: 1}, Date: core.NewDate(2025, 4, 1)})
		assert.True(t, errors.Is(err, core.ErrUnknownCategory))
	})
}

type listingSource struct {
	ledger.Source
	ids []string
}

func (l listingSource) ListPlanIDs(context.Context) ([]string, error) { return l.ids, nil }

func TestReportService_RefreshAll(t *testing.T) {
	office := core.NewBudgetPlan("office", "Office", core.Monthly, core.NewDate(2025, 4, 1),
		core.NewCategoryBudget("supplies", "Supplies", core.Money{Cents: 5000}, core.Money{Cents: 1000}))
	pub := &fakePublisher{}

	svc := newService(t, memory.New(homePlan(), office), WithPublisher(pub))
	n, err := svc.RefreshAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, pub.reports, 2)

	broken := listingSource{Source: memory.New(homePlan()), ids: []string{"home", "ghost"}}
	svc = newService(t, broken)
	n, err = svc.RefreshAll(context.Background())
	assert.Equal(t, 1, n)
	assert.True(t, errors.Is(err, ledger.ErrPlanNotFound))
	assert.ErrorContains(t, err, "plan ghost")
}
