package rental

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rentdesk/backend/internal/domain/rental"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/infrastructure/realtime"
)

var testNow = time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)

// memLeaseRepo is an in-memory rental.LeaseRepository
type memLeaseRepo struct {
	mu     sync.Mutex
	leases map[uuid.UUID]rental.Lease
}

func newMemLeaseRepo() *memLeaseRepo {
	return &memLeaseRepo{leases: make(map[uuid.UUID]rental.Lease)}
}

func (r *memLeaseRepo) ForScope(ctx context.Context, scope rental.Scope) ([]rental.Lease, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []rental.Lease
	for _, l := range r.leases {
		if l.Scope == scope {
			result = append(result, l)
		}
	}
	return result, nil
}

func (r *memLeaseRepo) FindByID(ctx context.Context, scope rental.Scope, id uuid.UUID) (*rental.Lease, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leases[id]
	if !ok || l.Scope != scope {
		return nil, shared.ErrNotFound
	}
	return &l, nil
}

func (r *memLeaseRepo) Save(ctx context.Context, lease *rental.Lease) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leases[lease.ID] = *lease
	return nil
}

// memTransactionRepo is an in-memory rental.RentTransactionRepository
type memTransactionRepo struct {
	mu           sync.Mutex
	transactions map[uuid.UUID]rental.RentTransaction
}

func newMemTransactionRepo() *memTransactionRepo {
	return &memTransactionRepo{transactions: make(map[uuid.UUID]rental.RentTransaction)}
}

func (r *memTransactionRepo) ForScopePeriod(ctx context.Context, scope rental.Scope, period rental.Period) ([]rental.RentTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []rental.RentTransaction
	for _, tx := range r.transactions {
		if tx.Scope == scope && tx.Period.Equal(period) {
			result = append(result, tx)
		}
	}
	return result, nil
}

func (r *memTransactionRepo) FindByLeasePeriod(ctx context.Context, scope rental.Scope, leaseID uuid.UUID, period rental.Period) (*rental.RentTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.transactions {
		if tx.Scope == scope && tx.LeaseID == leaseID && tx.Period.Equal(period) {
			return &tx, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memTransactionRepo) Save(ctx context.Context, tx *rental.RentTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions[tx.ID] = *tx
	return nil
}

// memExpenseRepo is an in-memory rental.ExpenseRepository
type memExpenseRepo struct {
	mu       sync.Mutex
	expenses map[uuid.UUID]rental.Expense
}

func newMemExpenseRepo() *memExpenseRepo {
	return &memExpenseRepo{expenses: make(map[uuid.UUID]rental.Expense)}
}

func (r *memExpenseRepo) ForScopePeriod(ctx context.Context, scope rental.Scope, period *rental.Period) ([]rental.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []rental.Expense
	for _, e := range r.expenses {
		if e.Scope != scope {
			continue
		}
		if period != nil && !period.Contains(e.ExpenseDate) {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

func (r *memExpenseRepo) FindByID(ctx context.Context, scope rental.Scope, id uuid.UUID) (*rental.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.expenses[id]
	if !ok || e.Scope != scope {
		return nil, shared.ErrNotFound
	}
	return &e, nil
}

func (r *memExpenseRepo) Save(ctx context.Context, expense *rental.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expenses[expense.ID] = *expense
	return nil
}

func (r *memExpenseRepo) Delete(ctx context.Context, scope rental.Scope, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.expenses[id]
	if !ok || e.Scope != scope {
		return shared.ErrNotFound
	}
	delete(r.expenses, id)
	return nil
}

// capturingBus records published domain events
type capturingBus struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (b *capturingBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, events...)
	return nil
}

func (b *capturingBus) published() []shared.DomainEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]shared.DomainEvent(nil), b.events...)
}

// capturingHub records published change events
type capturingHub struct {
	mu     sync.Mutex
	events []realtime.ChangeEvent
}

func (h *capturingHub) PublishChange(ctx context.Context, event realtime.ChangeEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *capturingHub) published() []realtime.ChangeEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]realtime.ChangeEvent(nil), h.events...)
}

func TestLeaseService_Create(t *testing.T) {
	ctx := context.Background()
	scope := rental.OwnerScope(uuid.New())
	repo := newMemLeaseRepo()
	bus := &capturingBus{}
	hub := &capturingHub{}
	service := NewLeaseService(repo, bus, hub, zap.NewNop())

	resp, err := service.Create(ctx, scope, CreateLeaseRequest{
		MonthlyAmount: 100000,
		StartDate:     testNow,
		BillingDay:    5,
		Activate:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, "active", resp.Status)

	// Create plus activate both recorded events.
	events := bus.published()
	require.Len(t, events, 2)
	assert.Equal(t, rental.EventTypeLeaseChanged, events[0].EventType())

	changes := hub.published()
	require.Len(t, changes, 1)
	assert.Equal(t, rental.EntityLeases, changes[0].Entity)
	assert.Equal(t, scope.ID.String(), changes[0].ScopeID)
}

func TestLeaseService_TerminateIsFinal(t *testing.T) {
	ctx := context.Background()
	scope := rental.OwnerScope(uuid.New())
	repo := newMemLeaseRepo()
	service := NewLeaseService(repo, &capturingBus{}, &capturingHub{}, zap.NewNop())

	created, err := service.Create(ctx, scope, CreateLeaseRequest{MonthlyAmount: 100000, StartDate: testNow, BillingDay: 5, Activate: true})
	require.NoError(t, err)

	_, err = service.Terminate(ctx, scope, created.ID)
	require.NoError(t, err)

	// A terminated lease rejects further terms changes.
	_, err = service.UpdateTerms(ctx, scope, created.ID, UpdateLeaseTermsRequest{MonthlyAmount: 90000, BillingDay: 1})
	assert.ErrorIs(t, err, shared.ErrLeaseTerminated)

	// Administrative correction is the one allowed write.
	resp, err := service.AdminCorrect(ctx, scope, created.ID, UpdateLeaseTermsRequest{MonthlyAmount: 90000, BillingDay: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(90000), resp.MonthlyAmount)
}

func TestLeaseService_ScopeIsolation(t *testing.T) {
	ctx := context.Background()
	repo := newMemLeaseRepo()
	service := NewLeaseService(repo, &capturingBus{}, &capturingHub{}, zap.NewNop())

	owner := rental.OwnerScope(uuid.New())
	created, err := service.Create(ctx, owner, CreateLeaseRequest{MonthlyAmount: 100000, StartDate: testNow, BillingDay: 5})
	require.NoError(t, err)

	// Another scope cannot see the lease.
	_, err = service.GetByID(ctx, rental.OwnerScope(uuid.New()), created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPaymentService_ConfirmPaymentExactlyOnce(t *testing.T) {
	ctx := context.Background()
	scope := rental.OwnerScope(uuid.New())
	leaseRepo := newMemLeaseRepo()
	txRepo := newMemTransactionRepo()
	bus := &capturingBus{}
	hub := &capturingHub{}

	leaseService := NewLeaseService(leaseRepo, bus, hub, zap.NewNop())
	payments := NewPaymentService(txRepo, leaseRepo, bus, hub, zap.NewNop(),
		WithPaymentNow(func() time.Time { return testNow }))

	created, err := leaseService.Create(ctx, scope, CreateLeaseRequest{MonthlyAmount: 100000, StartDate: testNow, BillingDay: 5, Activate: true})
	require.NoError(t, err)

	req := ConfirmPaymentRequest{LeaseID: created.ID, Year: 2025, Month: 6, Amount: 100000}

	resp, err := payments.ConfirmPayment(ctx, scope, req)
	require.NoError(t, err)
	assert.Equal(t, "paid", resp.Status)
	require.NotNil(t, resp.AmountPaid)
	assert.Equal(t, int64(100000), *resp.AmountPaid)
	require.NotNil(t, resp.PaidAt)
	assert.Equal(t, testNow, *resp.PaidAt)

	// Confirming again must be rejected, not silently re-applied.
	_, err = payments.ConfirmPayment(ctx, scope, req)
	assert.ErrorIs(t, err, shared.ErrAlreadyPaid)
}

func TestPaymentService_GeneratePeriod(t *testing.T) {
	ctx := context.Background()
	scope := rental.OwnerScope(uuid.New())
	leaseRepo := newMemLeaseRepo()
	txRepo := newMemTransactionRepo()

	leaseService := NewLeaseService(leaseRepo, &capturingBus{}, &capturingHub{}, zap.NewNop())
	payments := NewPaymentService(txRepo, leaseRepo, &capturingBus{}, &capturingHub{}, zap.NewNop())

	_, err := leaseService.Create(ctx, scope, CreateLeaseRequest{MonthlyAmount: 100000, StartDate: testNow, BillingDay: 5, Activate: true})
	require.NoError(t, err)
	_, err = leaseService.Create(ctx, scope, CreateLeaseRequest{MonthlyAmount: 85000, StartDate: testNow, BillingDay: 1, Activate: true})
	require.NoError(t, err)
	// Pending lease does not get a transaction.
	_, err = leaseService.Create(ctx, scope, CreateLeaseRequest{MonthlyAmount: 70000, StartDate: testNow, BillingDay: 1})
	require.NoError(t, err)

	period := rental.Period{Year: 2025, Month: time.June}

	created, err := payments.GeneratePeriod(ctx, scope, period)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	// One transaction per lease per period: a second run creates nothing.
	created, err = payments.GeneratePeriod(ctx, scope, period)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	listed, err := payments.ListPeriod(ctx, scope, period)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestExpenseService_RecordAndDelete(t *testing.T) {
	ctx := context.Background()
	scope := rental.OwnerScope(uuid.New())
	repo := newMemExpenseRepo()
	bus := &capturingBus{}
	hub := &capturingHub{}
	service := NewExpenseService(repo, bus, hub, zap.NewNop())

	resp, err := service.Record(ctx, scope, RecordExpenseRequest{
		Amount:      5000,
		ExpenseDate: testNow,
		Description: "plumbing",
	})
	require.NoError(t, err)

	listed, err := service.List(ctx, scope, nil)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	require.NoError(t, service.Delete(ctx, scope, resp.ID))

	listed, err = service.List(ctx, scope, nil)
	require.NoError(t, err)
	assert.Empty(t, listed)

	// Record and delete each raised a change notification.
	changes := hub.published()
	require.Len(t, changes, 2)
	assert.Equal(t, rental.EntityExpenses, changes[0].Entity)

	// The delete event is flagged as a deletion.
	events := bus.published()
	require.Len(t, events, 2)
	deleteEvent, ok := events[1].(*rental.ExpenseChangedEvent)
	require.True(t, ok)
	assert.True(t, deleteEvent.Deleted)
}
