package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rentdesk/backend/internal/application/financial"
	rentalapp "github.com/rentdesk/backend/internal/application/rental"
	"github.com/rentdesk/backend/internal/domain/rental"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/infrastructure/cache"
	"github.com/rentdesk/backend/internal/infrastructure/realtime"
	"github.com/rentdesk/backend/internal/interfaces/http/dto"
)

type memLeaseRepo struct {
	mu     sync.Mutex
	leases map[uuid.UUID]*rental.Lease
	err    error
}

func newMemLeaseRepo() *memLeaseRepo {
	return &memLeaseRepo{leases: make(map[uuid.UUID]*rental.Lease)}
}

func (r *memLeaseRepo) ForScope(_ context.Context, scope rental.Scope) ([]rental.Lease, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []rental.Lease
	for _, l := range r.leases {
		if l.Scope == scope {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *memLeaseRepo) FindByID(_ context.Context, scope rental.Scope, id uuid.UUID) (*rental.Lease, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	l, ok := r.leases[id]
	if !ok || l.Scope != scope {
		return nil, shared.ErrNotFound
	}
	copied := *l
	return &copied, nil
}

func (r *memLeaseRepo) Save(_ context.Context, lease *rental.Lease) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *lease
	r.leases[lease.ID] = &copied
	return nil
}

type memTransactionRepo struct {
	mu           sync.Mutex
	transactions map[uuid.UUID]*rental.RentTransaction
}

func newMemTransactionRepo() *memTransactionRepo {
	return &memTransactionRepo{transactions: make(map[uuid.UUID]*rental.RentTransaction)}
}

func (r *memTransactionRepo) ForScopePeriod(_ context.Context, scope rental.Scope, period rental.Period) ([]rental.RentTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []rental.RentTransaction
	for _, tx := range r.transactions {
		if tx.Scope == scope && tx.Period.Equal(period) {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (r *memTransactionRepo) FindByLeasePeriod(_ context.Context, scope rental.Scope, leaseID uuid.UUID, period rental.Period) (*rental.RentTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.transactions {
		if tx.Scope == scope && tx.LeaseID == leaseID && tx.Period.Equal(period) {
			copied := *tx
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memTransactionRepo) Save(_ context.Context, tx *rental.RentTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *tx
	r.transactions[tx.ID] = &copied
	return nil
}

type memExpenseRepo struct {
	mu       sync.Mutex
	expenses map[uuid.UUID]*rental.Expense
}

func newMemExpenseRepo() *memExpenseRepo {
	return &memExpenseRepo{expenses: make(map[uuid.UUID]*rental.Expense)}
}

func (r *memExpenseRepo) ForScopePeriod(_ context.Context, scope rental.Scope, period *rental.Period) ([]rental.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []rental.Expense
	for _, e := range r.expenses {
		if e.Scope != scope {
			continue
		}
		if period != nil && !period.Contains(e.ExpenseDate) {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (r *memExpenseRepo) FindByID(_ context.Context, scope rental.Scope, id uuid.UUID) (*rental.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.expenses[id]
	if !ok || e.Scope != scope {
		return nil, shared.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (r *memExpenseRepo) Save(_ context.Context, expense *rental.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *expense
	r.expenses[expense.ID] = &copied
	return nil
}

func (r *memExpenseRepo) Delete(_ context.Context, scope rental.Scope, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.expenses[id]
	if !ok || e.Scope != scope {
		return shared.ErrNotFound
	}
	delete(r.expenses, id)
	return nil
}

// apiFixture wires the full handler stack against in-memory backends
type apiFixture struct {
	engine       *gin.Engine
	scope        rental.Scope
	leases       *memLeaseRepo
	transactions *memTransactionRepo
	expenses     *memExpenseRepo
	store        *cache.MemoryStore
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &apiFixture{
		scope:        rental.OwnerScope(uuid.New()),
		leases:       newMemLeaseRepo(),
		transactions: newMemTransactionRepo(),
		expenses:     newMemExpenseRepo(),
		store:        cache.NewMemoryStore(),
	}

	logger := zap.NewNop()
	hub := realtime.NewMemoryChangeHub()

	leaseService := rentalapp.NewLeaseService(f.leases, nil, hub, logger)
	paymentService := rentalapp.NewPaymentService(f.transactions, f.leases, nil, hub, logger)
	expenseService := rentalapp.NewExpenseService(f.expenses, nil, hub, logger)
	statsService := financial.NewStatsService(f.leases, f.transactions, f.expenses, f.store)
	dispatcher := financial.NewInvalidationDispatcher(f.store, logger)

	leaseHandler := NewLeaseHandler(leaseService)
	paymentHandler := NewPaymentHandler(paymentService)
	expenseHandler := NewExpenseHandler(expenseService)
	statsHandler := NewFinancialStatsHandler(statsService, dispatcher)

	engine := gin.New()
	engine.POST("/leases", leaseHandler.Create)
	engine.GET("/leases", leaseHandler.List)
	engine.GET("/leases/:id", leaseHandler.GetByID)
	engine.POST("/leases/:id/activate", leaseHandler.Activate)
	engine.POST("/leases/:id/terminate", leaseHandler.Terminate)
	engine.PUT("/leases/:id/terms", leaseHandler.UpdateTerms)
	engine.PUT("/leases/:id/admin-correct", leaseHandler.AdminCorrect)
	engine.POST("/payments/confirm", paymentHandler.Confirm)
	engine.POST("/payments/generate", paymentHandler.Generate)
	engine.GET("/payments", paymentHandler.ListPeriod)
	engine.POST("/expenses", expenseHandler.Record)
	engine.GET("/expenses", expenseHandler.List)
	engine.DELETE("/expenses/:id", expenseHandler.Delete)
	engine.GET("/stats/monthly", statsHandler.Monthly)
	engine.GET("/stats/yearly", statsHandler.Yearly)
	engine.POST("/stats/invalidate", statsHandler.Invalidate)

	f.engine = engine
	return f
}

// do issues a request with the fixture's scope headers set
func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Scope-Type", f.scope.Type.String())
	req.Header.Set("X-Scope-ID", f.scope.ID.String())

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

// httptestRequest issues a request without the scope headers set
func httptestRequest(t *testing.T, f *apiFixture, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (f *apiFixture) createLease(t *testing.T, amount int64, activate bool) uuid.UUID {
	t.Helper()
	w := f.do(t, http.MethodPost, "/leases", gin.H{
		"monthlyAmount": amount,
		"startDate":     "2025-01-01T00:00:00Z",
		"billingDay":    1,
		"activate":      activate,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	id, err := uuid.Parse(data["id"].(string))
	require.NoError(t, err)
	return id
}
