package rental

import (
	"context"

	"github.com/google/uuid"
)

// LeaseRepository provides access to leases. Read failures are wrapped
// in shared.ErrDataUnavailable so callers never compute on partial data.
type LeaseRepository interface {
	// ForScope returns every lease in the scope
	ForScope(ctx context.Context, scope Scope) ([]Lease, error)
	// FindByID finds a lease by its ID within the scope
	FindByID(ctx context.Context, scope Scope, id uuid.UUID) (*Lease, error)
	// Save persists a new or updated lease
	Save(ctx context.Context, lease *Lease) error
}

// RentTransactionRepository provides access to periodic rent transactions
type RentTransactionRepository interface {
	// ForScopePeriod returns the scope's transactions for one billing period
	ForScopePeriod(ctx context.Context, scope Scope, period Period) ([]RentTransaction, error)
	// FindByLeasePeriod finds the transaction for a lease and period
	FindByLeasePeriod(ctx context.Context, scope Scope, leaseID uuid.UUID, period Period) (*RentTransaction, error)
	// Save persists a new or updated transaction
	Save(ctx context.Context, tx *RentTransaction) error
}

// ExpenseRepository provides access to expenses. A nil period returns
// all expenses in the scope.
type ExpenseRepository interface {
	// ForScopePeriod returns the scope's expenses, optionally filtered to a period
	ForScopePeriod(ctx context.Context, scope Scope, period *Period) ([]Expense, error)
	// FindByID finds an expense by its ID within the scope
	FindByID(ctx context.Context, scope Scope, id uuid.UUID) (*Expense, error)
	// Save persists a new expense
	Save(ctx context.Context, expense *Expense) error
	// Delete removes an expense
	Delete(ctx context.Context, scope Scope, id uuid.UUID) error
}
