package rental

import (
	"time"

	"github.com/google/uuid"

	"github.com/rentdesk/backend/internal/domain/shared"
)

// Expense is a manually entered cost, optionally tied to a lease.
// Amount is in currency minor units.
type Expense struct {
	shared.BaseEntity
	Scope       Scope
	Amount      int64
	ExpenseDate time.Time
	LeaseID     *uuid.UUID
	Description string

	events []shared.DomainEvent
}

// NewExpense creates a new expense record
func NewExpense(scope Scope, amount int64, expenseDate time.Time, leaseID *uuid.UUID, description string) (*Expense, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "expense amount cannot be negative")
	}
	e := &Expense{
		BaseEntity:  shared.NewBaseEntity(),
		Scope:       scope,
		Amount:      amount,
		ExpenseDate: expenseDate,
		LeaseID:     leaseID,
		Description: description,
	}
	e.record(NewExpenseChangedEvent(e))
	return e, nil
}

func (e *Expense) record(event shared.DomainEvent) {
	e.events = append(e.events, event)
}

// Events returns and clears the recorded domain events
func (e *Expense) Events() []shared.DomainEvent {
	events := e.events
	e.events = nil
	return events
}
