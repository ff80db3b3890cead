package rental

import "github.com/rentdesk/backend/internal/domain/shared"

// Event types emitted by the rental aggregates. The invalidation
// dispatcher and the realtime publisher subscribe to all three.
const (
	EventTypeLeaseChanged           = "rental.lease.changed"
	EventTypeRentTransactionChanged = "rental.rent_transaction.changed"
	EventTypeExpenseChanged         = "rental.expense.changed"
)

// EntityType names a change-notification source table
type EntityType string

const (
	EntityLeases           EntityType = "leases"
	EntityRentTransactions EntityType = "rent_transactions"
	EntityExpenses         EntityType = "expenses"
)

// IsValid checks if the entity type is known
func (t EntityType) IsValid() bool {
	switch t {
	case EntityLeases, EntityRentTransactions, EntityExpenses:
		return true
	}
	return false
}

// String returns the string representation of EntityType
func (t EntityType) String() string {
	return string(t)
}

// LeaseChangedEvent signals that a lease was created or mutated
type LeaseChangedEvent struct {
	shared.BaseDomainEvent
	Status LeaseStatus `json:"status"`
}

// NewLeaseChangedEvent creates a LeaseChangedEvent for the given lease
func NewLeaseChangedEvent(l *Lease) *LeaseChangedEvent {
	return &LeaseChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeLeaseChanged, "Lease", l.ID, l.Scope.Type.String(), l.Scope.ID),
		Status: l.Status,
	}
}

// RentTransactionChangedEvent signals that a rent transaction was created or mutated
type RentTransactionChangedEvent struct {
	shared.BaseDomainEvent
	Status TransactionStatus `json:"status"`
	Period Period            `json:"period"`
}

// NewRentTransactionChangedEvent creates an event for the given transaction
func NewRentTransactionChangedEvent(t *RentTransaction) *RentTransactionChangedEvent {
	return &RentTransactionChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeRentTransactionChanged, "RentTransaction", t.ID, t.Scope.Type.String(), t.Scope.ID),
		Status: t.Status,
		Period: t.Period,
	}
}

// ExpenseChangedEvent signals that an expense was created or deleted
type ExpenseChangedEvent struct {
	shared.BaseDomainEvent
	Deleted bool `json:"deleted"`
}

// NewExpenseChangedEvent creates an ExpenseChangedEvent for the given expense
func NewExpenseChangedEvent(e *Expense) *ExpenseChangedEvent {
	return &ExpenseChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeExpenseChanged, "Expense", e.ID, e.Scope.Type.String(), e.Scope.ID),
	}
}

// NewExpenseDeletedEvent creates an ExpenseChangedEvent marking deletion
func NewExpenseDeletedEvent(e *Expense) *ExpenseChangedEvent {
	ev := NewExpenseChangedEvent(e)
	ev.Deleted = true
	return ev
}

// EntityForEventType maps a domain event type to the change-notification
// entity it affects. Returns false for event types outside the rental domain.
func EntityForEventType(eventType string) (EntityType, bool) {
	switch eventType {
	case EventTypeLeaseChanged:
		return EntityLeases, true
	case EventTypeRentTransactionChanged:
		return EntityRentTransactions, true
	case EventTypeExpenseChanged:
		return EntityExpenses, true
	}
	return "", false
}
