package rental

import (
	"time"

	"github.com/google/uuid"

	"github.com/rentdesk/backend/internal/domain/shared"
)

// TransactionStatus represents the collection state of a rent transaction
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusPaid    TransactionStatus = "paid"
	TransactionStatusOverdue TransactionStatus = "overdue"
)

// IsValid checks if the status is a valid TransactionStatus
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusPaid, TransactionStatusOverdue:
		return true
	}
	return false
}

// String returns the string representation of TransactionStatus
func (s TransactionStatus) String() string {
	return string(s)
}

// RentTransaction records one billing period of one lease. The periodic
// generation job creates one per lease per period; payment confirmation
// updates it to paid exactly once. AmountPaid is nil until a payment is
// recorded.
type RentTransaction struct {
	shared.BaseEntity
	LeaseID    uuid.UUID
	Scope      Scope
	AmountDue  int64
	AmountPaid *int64
	Status     TransactionStatus
	Period     Period
	PaidAt     *time.Time

	events []shared.DomainEvent
}

// NewRentTransaction creates a pending transaction for a lease and period
func NewRentTransaction(lease *Lease, period Period) (*RentTransaction, error) {
	if lease == nil {
		return nil, shared.ErrInvalidInput
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}
	t := &RentTransaction{
		BaseEntity: shared.NewBaseEntity(),
		LeaseID:    lease.ID,
		Scope:      lease.Scope,
		AmountDue:  lease.MonthlyAmount,
		Status:     TransactionStatusPending,
		Period:     period,
	}
	t.record(NewRentTransactionChangedEvent(t))
	return t, nil
}

// PaidAmount returns the recorded payment, or 0 when nothing is recorded
func (t *RentTransaction) PaidAmount() int64 {
	if t.AmountPaid == nil {
		return 0
	}
	return *t.AmountPaid
}

// MarkPaid records a confirmed payment. A transaction transitions to
// paid exactly once; a second confirmation is rejected.
func (t *RentTransaction) MarkPaid(amount int64, at time.Time) error {
	if t.Status == TransactionStatusPaid {
		return shared.ErrAlreadyPaid
	}
	if amount < 0 {
		return shared.NewDomainError("INVALID_INPUT", "paid amount cannot be negative")
	}
	t.AmountPaid = &amount
	t.Status = TransactionStatusPaid
	t.PaidAt = &at
	t.Touch()
	t.record(NewRentTransactionChangedEvent(t))
	return nil
}

// MarkOverdue flags an unpaid transaction as overdue
func (t *RentTransaction) MarkOverdue() error {
	if t.Status != TransactionStatusPending {
		return shared.ErrInvalidState
	}
	t.Status = TransactionStatusOverdue
	t.Touch()
	t.record(NewRentTransactionChangedEvent(t))
	return nil
}

func (t *RentTransaction) record(event shared.DomainEvent) {
	t.events = append(t.events, event)
}

// Events returns and clears the recorded domain events
func (t *RentTransaction) Events() []shared.DomainEvent {
	events := t.events
	t.events = nil
	return events
}
