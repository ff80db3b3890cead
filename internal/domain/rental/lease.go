package rental

import (
	"time"

	"github.com/rentdesk/backend/internal/domain/shared"
)

// LeaseStatus represents the lifecycle state of a lease
type LeaseStatus string

const (
	LeaseStatusActive     LeaseStatus = "active"
	LeaseStatusTerminated LeaseStatus = "terminated"
	LeaseStatusPending    LeaseStatus = "pending"
)

// IsValid checks if the status is a valid LeaseStatus
func (s LeaseStatus) IsValid() bool {
	switch s {
	case LeaseStatusActive, LeaseStatusTerminated, LeaseStatusPending:
		return true
	}
	return false
}

// String returns the string representation of LeaseStatus
func (s LeaseStatus) String() string {
	return string(s)
}

// Lease is a rental agreement for one property unit. Amounts are in
// currency minor units (cents). BillingDay is the day of month rent
// is due, 1-31.
type Lease struct {
	shared.BaseEntity
	Scope         Scope
	MonthlyAmount int64
	Status        LeaseStatus
	StartDate     time.Time
	BillingDay    int

	events []shared.DomainEvent
}

// NewLease creates a new lease in pending state
func NewLease(scope Scope, monthlyAmount int64, startDate time.Time, billingDay int) (*Lease, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if billingDay < 1 || billingDay > 31 {
		return nil, shared.NewDomainError("INVALID_INPUT", "billing day must be between 1 and 31")
	}
	l := &Lease{
		BaseEntity:    shared.NewBaseEntity(),
		Scope:         scope,
		MonthlyAmount: monthlyAmount,
		Status:        LeaseStatusPending,
		StartDate:     startDate,
		BillingDay:    billingDay,
	}
	l.record(NewLeaseChangedEvent(l))
	return l, nil
}

// IsActive reports whether the lease contributes to expected rent
func (l *Lease) IsActive() bool {
	return l.Status == LeaseStatusActive
}

// Activate moves a pending lease to active
func (l *Lease) Activate() error {
	if l.Status == LeaseStatusTerminated {
		return shared.ErrLeaseTerminated
	}
	if l.Status == LeaseStatusActive {
		return shared.ErrInvalidState
	}
	l.Status = LeaseStatusActive
	l.Touch()
	l.record(NewLeaseChangedEvent(l))
	return nil
}

// Terminate ends the lease. A terminated lease is immutable except
// for administrative correction.
func (l *Lease) Terminate() error {
	if l.Status == LeaseStatusTerminated {
		return shared.ErrLeaseTerminated
	}
	l.Status = LeaseStatusTerminated
	l.Touch()
	l.record(NewLeaseChangedEvent(l))
	return nil
}

// UpdateTerms changes the monthly amount and billing day of a live lease
func (l *Lease) UpdateTerms(monthlyAmount int64, billingDay int) error {
	if l.Status == LeaseStatusTerminated {
		return shared.ErrLeaseTerminated
	}
	if billingDay < 1 || billingDay > 31 {
		return shared.NewDomainError("INVALID_INPUT", "billing day must be between 1 and 31")
	}
	l.MonthlyAmount = monthlyAmount
	l.BillingDay = billingDay
	l.Touch()
	l.record(NewLeaseChangedEvent(l))
	return nil
}

// AdminCorrect applies an administrative correction, the only write
// allowed on a terminated lease.
func (l *Lease) AdminCorrect(monthlyAmount int64, billingDay int) error {
	if billingDay < 1 || billingDay > 31 {
		return shared.NewDomainError("INVALID_INPUT", "billing day must be between 1 and 31")
	}
	l.MonthlyAmount = monthlyAmount
	l.BillingDay = billingDay
	l.Touch()
	l.record(NewLeaseChangedEvent(l))
	return nil
}

func (l *Lease) record(event shared.DomainEvent) {
	l.events = append(l.events, event)
}

// Events returns and clears the recorded domain events
func (l *Lease) Events() []shared.DomainEvent {
	events := l.events
	l.events = nil
	return events
}
