package rental

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rentdesk/backend/internal/domain/rental"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/infrastructure/realtime"
)

// LeaseService handles lease lifecycle operations
type LeaseService struct {
	leases   rental.LeaseRepository
	notifier *notifier
}

// NewLeaseService creates a new LeaseService
func NewLeaseService(leases rental.LeaseRepository, events shared.EventPublisher, changes realtime.Publisher, logger *zap.Logger) *LeaseService {
	return &LeaseService{
		leases:   leases,
		notifier: newNotifier(events, changes, logger),
	}
}

// Create opens a new lease in the scope
func (s *LeaseService) Create(ctx context.Context, scope rental.Scope, req CreateLeaseRequest) (*LeaseResponse, error) {
	lease, err := rental.NewLease(scope, req.MonthlyAmount, req.StartDate, req.BillingDay)
	if err != nil {
		return nil, err
	}
	if req.Activate {
		if err := lease.Activate(); err != nil {
			return nil, err
		}
	}

	if err := s.leases.Save(ctx, lease); err != nil {
		return nil, err
	}
	s.notifier.afterWrite(ctx, scope, rental.EntityLeases, lease.Events())

	resp := ToLeaseResponse(lease)
	return &resp, nil
}

// Activate moves a pending lease to active
func (s *LeaseService) Activate(ctx context.Context, scope rental.Scope, id uuid.UUID) (*LeaseResponse, error) {
	return s.mutate(ctx, scope, id, (*rental.Lease).Activate)
}

// Terminate ends a lease
func (s *LeaseService) Terminate(ctx context.Context, scope rental.Scope, id uuid.UUID) (*LeaseResponse, error) {
	return s.mutate(ctx, scope, id, (*rental.Lease).Terminate)
}

// UpdateTerms changes the monthly amount and billing day of a live lease
func (s *LeaseService) UpdateTerms(ctx context.Context, scope rental.Scope, id uuid.UUID, req UpdateLeaseTermsRequest) (*LeaseResponse, error) {
	return s.mutate(ctx, scope, id, func(l *rental.Lease) error {
		return l.UpdateTerms(req.MonthlyAmount, req.BillingDay)
	})
}

// AdminCorrect applies an administrative correction, allowed even on a
// terminated lease.
func (s *LeaseService) AdminCorrect(ctx context.Context, scope rental.Scope, id uuid.UUID, req UpdateLeaseTermsRequest) (*LeaseResponse, error) {
	return s.mutate(ctx, scope, id, func(l *rental.Lease) error {
		return l.AdminCorrect(req.MonthlyAmount, req.BillingDay)
	})
}

// GetByID retrieves a lease within the scope
func (s *LeaseService) GetByID(ctx context.Context, scope rental.Scope, id uuid.UUID) (*LeaseResponse, error) {
	lease, err := s.leases.FindByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	resp := ToLeaseResponse(lease)
	return &resp, nil
}

// List returns every lease in the scope
func (s *LeaseService) List(ctx context.Context, scope rental.Scope) ([]LeaseResponse, error) {
	leases, err := s.leases.ForScope(ctx, scope)
	if err != nil {
		return nil, err
	}
	responses := make([]LeaseResponse, len(leases))
	for i := range leases {
		responses[i] = ToLeaseResponse(&leases[i])
	}
	return responses, nil
}

// mutate loads a lease, applies the change and saves, notifying on success
func (s *LeaseService) mutate(ctx context.Context, scope rental.Scope, id uuid.UUID, fn func(*rental.Lease) error) (*LeaseResponse, error) {
	lease, err := s.leases.FindByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := fn(lease); err != nil {
		return nil, err
	}
	if err := s.leases.Save(ctx, lease); err != nil {
		return nil, err
	}
	s.notifier.afterWrite(ctx, scope, rental.EntityLeases, lease.Events())

	resp := ToLeaseResponse(lease)
	return &resp, nil
}
