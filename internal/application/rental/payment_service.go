package rental

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/rentdesk/backend/internal/domain/rental"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/infrastructure/realtime"
)

// PaymentService confirms rent payments and runs the periodic
// transaction generation.
type PaymentService struct {
	transactions rental.RentTransactionRepository
	leases       rental.LeaseRepository
	notifier     *notifier
	now          func() time.Time
}

// PaymentServiceOption configures a PaymentService
type PaymentServiceOption func(*PaymentService)

// WithPaymentNow overrides the clock used for payment timestamps
func WithPaymentNow(now func() time.Time) PaymentServiceOption {
	return func(s *PaymentService) {
		s.now = now
	}
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	transactions rental.RentTransactionRepository,
	leases rental.LeaseRepository,
	events shared.EventPublisher,
	changes realtime.Publisher,
	logger *zap.Logger,
	opts ...PaymentServiceOption,
) *PaymentService {
	s := &PaymentService{
		transactions: transactions,
		leases:       leases,
		notifier:     newNotifier(events, changes, logger),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ConfirmPayment marks the lease's transaction for the period as paid.
// A transaction transitions to paid exactly once; confirming again
// returns ErrAlreadyPaid. When the generation job has not produced the
// period's transaction yet, one is created on the fly.
func (s *PaymentService) ConfirmPayment(ctx context.Context, scope rental.Scope, req ConfirmPaymentRequest) (*TransactionResponse, error) {
	period := req.Period()
	if err := period.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.transactions.FindByLeasePeriod(ctx, scope, req.LeaseID, period)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		lease, findErr := s.leases.FindByID(ctx, scope, req.LeaseID)
		if findErr != nil {
			return nil, findErr
		}
		tx, err = rental.NewRentTransaction(lease, period)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.MarkPaid(req.Amount, s.now()); err != nil {
		return nil, err
	}
	if err := s.transactions.Save(ctx, tx); err != nil {
		return nil, err
	}
	s.notifier.afterWrite(ctx, scope, rental.EntityRentTransactions, tx.Events())

	resp := ToTransactionResponse(tx)
	return &resp, nil
}

// GeneratePeriod creates the period's pending transaction for every
// active lease that does not have one yet. Returns the number created.
func (s *PaymentService) GeneratePeriod(ctx context.Context, scope rental.Scope, period rental.Period) (int, error) {
	if err := period.Validate(); err != nil {
		return 0, err
	}

	leases, err := s.leases.ForScope(ctx, scope)
	if err != nil {
		return 0, err
	}

	created := 0
	for i := range leases {
		lease := &leases[i]
		if !lease.IsActive() {
			continue
		}

		_, err := s.transactions.FindByLeasePeriod(ctx, scope, lease.ID, period)
		if err == nil {
			continue
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return created, err
		}

		tx, err := rental.NewRentTransaction(lease, period)
		if err != nil {
			return created, err
		}
		if err := s.transactions.Save(ctx, tx); err != nil {
			return created, err
		}
		s.notifier.afterWrite(ctx, scope, rental.EntityRentTransactions, tx.Events())
		created++
	}
	return created, nil
}

// ListPeriod returns the scope's transactions for one period
func (s *PaymentService) ListPeriod(ctx context.Context, scope rental.Scope, period rental.Period) ([]TransactionResponse, error) {
	transactions, err := s.transactions.ForScopePeriod(ctx, scope, period)
	if err != nil {
		return nil, err
	}
	responses := make([]TransactionResponse, len(transactions))
	for i := range transactions {
		responses[i] = ToTransactionResponse(&transactions[i])
	}
	return responses, nil
}
