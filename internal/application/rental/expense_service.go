package rental

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rentdesk/backend/internal/domain/rental"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/infrastructure/realtime"
)

// ExpenseService records and removes manually entered costs
type ExpenseService struct {
	expenses rental.ExpenseRepository
	notifier *notifier
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(expenses rental.ExpenseRepository, events shared.EventPublisher, changes realtime.Publisher, logger *zap.Logger) *ExpenseService {
	return &ExpenseService{
		expenses: expenses,
		notifier: newNotifier(events, changes, logger),
	}
}

// Record creates a new expense in the scope
func (s *ExpenseService) Record(ctx context.Context, scope rental.Scope, req RecordExpenseRequest) (*ExpenseResponse, error) {
	expense, err := rental.NewExpense(scope, req.Amount, req.ExpenseDate, req.LeaseID, req.Description)
	if err != nil {
		return nil, err
	}

	if err := s.expenses.Save(ctx, expense); err != nil {
		return nil, err
	}
	s.notifier.afterWrite(ctx, scope, rental.EntityExpenses, expense.Events())

	resp := ToExpenseResponse(expense)
	return &resp, nil
}

// Delete removes an expense from the scope
func (s *ExpenseService) Delete(ctx context.Context, scope rental.Scope, id uuid.UUID) error {
	expense, err := s.expenses.FindByID(ctx, scope, id)
	if err != nil {
		return err
	}

	if err := s.expenses.Delete(ctx, scope, id); err != nil {
		return err
	}
	s.notifier.afterWrite(ctx, scope, rental.EntityExpenses,
		[]shared.DomainEvent{rental.NewExpenseDeletedEvent(expense)})
	return nil
}

// List returns the scope's expenses, optionally filtered to a period
func (s *ExpenseService) List(ctx context.Context, scope rental.Scope, period *rental.Period) ([]ExpenseResponse, error) {
	expenses, err := s.expenses.ForScopePeriod(ctx, scope, period)
	if err != nil {
		return nil, err
	}
	responses := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		responses[i] = ToExpenseResponse(&expenses[i])
	}
	return responses, nil
}
