package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentdesk/backend/internal/domain/rental"
	"github.com/rentdesk/backend/internal/domain/shared"
)

// GormExpenseRepository implements rental.ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// ForScopePeriod returns the scope's expenses. A nil period returns all
// expenses in the scope; otherwise only those dated inside the period.
func (r *GormExpenseRepository) ForScopePeriod(ctx context.Context, scope rental.Scope, period *rental.Period) ([]rental.Expense, error) {
	query := r.db.WithContext(ctx).
		Where("scope_type = ? AND scope_id = ?", scope.Type, scope.ID)

	if period != nil {
		start := period.Start()
		end := start.AddDate(0, 1, 0)
		query = query.Where("expense_date >= ? AND expense_date < ?", start, end)
	}

	var models []expenseModel
	if err := query.Order("expense_date ASC").Find(&models).Error; err != nil {
		return nil, unavailable("expenses", err)
	}

	expenses := make([]rental.Expense, len(models))
	for i := range models {
		expenses[i] = models[i].toDomain()
	}
	return expenses, nil
}

// FindByID finds an expense by its ID within the scope
func (r *GormExpenseRepository) FindByID(ctx context.Context, scope rental.Scope, id uuid.UUID) (*rental.Expense, error) {
	var model expenseModel
	if err := r.db.WithContext(ctx).
		Where("scope_type = ? AND scope_id = ? AND id = ?", scope.Type, scope.ID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, unavailable("expense", err)
	}
	expense := model.toDomain()
	return &expense, nil
}

// Save persists a new expense
func (r *GormExpenseRepository) Save(ctx context.Context, expense *rental.Expense) error {
	return r.db.WithContext(ctx).Save(expenseModelFrom(expense)).Error
}

// Delete removes an expense
func (r *GormExpenseRepository) Delete(ctx context.Context, scope rental.Scope, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&expenseModel{}, "scope_type = ? AND scope_id = ? AND id = ?", scope.Type, scope.ID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ rental.ExpenseRepository = (*GormExpenseRepository)(nil)
