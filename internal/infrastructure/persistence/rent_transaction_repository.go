package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentdesk/backend/internal/domain/rental"
	"github.com/rentdesk/backend/internal/domain/shared"
)

// GormRentTransactionRepository implements rental.RentTransactionRepository using GORM
type GormRentTransactionRepository struct {
	db *gorm.DB
}

// NewGormRentTransactionRepository creates a new GormRentTransactionRepository
func NewGormRentTransactionRepository(db *gorm.DB) *GormRentTransactionRepository {
	return &GormRentTransactionRepository{db: db}
}

// ForScopePeriod returns the scope's transactions for one billing period
func (r *GormRentTransactionRepository) ForScopePeriod(ctx context.Context, scope rental.Scope, period rental.Period) ([]rental.RentTransaction, error) {
	var models []rentTransactionModel
	if err := r.db.WithContext(ctx).
		Where("scope_type = ? AND scope_id = ? AND period_year = ? AND period_month = ?",
			scope.Type, scope.ID, period.Year, int(period.Month)).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, unavailable("rent transactions", err)
	}

	transactions := make([]rental.RentTransaction, len(models))
	for i := range models {
		transactions[i] = models[i].toDomain()
	}
	return transactions, nil
}

// FindByLeasePeriod finds the transaction for a lease and period
func (r *GormRentTransactionRepository) FindByLeasePeriod(ctx context.Context, scope rental.Scope, leaseID uuid.UUID, period rental.Period) (*rental.RentTransaction, error) {
	var model rentTransactionModel
	if err := r.db.WithContext(ctx).
		Where("scope_type = ? AND scope_id = ? AND lease_id = ? AND period_year = ? AND period_month = ?",
			scope.Type, scope.ID, leaseID, period.Year, int(period.Month)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, unavailable("rent transaction", err)
	}
	tx := model.toDomain()
	return &tx, nil
}

// Save persists a new or updated transaction
func (r *GormRentTransactionRepository) Save(ctx context.Context, tx *rental.RentTransaction) error {
	return r.db.WithContext(ctx).Save(rentTransactionModelFrom(tx)).Error
}

var _ rental.RentTransactionRepository = (*GormRentTransactionRepository)(nil)
