package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentdesk/backend/internal/domain/rental"
	"github.com/rentdesk/backend/internal/domain/shared"
)

// GormLeaseRepository implements rental.LeaseRepository using GORM
type GormLeaseRepository struct {
	db *gorm.DB
}

// NewGormLeaseRepository creates a new GormLeaseRepository
func NewGormLeaseRepository(db *gorm.DB) *GormLeaseRepository {
	return &GormLeaseRepository{db: db}
}

// ForScope returns every lease in the scope
func (r *GormLeaseRepository) ForScope(ctx context.Context, scope rental.Scope) ([]rental.Lease, error) {
	var models []leaseModel
	if err := r.db.WithContext(ctx).
		Where("scope_type = ? AND scope_id = ?", scope.Type, scope.ID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, unavailable("leases", err)
	}

	leases := make([]rental.Lease, len(models))
	for i := range models {
		leases[i] = models[i].toDomain()
	}
	return leases, nil
}

// FindByID finds a lease by its ID within the scope
func (r *GormLeaseRepository) FindByID(ctx context.Context, scope rental.Scope, id uuid.UUID) (*rental.Lease, error) {
	var model leaseModel
	if err := r.db.WithContext(ctx).
		Where("scope_type = ? AND scope_id = ? AND id = ?", scope.Type, scope.ID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, unavailable("lease", err)
	}
	lease := model.toDomain()
	return &lease, nil
}

// Save persists a new or updated lease
func (r *GormLeaseRepository) Save(ctx context.Context, lease *rental.Lease) error {
	return r.db.WithContext(ctx).Save(leaseModelFrom(lease)).Error
}

// unavailable wraps a read failure so callers can distinguish "source
// data could not be read" from a domain outcome and refuse to compute
// on partial data.
func unavailable(what string, err error) error {
	return fmt.Errorf("%w: reading %s: %v", shared.ErrDataUnavailable, what, err)
}

var _ rental.LeaseRepository = (*GormLeaseRepository)(nil)
