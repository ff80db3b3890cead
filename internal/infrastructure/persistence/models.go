package persistence

import (
	"time"

	"github.com/google/uuid"

	"github.com/rentdesk/backend/internal/domain/rental"
	"github.com/rentdesk/backend/internal/domain/shared"
)

// leaseModel is the persistence shape of rental.Lease. Scope is flattened
// into (scope_type, scope_id) columns so every query can filter on them.
type leaseModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ScopeType     string    `gorm:"type:varchar(16);not null;index:idx_leases_scope"`
	ScopeID       uuid.UUID `gorm:"type:uuid;not null;index:idx_leases_scope"`
	MonthlyAmount int64     `gorm:"not null"`
	Status        string    `gorm:"type:varchar(16);not null"`
	StartDate     time.Time `gorm:"not null"`
	BillingDay    int       `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (leaseModel) TableName() string { return "leases" }

func (m *leaseModel) toDomain() rental.Lease {
	return rental.Lease{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Scope:         rental.Scope{Type: rental.ScopeType(m.ScopeType), ID: m.ScopeID},
		MonthlyAmount: m.MonthlyAmount,
		Status:        rental.LeaseStatus(m.Status),
		StartDate:     m.StartDate,
		BillingDay:    m.BillingDay,
	}
}

func leaseModelFrom(l *rental.Lease) *leaseModel {
	return &leaseModel{
		ID:            l.ID,
		ScopeType:     l.Scope.Type.String(),
		ScopeID:       l.Scope.ID,
		MonthlyAmount: l.MonthlyAmount,
		Status:        l.Status.String(),
		StartDate:     l.StartDate,
		BillingDay:    l.BillingDay,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

// rentTransactionModel is the persistence shape of rental.RentTransaction.
// The billing period is stored as (period_year, period_month).
type rentTransactionModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	LeaseID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	ScopeType   string     `gorm:"type:varchar(16);not null;index:idx_rent_tx_scope_period"`
	ScopeID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_rent_tx_scope_period"`
	AmountDue   int64      `gorm:"not null"`
	AmountPaid  *int64     `gorm:""`
	Status      string     `gorm:"type:varchar(16);not null"`
	PeriodYear  int        `gorm:"not null;index:idx_rent_tx_scope_period"`
	PeriodMonth int        `gorm:"not null;index:idx_rent_tx_scope_period"`
	PaidAt      *time.Time `gorm:""`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (rentTransactionModel) TableName() string { return "rent_transactions" }

func (m *rentTransactionModel) toDomain() rental.RentTransaction {
	return rental.RentTransaction{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		LeaseID:    m.LeaseID,
		Scope:      rental.Scope{Type: rental.ScopeType(m.ScopeType), ID: m.ScopeID},
		AmountDue:  m.AmountDue,
		AmountPaid: m.AmountPaid,
		Status:     rental.TransactionStatus(m.Status),
		Period:     rental.Period{Year: m.PeriodYear, Month: time.Month(m.PeriodMonth)},
		PaidAt:     m.PaidAt,
	}
}

func rentTransactionModelFrom(t *rental.RentTransaction) *rentTransactionModel {
	return &rentTransactionModel{
		ID:          t.ID,
		LeaseID:     t.LeaseID,
		ScopeType:   t.Scope.Type.String(),
		ScopeID:     t.Scope.ID,
		AmountDue:   t.AmountDue,
		AmountPaid:  t.AmountPaid,
		Status:      t.Status.String(),
		PeriodYear:  t.Period.Year,
		PeriodMonth: int(t.Period.Month),
		PaidAt:      t.PaidAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// expenseModel is the persistence shape of rental.Expense
type expenseModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ScopeType   string     `gorm:"type:varchar(16);not null;index:idx_expenses_scope"`
	ScopeID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_expenses_scope"`
	Amount      int64      `gorm:"not null"`
	ExpenseDate time.Time  `gorm:"not null"`
	LeaseID     *uuid.UUID `gorm:"type:uuid"`
	Description string     `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (expenseModel) TableName() string { return "expenses" }

func (m *expenseModel) toDomain() rental.Expense {
	return rental.Expense{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Scope:       rental.Scope{Type: rental.ScopeType(m.ScopeType), ID: m.ScopeID},
		Amount:      m.Amount,
		ExpenseDate: m.ExpenseDate,
		LeaseID:     m.LeaseID,
		Description: m.Description,
	}
}

func expenseModelFrom(e *rental.Expense) *expenseModel {
	return &expenseModel{
		ID:          e.ID,
		ScopeType:   e.Scope.Type.String(),
		ScopeID:     e.Scope.ID,
		Amount:      e.Amount,
		ExpenseDate: e.ExpenseDate,
		LeaseID:     e.LeaseID,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// Migrate creates or updates the rental tables
func Migrate(d *Database) error {
	return d.DB.AutoMigrate(&leaseModel{}, &rentTransactionModel{}, &expenseModel{})
}
