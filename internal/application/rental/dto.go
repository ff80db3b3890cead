package rental

import (
	"time"

	"github.com/google/uuid"

	"github.com/rentdesk/backend/internal/domain/rental"
)

// CreateLeaseRequest carries the fields needed to open a lease
type CreateLeaseRequest struct {
	MonthlyAmount int64     `json:"monthlyAmount" binding:"required"`
	StartDate     time.Time `json:"startDate" binding:"required"`
	BillingDay    int       `json:"billingDay" binding:"required,min=1,max=31"`
	// Activate immediately instead of leaving the lease pending
	Activate bool `json:"activate"`
}

// UpdateLeaseTermsRequest carries a terms change for a live lease
type UpdateLeaseTermsRequest struct {
	MonthlyAmount int64 `json:"monthlyAmount" binding:"required"`
	BillingDay    int   `json:"billingDay" binding:"required,min=1,max=31"`
}

// LeaseResponse is the outward shape of a lease
type LeaseResponse struct {
	ID            uuid.UUID `json:"id"`
	MonthlyAmount int64     `json:"monthlyAmount"`
	Status        string    `json:"status"`
	StartDate     time.Time `json:"startDate"`
	BillingDay    int       `json:"billingDay"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ToLeaseResponse converts a domain lease to its response shape
func ToLeaseResponse(l *rental.Lease) LeaseResponse {
	return LeaseResponse{
		ID:            l.ID,
		MonthlyAmount: l.MonthlyAmount,
		Status:        l.Status.String(),
		StartDate:     l.StartDate,
		BillingDay:    l.BillingDay,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

// ConfirmPaymentRequest records a confirmed rent payment
type ConfirmPaymentRequest struct {
	LeaseID uuid.UUID `json:"leaseId" binding:"required"`
	Year    int       `json:"year" binding:"required"`
	Month   int       `json:"month" binding:"required,min=1,max=12"`
	Amount  int64     `json:"amount" binding:"required"`
}

// Period returns the request's billing period
func (r ConfirmPaymentRequest) Period() rental.Period {
	return rental.Period{Year: r.Year, Month: time.Month(r.Month)}
}

// TransactionResponse is the outward shape of a rent transaction
type TransactionResponse struct {
	ID         uuid.UUID  `json:"id"`
	LeaseID    uuid.UUID  `json:"leaseId"`
	AmountDue  int64      `json:"amountDue"`
	AmountPaid *int64     `json:"amountPaid"`
	Status     string     `json:"status"`
	Period     string     `json:"period"`
	PaidAt     *time.Time `json:"paidAt"`
}

// ToTransactionResponse converts a domain transaction to its response shape
func ToTransactionResponse(t *rental.RentTransaction) TransactionResponse {
	return TransactionResponse{
		ID:         t.ID,
		LeaseID:    t.LeaseID,
		AmountDue:  t.AmountDue,
		AmountPaid: t.AmountPaid,
		Status:     t.Status.String(),
		Period:     t.Period.String(),
		PaidAt:     t.PaidAt,
	}
}

// RecordExpenseRequest carries a manually entered cost
type RecordExpenseRequest struct {
	Amount      int64      `json:"amount" binding:"required"`
	ExpenseDate time.Time  `json:"expenseDate" binding:"required"`
	LeaseID     *uuid.UUID `json:"leaseId"`
	Description string     `json:"description"`
}

// ExpenseResponse is the outward shape of an expense
type ExpenseResponse struct {
	ID          uuid.UUID  `json:"id"`
	Amount      int64      `json:"amount"`
	ExpenseDate time.Time  `json:"expenseDate"`
	LeaseID     *uuid.UUID `json:"leaseId"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ToExpenseResponse converts a domain expense to its response shape
func ToExpenseResponse(e *rental.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		Amount:      e.Amount,
		ExpenseDate: e.ExpenseDate,
		LeaseID:     e.LeaseID,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}
