package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rentdesk/backend/internal/domain/rental"
)

// Calculator derives rent-collection KPIs from raw rows. It is pure:
// no I/O, no clock access (the reference time is an input), and no
// errors for business conditions. Unknown or missing data degrades to
// zero contributions.
type Calculator struct{}

// NewCalculator creates a new Calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// CalculationInput carries the raw rows for one scope. Transactions and
// expenses are expected to already be filtered to the target period by
// the caller.
type CalculationInput struct {
	Leases       []rental.Lease
	Transactions []rental.RentTransaction
	Expenses     []rental.Expense
	// Target identifies the billing period under calculation.
	Target time.Time
	// Now is the reference time for overdue classification.
	Now time.Time
}

// Calculate produces the KPI snapshot for the input rows.
//
// Each active lease contributes its monthly amount to TotalExpected and
// is classified into exactly one of paid/overdue/pending. When several
// transactions reference the same lease in one period, only the first
// match is used; duplicates are not summed.
func (c *Calculator) Calculate(in CalculationInput) KPISnapshot {
	var snapshot KPISnapshot

	targetPeriod := rental.PeriodOf(in.Target)
	currentPeriod := rental.PeriodOf(in.Now)

	for i := range in.Leases {
		lease := &in.Leases[i]
		if !lease.IsActive() {
			continue
		}

		snapshot.TotalExpected += lease.MonthlyAmount

		tx := firstMatch(in.Transactions, lease)
		if tx != nil {
			snapshot.TotalCollected += tx.PaidAmount()
			switch tx.Status {
			case rental.TransactionStatusPaid:
				snapshot.PaidCount++
			case rental.TransactionStatusOverdue:
				snapshot.OverdueCount++
			default:
				snapshot.PendingCount++
			}
			continue
		}

		// No transaction generated yet: overdue only once the billing
		// day has passed within the current month.
		if targetPeriod.Equal(currentPeriod) && in.Now.Day() > lease.BillingDay {
			snapshot.OverdueCount++
		} else {
			snapshot.PendingCount++
		}
	}

	snapshot.CollectionRate = collectionRate(snapshot.TotalCollected, snapshot.TotalExpected)

	for i := range in.Expenses {
		snapshot.TotalExpenses += in.Expenses[i].Amount
	}

	return snapshot
}

// firstMatch returns the first transaction referencing the lease, or nil
func firstMatch(transactions []rental.RentTransaction, lease *rental.Lease) *rental.RentTransaction {
	for i := range transactions {
		if transactions[i].LeaseID == lease.ID {
			return &transactions[i]
		}
	}
	return nil
}

// collectionRate computes round(collected / expected * 100) as a whole
// percentage. No fractional cents are carried.
func collectionRate(collected, expected int64) int64 {
	if expected <= 0 {
		return 0
	}
	return decimal.NewFromInt(collected).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(expected)).
		Round(0).
		IntPart()
}
