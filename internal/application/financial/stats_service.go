package financial

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rentdesk/backend/internal/domain/finance"
	"github.com/rentdesk/backend/internal/domain/rental"
	"github.com/rentdesk/backend/internal/infrastructure/cache"
	"github.com/rentdesk/backend/internal/infrastructure/logger"
)

// Default TTLs. Yearly aggregates change slowly; the current month is
// volatile and tolerates at most a minute of staleness when an
// invalidation is missed.
const (
	DefaultYearlyTTL  = 600 * time.Second
	DefaultMonthlyTTL = 60 * time.Second
)

// MonthStats pairs one billing period with its snapshot
type MonthStats struct {
	Period rental.Period `json:"period"`
	finance.KPISnapshot
}

// YearlyStats is the per-month breakdown and rolled-up totals for one year
type YearlyStats struct {
	Year   int                 `json:"year"`
	Months []MonthStats        `json:"months"`
	Totals finance.KPISnapshot `json:"totals"`
}

// StatsService orchestrates the cache-aside read path: build the key,
// serve from cache, and on miss read all three repositories and feed the
// calculator. A read failure propagates as ErrDataUnavailable; the
// calculator never sees partial data.
type StatsService struct {
	leases       rental.LeaseRepository
	transactions rental.RentTransactionRepository
	expenses     rental.ExpenseRepository
	store        cache.Store
	calc         *finance.Calculator
	yearlyTTL    time.Duration
	monthlyTTL   time.Duration
	now          func() time.Time
}

// StatsServiceOption configures a StatsService
type StatsServiceOption func(*StatsService)

// WithTTLs overrides the yearly and monthly cache TTLs
func WithTTLs(yearly, monthly time.Duration) StatsServiceOption {
	return func(s *StatsService) {
		s.yearlyTTL = yearly
		s.monthlyTTL = monthly
	}
}

// WithNow overrides the clock used for overdue classification
func WithNow(now func() time.Time) StatsServiceOption {
	return func(s *StatsService) {
		s.now = now
	}
}

// NewStatsService creates a StatsService
func NewStatsService(
	leases rental.LeaseRepository,
	transactions rental.RentTransactionRepository,
	expenses rental.ExpenseRepository,
	store cache.Store,
	opts ...StatsServiceOption,
) *StatsService {
	s := &StatsService{
		leases:       leases,
		transactions: transactions,
		expenses:     expenses,
		store:        store,
		calc:         finance.NewCalculator(),
		yearlyTTL:    DefaultYearlyTTL,
		monthlyTTL:   DefaultMonthlyTTL,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MonthlyStats returns the scope's KPI snapshot for one billing period
func (s *StatsService) MonthlyStats(ctx context.Context, scope rental.Scope, period rental.Period) (finance.KPISnapshot, error) {
	if err := scope.Validate(); err != nil {
		return finance.KPISnapshot{}, err
	}
	if err := period.Validate(); err != nil {
		return finance.KPISnapshot{}, err
	}

	opts := cache.Options{TTL: s.monthlyTTL, Namespace: Namespace(scope)}
	return cache.GetOrComputeJSON(ctx, s.store, MonthKey(scope, period), opts, func(ctx context.Context) (finance.KPISnapshot, error) {
		leases, err := s.leases.ForScope(ctx, scope)
		if err != nil {
			return finance.KPISnapshot{}, err
		}
		return s.computeMonth(ctx, scope, period, leases)
	})
}

// YearlyStats returns the scope's per-month breakdown and totals for one year
func (s *StatsService) YearlyStats(ctx context.Context, scope rental.Scope, year int) (YearlyStats, error) {
	if err := scope.Validate(); err != nil {
		return YearlyStats{}, err
	}
	if err := (rental.Period{Year: year, Month: time.January}).Validate(); err != nil {
		return YearlyStats{}, err
	}

	opts := cache.Options{TTL: s.yearlyTTL, Namespace: Namespace(scope)}
	return cache.GetOrComputeJSON(ctx, s.store, YearKey(scope, year), opts, func(ctx context.Context) (YearlyStats, error) {
		leases, err := s.leases.ForScope(ctx, scope)
		if err != nil {
			return YearlyStats{}, err
		}

		stats := YearlyStats{Year: year, Months: make([]MonthStats, 0, 12)}
		snapshots := make([]finance.KPISnapshot, 0, 12)
		for month := time.January; month <= time.December; month++ {
			period := rental.Period{Year: year, Month: month}
			snapshot, err := s.computeMonth(ctx, scope, period, leases)
			if err != nil {
				return YearlyStats{}, err
			}
			stats.Months = append(stats.Months, MonthStats{Period: period, KPISnapshot: snapshot})
			snapshots = append(snapshots, snapshot)
		}
		stats.Totals = finance.Aggregate(snapshots...)
		return stats, nil
	})
}

// computeMonth reads the period's transactions and expenses and runs the
// calculator. Leases are passed in so a yearly computation reads them once.
func (s *StatsService) computeMonth(ctx context.Context, scope rental.Scope, period rental.Period, leases []rental.Lease) (finance.KPISnapshot, error) {
	transactions, err := s.transactions.ForScopePeriod(ctx, scope, period)
	if err != nil {
		return finance.KPISnapshot{}, err
	}
	expenses, err := s.expenses.ForScopePeriod(ctx, scope, &period)
	if err != nil {
		return finance.KPISnapshot{}, err
	}

	now := s.now()
	logger.L(ctx).Debug("computing kpi snapshot",
		zap.String("scope", scope.String()),
		zap.String("period", period.String()),
		zap.Int("leases", len(leases)),
		zap.Int("transactions", len(transactions)))

	return s.calc.Calculate(finance.CalculationInput{
		Leases:       leases,
		Transactions: transactions,
		Expenses:     expenses,
		Target:       period.Start(),
		Now:          now,
	}), nil
}
