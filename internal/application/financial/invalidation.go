package financial

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rentdesk/backend/internal/domain/rental"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/infrastructure/cache"
)

// InvalidationDispatcher evicts every cache entry a mutation can have
// made stale: the year key plus all twelve month keys of the scope's
// current year. Invalidation is fire-and-forget from the mutation's
// point of view; a failure degrades to staleness until TTL expiry and
// is logged, never propagated.
type InvalidationDispatcher struct {
	store  cache.Store
	logger *zap.Logger
	now    func() time.Time
}

// DispatcherOption configures an InvalidationDispatcher
type DispatcherOption func(*InvalidationDispatcher)

// WithDispatcherNow overrides the clock used to pick the target year
func WithDispatcherNow(now func() time.Time) DispatcherOption {
	return func(d *InvalidationDispatcher) {
		d.now = now
	}
}

// NewInvalidationDispatcher creates a dispatcher over the given store
func NewInvalidationDispatcher(store cache.Store, logger *zap.Logger, opts ...DispatcherOption) *InvalidationDispatcher {
	d := &InvalidationDispatcher{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// OnLeaseChanged evicts the scope's stats keys after a lease mutation
func (d *InvalidationDispatcher) OnLeaseChanged(ctx context.Context, scope rental.Scope) {
	d.invalidateScope(ctx, scope, rental.EntityLeases)
}

// OnTransactionChanged evicts the scope's stats keys after a rent transaction mutation
func (d *InvalidationDispatcher) OnTransactionChanged(ctx context.Context, scope rental.Scope) {
	d.invalidateScope(ctx, scope, rental.EntityRentTransactions)
}

// OnExpenseChanged evicts the scope's stats keys after an expense mutation
func (d *InvalidationDispatcher) OnExpenseChanged(ctx context.Context, scope rental.Scope) {
	d.invalidateScope(ctx, scope, rental.EntityExpenses)
}

func (d *InvalidationDispatcher) invalidateScope(ctx context.Context, scope rental.Scope, entity rental.EntityType) {
	if err := scope.Validate(); err != nil {
		d.logger.Warn("invalidation skipped for invalid scope",
			zap.String("entity", entity.String()))
		return
	}

	keys := KeysForYear(scope, d.now().Year())
	if err := d.store.Invalidate(ctx, keys...); err != nil {
		// Stale until TTL expiry, a bounded window, not a failure of
		// the mutation.
		d.logger.Warn("cache invalidation failed",
			zap.String("scope", scope.String()),
			zap.String("entity", entity.String()),
			zap.Int("keys", len(keys)),
			zap.Error(err))
		return
	}

	d.logger.Debug("cache invalidated",
		zap.String("scope", scope.String()),
		zap.String("entity", entity.String()),
		zap.Int("keys", len(keys)))
}

// Handle lets the dispatcher run as an event bus subscriber so every
// mutation path that publishes a domain event fires invalidation.
func (d *InvalidationDispatcher) Handle(ctx context.Context, ev shared.DomainEvent) error {
	scope, err := rental.ParseScope(ev.ScopeType(), ev.ScopeID().String())
	if err != nil {
		return err
	}

	switch ev.EventType() {
	case rental.EventTypeLeaseChanged:
		d.OnLeaseChanged(ctx, scope)
	case rental.EventTypeRentTransactionChanged:
		d.OnTransactionChanged(ctx, scope)
	case rental.EventTypeExpenseChanged:
		d.OnExpenseChanged(ctx, scope)
	}
	return nil
}

// EventTypes returns the event types the dispatcher subscribes to
func (d *InvalidationDispatcher) EventTypes() []string {
	return []string{
		rental.EventTypeLeaseChanged,
		rental.EventTypeRentTransactionChanged,
		rental.EventTypeExpenseChanged,
	}
}

var _ shared.EventHandler = (*InvalidationDispatcher)(nil)
