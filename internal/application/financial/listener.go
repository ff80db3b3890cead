package financial

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rentdesk/backend/internal/domain/finance"
	"github.com/rentdesk/backend/internal/domain/rental"
	"github.com/rentdesk/backend/internal/infrastructure/realtime"
)

// DefaultPollInterval is the fallback cadence when the change source is down
const DefaultPollInterval = 10 * time.Second

// RefreshFunc receives a freshly computed current-month snapshot
type RefreshFunc func(ctx context.Context, snapshot finance.KPISnapshot)

// Listener keeps one scope's consumers fresh. It subscribes to the
// scope's change channels for all three entities; on a change it fires
// the invalidation dispatcher and pushes a recomputed snapshot to the
// refresh callback. If the source cannot deliver, it degrades to
// polling at a fixed interval and keeps retrying the subscription.
type Listener struct {
	source       realtime.Source
	dispatcher   *InvalidationDispatcher
	stats        *StatsService
	scope        rental.Scope
	refresh      RefreshFunc
	logger       *zap.Logger
	pollInterval time.Duration
	now          func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// ListenerOption configures a Listener
type ListenerOption func(*Listener)

// WithPollInterval overrides the poll fallback interval
func WithPollInterval(interval time.Duration) ListenerOption {
	return func(l *Listener) {
		l.pollInterval = interval
	}
}

// WithListenerNow overrides the clock used to pick the current period
func WithListenerNow(now func() time.Time) ListenerOption {
	return func(l *Listener) {
		l.now = now
	}
}

// NewListener creates a listener for one scope
func NewListener(
	source realtime.Source,
	dispatcher *InvalidationDispatcher,
	stats *StatsService,
	scope rental.Scope,
	refresh RefreshFunc,
	logger *zap.Logger,
	opts ...ListenerOption,
) *Listener {
	l := &Listener{
		source:       source,
		dispatcher:   dispatcher,
		stats:        stats,
		scope:        scope,
		refresh:      refresh,
		logger:       logger,
		pollInterval: DefaultPollInterval,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start begins listening. Non-blocking; returns an error only if the
// listener is already running.
func (l *Listener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return errors.New("listener already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})

	go l.run(runCtx)
	return nil
}

// Stop tears the subscription down and waits for the loop to exit
func (l *Listener) Stop() {
	l.mu.Lock()
	cancel := l.cancel
	done := l.done
	l.cancel = nil
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (l *Listener) run(ctx context.Context) {
	defer close(l.done)

	for {
		err := l.source.Subscribe(ctx, l.scope, func(ev realtime.ChangeEvent) {
			l.handleChange(ctx, ev)
		})
		if ctx.Err() != nil {
			return
		}

		// Source is down: one poll per interval keeps consumers bounded
		// stale, then retry the subscription.
		l.logger.Warn("change subscription lost, falling back to polling",
			zap.String("scope", l.scope.String()),
			zap.Duration("poll_interval", l.pollInterval),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.pollInterval):
			l.refreshNow(ctx)
		}
	}
}

// handleChange invalidates the scope's keys for the changed entity and
// pushes a fresh snapshot.
func (l *Listener) handleChange(ctx context.Context, ev realtime.ChangeEvent) {
	switch ev.Entity {
	case rental.EntityLeases:
		l.dispatcher.OnLeaseChanged(ctx, l.scope)
	case rental.EntityRentTransactions:
		l.dispatcher.OnTransactionChanged(ctx, l.scope)
	case rental.EntityExpenses:
		l.dispatcher.OnExpenseChanged(ctx, l.scope)
	default:
		l.logger.Warn("change event for unknown entity",
			zap.String("entity", ev.Entity.String()))
		return
	}

	l.refreshNow(ctx)
}

func (l *Listener) refreshNow(ctx context.Context) {
	if l.refresh == nil {
		return
	}

	period := rental.PeriodOf(l.now())
	snapshot, err := l.stats.MonthlyStats(ctx, l.scope, period)
	if err != nil {
		l.logger.Warn("refresh after change failed",
			zap.String("scope", l.scope.String()),
			zap.String("period", period.String()),
			zap.Error(err))
		return
	}
	l.refresh(ctx, snapshot)
}
