package rental

import (
	"context"

	"go.uber.org/zap"

	"github.com/rentdesk/backend/internal/domain/rental"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/infrastructure/realtime"
)

// notifier fans a committed write out to the in-process event bus and
// the realtime change hub. Notification failures never roll back the
// write; consumers degrade to TTL staleness.
type notifier struct {
	events  shared.EventPublisher
	changes realtime.Publisher
	logger  *zap.Logger
}

func newNotifier(events shared.EventPublisher, changes realtime.Publisher, logger *zap.Logger) *notifier {
	return &notifier{events: events, changes: changes, logger: logger}
}

// afterWrite publishes the drained domain events and a change
// notification for the entity's scope channel.
func (n *notifier) afterWrite(ctx context.Context, scope rental.Scope, entity rental.EntityType, events []shared.DomainEvent) {
	if n.events != nil && len(events) > 0 {
		if err := n.events.Publish(ctx, events...); err != nil {
			n.logger.Warn("domain event publish failed",
				zap.String("scope", scope.String()),
				zap.String("entity", entity.String()),
				zap.Error(err))
		}
	}

	if n.changes != nil {
		if err := n.changes.PublishChange(ctx, realtime.NewChangeEvent(entity, scope)); err != nil {
			n.logger.Warn("change notification failed",
				zap.String("scope", scope.String()),
				zap.String("entity", entity.String()),
				zap.Error(err))
		}
	}
}
