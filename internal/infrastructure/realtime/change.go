package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/rentdesk/backend/internal/domain/rental"
)

// ChangeEvent notifies subscribers that rows of one entity changed within
// a scope. It carries no row data; consumers re-read what they need.
type ChangeEvent struct {
	Entity    rental.EntityType `json:"entity"`
	ScopeType string            `json:"scopeType"`
	ScopeID   string            `json:"scopeId"`
	Timestamp int64             `json:"timestamp"`
}

// Scope reconstructs the event's scope
func (e ChangeEvent) Scope() (rental.Scope, error) {
	return rental.ParseScope(e.ScopeType, e.ScopeID)
}

// TopicFor returns the channel name for one entity within one scope.
// Channels are per-scope so a subscriber never sees another scope's traffic.
func TopicFor(entity rental.EntityType, scope rental.Scope) string {
	return fmt.Sprintf("rental:changes:%s:%s:%s", entity, scope.Type, scope.ID)
}

// TopicsFor returns the channel names for every rental entity in the scope
func TopicsFor(scope rental.Scope) []string {
	return []string{
		TopicFor(rental.EntityLeases, scope),
		TopicFor(rental.EntityRentTransactions, scope),
		TopicFor(rental.EntityExpenses, scope),
	}
}

// NewChangeEvent creates a ChangeEvent stamped with the current time
func NewChangeEvent(entity rental.EntityType, scope rental.Scope) ChangeEvent {
	return ChangeEvent{
		Entity:    entity,
		ScopeType: scope.Type.String(),
		ScopeID:   scope.ID.String(),
		Timestamp: time.Now().UnixNano(),
	}
}

// Publisher sends change notifications to subscribers of a scope
type Publisher interface {
	// PublishChange notifies all subscribers of the event's scope and entity
	PublishChange(ctx context.Context, event ChangeEvent) error
}

// Source delivers change notifications for a scope. Subscribe blocks
// until the context is cancelled or the transport fails; callers run it
// in a goroutine and fall back to polling when it returns an error.
type Source interface {
	// Subscribe listens for changes to all rental entities in the scope
	Subscribe(ctx context.Context, scope rental.Scope, callback func(ChangeEvent)) error
	// Close releases transport resources
	Close() error
}

// Hub is a Publisher and Source over the same transport, so that a
// change published by one side of the process is seen by the other.
type Hub interface {
	Publisher
	Source
}
