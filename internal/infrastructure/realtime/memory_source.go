package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/rentdesk/backend/internal/domain/rental"
)

// MemoryChangeHub is an in-process Publisher and Source. It backs the
// realtime path when Redis is unavailable and doubles as the transport
// in tests.
type MemoryChangeHub struct {
	mu     sync.Mutex
	subs   map[string][]chan ChangeEvent // topic -> subscriber channels
	closed bool
}

// NewMemoryChangeHub creates an empty in-memory hub
func NewMemoryChangeHub() *MemoryChangeHub {
	return &MemoryChangeHub{
		subs: make(map[string][]chan ChangeEvent),
	}
}

// PublishChange delivers the event to every subscriber of its topic
func (h *MemoryChangeHub) PublishChange(ctx context.Context, event ChangeEvent) error {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixNano()
	}

	scope, err := event.Scope()
	if err != nil {
		return err
	}

	topic := TopicFor(event.Entity, scope)

	h.mu.Lock()
	channels := append([]chan ChangeEvent(nil), h.subs[topic]...)
	h.mu.Unlock()

	for _, ch := range channels {
		select {
		case ch <- event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribe listens on all rental entity channels of the scope. Blocks
// until ctx is cancelled.
func (h *MemoryChangeHub) Subscribe(ctx context.Context, scope rental.Scope, callback func(ChangeEvent)) error {
	ch := make(chan ChangeEvent, 16)
	topics := TopicsFor(scope)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return context.Canceled
	}
	for _, topic := range topics {
		h.subs[topic] = append(h.subs[topic], ch)
	}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		for _, topic := range topics {
			h.subs[topic] = removeChannel(h.subs[topic], ch)
		}
		h.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-ch:
			callback(event)
		}
	}
}

// Close marks the hub as closed; new subscriptions are rejected
func (h *MemoryChangeHub) Close() error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	return nil
}

func removeChannel(channels []chan ChangeEvent, target chan ChangeEvent) []chan ChangeEvent {
	result := channels[:0:0]
	for _, ch := range channels {
		if ch != target {
			result = append(result, ch)
		}
	}
	return result
}

var (
	_ Publisher = (*MemoryChangeHub)(nil)
	_ Source    = (*MemoryChangeHub)(nil)
)
