package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentdesk/backend/internal/domain/rental"
)

func TestTopicFor(t *testing.T) {
	id := uuid.MustParse("9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d")
	scope := rental.OwnerScope(id)

	assert.Equal(t,
		"rental:changes:leases:owner:9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d",
		TopicFor(rental.EntityLeases, scope))

	topics := TopicsFor(scope)
	require.Len(t, topics, 3)
}

func TestMemoryChangeHub_DeliversToSubscribedScope(t *testing.T) {
	hub := NewMemoryChangeHub()
	scope := rental.OwnerScope(uuid.New())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan ChangeEvent, 1)
	go func() {
		_ = hub.Subscribe(ctx, scope, func(ev ChangeEvent) {
			received <- ev
		})
	}()

	// Let the subscriber register before publishing.
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, hub.PublishChange(ctx, NewChangeEvent(rental.EntityExpenses, scope)))

	select {
	case ev := <-received:
		assert.Equal(t, rental.EntityExpenses, ev.Entity)
		got, err := ev.Scope()
		require.NoError(t, err)
		assert.Equal(t, scope, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change event")
	}
}

func TestMemoryChangeHub_ScopeIsolation(t *testing.T) {
	hub := NewMemoryChangeHub()
	subscribed := rental.OwnerScope(uuid.New())
	other := rental.OwnerScope(uuid.New())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan ChangeEvent, 1)
	go func() {
		_ = hub.Subscribe(ctx, subscribed, func(ev ChangeEvent) {
			received <- ev
		})
	}()
	time.Sleep(20 * time.Millisecond)

	// Traffic for another scope must not reach this subscriber.
	require.NoError(t, hub.PublishChange(ctx, NewChangeEvent(rental.EntityLeases, other)))

	select {
	case <-received:
		t.Fatal("received event for a scope we did not subscribe to")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMemoryChangeHub_SubscribeStopsOnCancel(t *testing.T) {
	hub := NewMemoryChangeHub()
	scope := rental.OwnerScope(uuid.New())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- hub.Subscribe(ctx, scope, func(ChangeEvent) {})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("subscribe did not stop after cancel")
	}
}

func TestMemoryChangeHub_ClosedRejectsSubscribe(t *testing.T) {
	hub := NewMemoryChangeHub()
	require.NoError(t, hub.Close())

	err := hub.Subscribe(context.Background(), rental.OwnerScope(uuid.New()), func(ChangeEvent) {})
	assert.Error(t, err)
}
