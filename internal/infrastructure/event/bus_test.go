package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rentdesk/backend/internal/domain/shared"
)

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
	panics   bool
}

func (h *recordingHandler) Handle(ctx context.Context, ev shared.DomainEvent) error {
	if h.panics {
		panic("boom")
	}
	h.received = append(h.received, ev)
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func testEvent(eventType string) shared.DomainEvent {
	ev := shared.NewBaseDomainEvent(eventType, "Lease", uuid.New(), "owner", uuid.New())
	return &ev
}

func TestInMemoryEventBus_PublishRouting(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	leases := &recordingHandler{types: []string{"rental.lease.changed"}}
	all := &recordingHandler{}

	bus.Subscribe(leases)
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(),
		testEvent("rental.lease.changed"),
		testEvent("rental.expense.changed"),
	))

	assert.Len(t, leases.received, 1)
	assert.Len(t, all.received, 2)
}

func TestInMemoryEventBus_HandlerErrorDoesNotBlockOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := &recordingHandler{types: []string{"rental.lease.changed"}, err: errors.New("down")}
	healthy := &recordingHandler{types: []string{"rental.lease.changed"}}

	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), testEvent("rental.lease.changed")))
	assert.Len(t, healthy.received, 1)
}

func TestInMemoryEventBus_HandlerPanicIsContained(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	panicking := &recordingHandler{types: []string{"rental.lease.changed"}, panics: true}
	healthy := &recordingHandler{types: []string{"rental.lease.changed"}}

	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), testEvent("rental.lease.changed"))
	})
	assert.Len(t, healthy.received, 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	h := &recordingHandler{types: []string{"rental.lease.changed"}}
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), testEvent("rental.lease.changed")))
	assert.Empty(t, h.received)
}
