package rental

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentdesk/backend/internal/domain/shared"
)

func TestNewLease(t *testing.T) {
	scope := OwnerScope(uuid.New())
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	t.Run("creates pending lease", func(t *testing.T) {
		lease, err := NewLease(scope, 100000, start, 5)
		require.NoError(t, err)
		assert.Equal(t, LeaseStatusPending, lease.Status)
		assert.Equal(t, int64(100000), lease.MonthlyAmount)
		assert.False(t, lease.IsActive())
		assert.Len(t, lease.Events(), 1)
	})

	t.Run("rejects billing day out of range", func(t *testing.T) {
		_, err := NewLease(scope, 100000, start, 0)
		assert.Error(t, err)

		_, err = NewLease(scope, 100000, start, 32)
		assert.Error(t, err)
	})

	t.Run("rejects invalid scope", func(t *testing.T) {
		_, err := NewLease(Scope{}, 100000, start, 5)
		assert.Error(t, err)
	})
}

func TestLease_Lifecycle(t *testing.T) {
	newActive := func(t *testing.T) *Lease {
		lease, err := NewLease(TeamScope(uuid.New()), 100000, time.Now(), 5)
		require.NoError(t, err)
		require.NoError(t, lease.Activate())
		return lease
	}

	t.Run("activate then terminate", func(t *testing.T) {
		lease := newActive(t)
		assert.True(t, lease.IsActive())
		require.NoError(t, lease.Terminate())
		assert.Equal(t, LeaseStatusTerminated, lease.Status)
	})

	t.Run("double terminate rejected", func(t *testing.T) {
		lease := newActive(t)
		require.NoError(t, lease.Terminate())
		assert.ErrorIs(t, lease.Terminate(), shared.ErrLeaseTerminated)
	})

	t.Run("terminated lease rejects term updates", func(t *testing.T) {
		lease := newActive(t)
		require.NoError(t, lease.Terminate())
		assert.ErrorIs(t, lease.UpdateTerms(120000, 10), shared.ErrLeaseTerminated)
	})

	t.Run("admin correction allowed on terminated lease", func(t *testing.T) {
		lease := newActive(t)
		require.NoError(t, lease.Terminate())
		require.NoError(t, lease.AdminCorrect(120000, 10))
		assert.Equal(t, int64(120000), lease.MonthlyAmount)
		assert.Equal(t, 10, lease.BillingDay)
	})
}

func TestLease_Events(t *testing.T) {
	lease, err := NewLease(OwnerScope(uuid.New()), 100000, time.Now(), 5)
	require.NoError(t, err)
	require.NoError(t, lease.Activate())

	events := lease.Events()
	require.Len(t, events, 2)
	assert.Equal(t, EventTypeLeaseChanged, events[0].EventType())
	assert.Equal(t, lease.Scope.ID, events[0].ScopeID())

	// Events are drained after the first read.
	assert.Empty(t, lease.Events())
}
