package rental

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScope(t *testing.T) {
	id := uuid.New()

	t.Run("owner scope", func(t *testing.T) {
		scope, err := ParseScope("owner", id.String())
		require.NoError(t, err)
		assert.Equal(t, OwnerScope(id), scope)
	})

	t.Run("team scope", func(t *testing.T) {
		scope, err := ParseScope("team", id.String())
		require.NoError(t, err)
		assert.Equal(t, TeamScope(id), scope)
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		_, err := ParseScope("org", id.String())
		assert.Error(t, err)
	})

	t.Run("malformed id rejected", func(t *testing.T) {
		_, err := ParseScope("owner", "not-a-uuid")
		assert.Error(t, err)
	})
}

func TestScope_String(t *testing.T) {
	id := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")
	assert.Equal(t, "team:550e8400-e29b-41d4-a716-446655440000", TeamScope(id).String())
}

func TestPeriod(t *testing.T) {
	now := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)
	period := PeriodOf(now)

	assert.Equal(t, Period{Year: 2025, Month: time.June}, period)
	assert.Equal(t, "2025-06", period.String())
	assert.True(t, period.Contains(now))
	assert.False(t, period.Contains(now.AddDate(0, 1, 0)))
	assert.True(t, period.Equal(PeriodOf(now.AddDate(0, 0, 15))))
	assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), period.Start())
}

func TestPeriod_Validate(t *testing.T) {
	assert.NoError(t, Period{Year: 2025, Month: time.January}.Validate())
	assert.Error(t, Period{Year: 2025, Month: 13}.Validate())
	assert.Error(t, Period{Year: 0, Month: time.January}.Validate())
}
