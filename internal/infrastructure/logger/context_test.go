package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextRoundTrip(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	ctx = WithContext(ctx, logger)
	assert.Same(t, logger, FromContext(ctx))

	ctx, _ = WithRequestID(ctx, logger, "req-123")
	ctx, _ = WithScope(ctx, logger, "owner:abc")
	ctx, _ = WithActorID(ctx, logger, "user-9")

	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Equal(t, "owner:abc", GetScope(ctx))
	assert.Equal(t, "user-9", GetActorID(ctx))
}

func TestFromContext_Missing(t *testing.T) {
	// A bare context yields a usable no-op logger, never nil.
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	logger.Info("should not panic")
}

func TestContextLogger_EnrichesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	ctx := WithContext(context.Background(), logger)
	ctx = context.WithValue(ctx, RequestIDKey, "req-42")
	ctx = context.WithValue(ctx, ScopeKey, "team:t1")

	L(ctx).Info("hello")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	fields := entry.ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "team:t1", fields["scope"])
}

func TestContextLogger_NopWithoutLogger(t *testing.T) {
	// No logger in context: calls are safe no-ops.
	L(context.Background()).Error("dropped")
}

func TestContextLogger_With(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	ctx := WithContext(context.Background(), logger)
	L(ctx).With(zap.String("component", "cache")).Info("warmed")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "cache", logs.All()[0].ContextMap()["component"])
}
