package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Options controls how a computed value is stored
type Options struct {
	// TTL is the time after which the entry expires. Zero means DefaultTTL.
	TTL time.Duration
	// Namespace tags the entry for bulk invalidation. Namespaces must be
	// partitioned per scope: a namespace shared between tenants would turn
	// InvalidateNamespace into a cross-tenant data-isolation bug.
	Namespace string
}

// DefaultTTL applies when Options.TTL is zero
const DefaultTTL = 60 * time.Second

// ComputeFunc produces the value for a key on cache miss
type ComputeFunc func(ctx context.Context) ([]byte, error)

// Store is a generic read-through cache. Implementations must coalesce
// concurrent misses on the same key into a single compute (stampede
// protection) and fail open: when the backend is unreachable, compute
// directly and return the fresh value instead of failing the caller.
type Store interface {
	// GetOrCompute returns the cached value for key, computing and
	// storing it on miss or expiry.
	GetOrCompute(ctx context.Context, key string, opts Options, compute ComputeFunc) ([]byte, error)
	// Invalidate removes entries immediately, regardless of remaining TTL
	Invalidate(ctx context.Context, keys ...string) error
	// InvalidateNamespace removes every entry tagged with the namespace
	InvalidateNamespace(ctx context.Context, namespace string) error
	// Ping reports whether the backend is reachable
	Ping(ctx context.Context) error
	// Close releases backend resources
	Close() error
}

// GetOrComputeJSON is the typed façade over a byte-level Store. Values
// round-trip through JSON, matching the serialized CacheEntry format.
func GetOrComputeJSON[T any](ctx context.Context, store Store, key string, opts Options, compute func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	data, err := store.GetOrCompute(ctx, key, opts, func(ctx context.Context) ([]byte, error) {
		value, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal cache value: %w", err)
		}
		return encoded, nil
	})
	if err != nil {
		return zero, err
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return zero, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return value, nil
}
