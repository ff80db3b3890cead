package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// MemoryStore implements Store with an in-process map. It is the
// fallback when Redis is unavailable and the substitute backend in
// tests, where the injectable clock makes TTL expiry controllable.
// State is not shared across process instances.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	clock   func() time.Time
	logger  *zap.Logger
	group   singleflight.Group
}

type memoryEntry struct {
	value     []byte
	namespace string
	expiresAt time.Time
}

// MemoryStoreOption is a functional option for configuring the store
type MemoryStoreOption func(*MemoryStore)

// WithClock sets the time source, letting tests control expiry
func WithClock(clock func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.clock = clock
	}
}

// WithMemoryStoreLogger sets the logger for the store
func WithMemoryStoreLogger(logger *zap.Logger) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.logger = logger
	}
}

// NewMemoryStore creates a new in-memory cache store
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		clock:   time.Now,
		logger:  zap.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// GetOrCompute returns the cached value for key, computing it on miss
// or expiry. Concurrent misses on one key collapse into a single compute.
func (s *MemoryStore) GetOrCompute(ctx context.Context, key string, opts Options, compute ComputeFunc) ([]byte, error) {
	if value, ok := s.lookup(key); ok {
		return value, nil
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		// Re-check inside the flight: a concurrent caller may have
		// stored the value while this one waited.
		if value, ok := s.lookup(key); ok {
			return value, nil
		}

		value, err := compute(ctx)
		if err != nil {
			return nil, err
		}

		ttl := opts.TTL
		if ttl <= 0 {
			ttl = DefaultTTL
		}

		s.mu.Lock()
		s.entries[key] = memoryEntry{
			value:     value,
			namespace: opts.Namespace,
			expiresAt: s.clock().Add(ttl),
		}
		s.mu.Unlock()

		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// lookup returns the live value for key, dropping it when expired
func (s *MemoryStore) lookup(key string) ([]byte, bool) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if s.clock().After(entry.expiresAt) {
		s.mu.Lock()
		// Re-check: the entry may have been refreshed meanwhile.
		if current, ok := s.entries[key]; ok && s.clock().After(current.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false
	}

	return entry.value, true
}

// Invalidate removes entries immediately regardless of remaining TTL
func (s *MemoryStore) Invalidate(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.entries, key)
	}
	return nil
}

// InvalidateNamespace removes every entry tagged with the namespace
func (s *MemoryStore) InvalidateNamespace(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, entry := range s.entries {
		if entry.namespace == namespace {
			delete(s.entries, key)
		}
	}
	return nil
}

// Ping always succeeds; the backend is this process
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Close releases nothing; present to satisfy Store
func (s *MemoryStore) Close() error {
	return nil
}

// Len returns the number of live entries (for testing/monitoring)
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
