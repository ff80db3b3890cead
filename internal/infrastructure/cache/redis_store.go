package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// namespaceSetPrefix prefixes the Redis SET that tracks the members of
// each namespace for bulk invalidation.
const namespaceSetPrefix = "cachens:"

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisStore implements Store using Redis. Stampede protection is
// per-process: concurrent misses on one key inside this process collapse
// into a single compute via singleflight. Two processes may still compute
// the same key concurrently; that is an accepted degradation, not a
// correctness bug.
type RedisStore struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	logger     *zap.Logger
	group      singleflight.Group
}

// RedisStoreOption is a functional option for configuring the store
type RedisStoreOption func(*RedisStore)

// WithStoreLogger sets the logger for the store
func WithStoreLogger(logger *zap.Logger) RedisStoreOption {
	return func(s *RedisStore) {
		s.logger = logger
	}
}

// NewRedisStore creates a new Redis-backed cache store
func NewRedisStore(cfg RedisConfig, opts ...RedisStoreOption) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	store := &RedisStore{
		client:     client,
		ownsClient: true,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(store)
	}

	return store, nil
}

// NewRedisStoreWithClient creates a store with an existing Redis client.
// The caller retains ownership of the client and is responsible for closing it.
func NewRedisStoreWithClient(client *redis.Client, opts ...RedisStoreOption) *RedisStore {
	store := &RedisStore{
		client:     client,
		ownsClient: false,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// GetOrCompute returns the cached value for key, computing it on miss.
// Backend failures fall through to a direct compute: the caller gets a
// fresh value and the miss is logged, never surfaced.
func (s *RedisStore) GetOrCompute(ctx context.Context, key string, opts Options, compute ComputeFunc) ([]byte, error) {
	result, err, _ := s.group.Do(key, func() (any, error) {
		data, err := s.client.Get(ctx, key).Bytes()
		if err == nil {
			s.logger.Debug("cache hit", zap.String("key", key))
			return data, nil
		}
		if !errors.Is(err, redis.Nil) {
			// Fail open: backend unreachable, compute without caching.
			s.logger.Warn("cache backend unavailable, computing directly",
				zap.String("key", key),
				zap.Error(err))
			return compute(ctx)
		}

		s.logger.Debug("cache miss", zap.String("key", key))
		value, err := compute(ctx)
		if err != nil {
			return nil, err
		}

		if err := s.set(ctx, key, value, opts); err != nil {
			s.logger.Warn("failed to store computed value",
				zap.String("key", key),
				zap.Error(err))
		}
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// set stores the value and tags it with the namespace set
func (s *RedisStore) set(ctx context.Context, key string, value []byte, opts Options) error {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, value, ttl)
	if opts.Namespace != "" {
		nsKey := namespaceSetPrefix + opts.Namespace
		pipe.SAdd(ctx, nsKey, key)
		// Keep the namespace set alive at least as long as its newest
		// member; GT never shortens an existing expiry.
		pipe.ExpireGT(ctx, nsKey, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Invalidate removes entries immediately regardless of remaining TTL
func (s *RedisStore) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache keys: %w", err)
	}
	s.logger.Debug("invalidated cache keys", zap.Int("count", len(keys)))
	return nil
}

// InvalidateNamespace removes every entry tagged with the namespace
func (s *RedisStore) InvalidateNamespace(ctx context.Context, namespace string) error {
	nsKey := namespaceSetPrefix + namespace

	members, err := s.client.SMembers(ctx, nsKey).Result()
	if err != nil {
		return fmt.Errorf("failed to read namespace members: %w", err)
	}

	keys := append(members, nsKey)
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate namespace: %w", err)
	}

	s.logger.Info("invalidated cache namespace",
		zap.String("namespace", namespace),
		zap.Int("entries", len(members)))
	return nil
}

// Ping reports whether the Redis backend is reachable
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the Redis client if this store owns it
func (s *RedisStore) Close() error {
	if s.ownsClient {
		return s.client.Close()
	}
	return nil
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (s *RedisStore) GetClient() *redis.Client {
	return s.client
}

// Ensure RedisStore implements Store
var _ Store = (*RedisStore)(nil)
