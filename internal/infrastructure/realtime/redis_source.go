package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rentdesk/backend/internal/domain/rental"
)

const closeTimeout = 5 * time.Second

// RedisChangeHub publishes and subscribes to change notifications over
// Redis Pub/Sub. One hub serves any number of scopes; each Subscribe
// call listens on the scope's own channels.
type RedisChangeHub struct {
	client     *redis.Client
	ownsClient bool
	logger     *zap.Logger

	mu        sync.Mutex
	cancelFns []context.CancelFunc
}

// RedisChangeHubOption configures a RedisChangeHub
type RedisChangeHubOption func(*RedisChangeHub)

// WithHubLogger sets the logger for the hub
func WithHubLogger(logger *zap.Logger) RedisChangeHubOption {
	return func(h *RedisChangeHub) {
		h.logger = logger
	}
}

// NewRedisChangeHub creates a hub with its own Redis connection
func NewRedisChangeHub(addr, password string, db int, opts ...RedisChangeHubOption) (*RedisChangeHub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	hub := &RedisChangeHub{
		client:     client,
		ownsClient: true,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(hub)
	}
	return hub, nil
}

// NewRedisChangeHubWithClient creates a hub over an existing client.
// The caller retains ownership of the client.
func NewRedisChangeHubWithClient(client *redis.Client, opts ...RedisChangeHubOption) *RedisChangeHub {
	hub := &RedisChangeHub{
		client: client,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(hub)
	}
	return hub
}

// PublishChange sends the event to the scope's channel for its entity
func (h *RedisChangeHub) PublishChange(ctx context.Context, event ChangeEvent) error {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixNano()
	}

	scope, err := event.Scope()
	if err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	topic := TopicFor(event.Entity, scope)
	if err := h.client.Publish(ctx, topic, data).Err(); err != nil {
		h.logger.Error("failed to publish change event",
			zap.String("topic", topic),
			zap.Error(err))
		return fmt.Errorf("failed to publish change event: %w", err)
	}

	h.logger.Debug("published change event",
		zap.String("topic", topic),
		zap.String("entity", event.Entity.String()))
	return nil
}

// Subscribe listens on all rental entity channels of the scope and invokes
// callback for each event. Blocks until ctx is cancelled or the
// subscription fails.
func (h *RedisChangeHub) Subscribe(ctx context.Context, scope rental.Scope, callback func(ChangeEvent)) error {
	subCtx, cancel := context.WithCancel(ctx)
	h.mu.Lock()
	h.cancelFns = append(h.cancelFns, cancel)
	h.mu.Unlock()
	defer cancel()

	topics := TopicsFor(scope)
	pubsub := h.client.Subscribe(subCtx, topics...)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		return fmt.Errorf("failed to subscribe to change channels: %w", err)
	}

	h.logger.Info("subscribed to change channels",
		zap.String("scope", scope.String()),
		zap.Strings("topics", topics))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			h.logger.Info("change subscription stopped", zap.String("scope", scope.String()))
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				h.logger.Warn("change channel closed", zap.String("scope", scope.String()))
				return nil
			}

			var event ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				h.logger.Error("failed to unmarshal change event",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}

			// Invoke the callback off the receive loop so a slow
			// consumer cannot stall delivery.
			go func(ev ChangeEvent) {
				defer func() {
					if r := recover(); r != nil {
						h.logger.Error("panic in change callback", zap.Any("panic", r))
					}
				}()
				callback(ev)
			}(event)
		}
	}
}

// Close cancels all subscriptions and releases the client if owned
func (h *RedisChangeHub) Close() error {
	h.mu.Lock()
	cancelFns := h.cancelFns
	h.cancelFns = nil
	h.mu.Unlock()

	for _, cancel := range cancelFns {
		cancel()
	}

	if h.ownsClient {
		return h.client.Close()
	}
	return nil
}

var (
	_ Publisher = (*RedisChangeHub)(nil)
	_ Source    = (*RedisChangeHub)(nil)
)
