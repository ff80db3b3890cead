package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rentdesk/backend/internal/application/financial"
	"github.com/rentdesk/backend/internal/domain/finance"
	"github.com/rentdesk/backend/internal/infrastructure/realtime"
	"github.com/rentdesk/backend/internal/interfaces/http/middleware"
)

// SSEMessage represents a message sent to a stream client
type SSEMessage struct {
	Event string
	Data  string
	ID    string
}

// StatsStreamHandler streams live KPI snapshots over Server-Sent
// Events. Each connection runs its own change listener bound to the
// caller's scope; a write anywhere in the scope pushes a recomputed
// current-month snapshot down the stream.
type StatsStreamHandler struct {
	BaseHandler
	source     realtime.Source
	dispatcher *financial.InvalidationDispatcher
	stats      *financial.StatsService
	logger     *zap.Logger
	heartbeat  time.Duration
	maxClients int32
	clients    atomic.Int32
}

// StatsStreamOption configures a StatsStreamHandler
type StatsStreamOption func(*StatsStreamHandler)

// WithStreamHeartbeat sets the heartbeat interval
func WithStreamHeartbeat(interval time.Duration) StatsStreamOption {
	return func(h *StatsStreamHandler) {
		h.heartbeat = interval
	}
}

// WithStreamMaxClients caps the number of concurrent stream clients
func WithStreamMaxClients(max int32) StatsStreamOption {
	return func(h *StatsStreamHandler) {
		h.maxClients = max
	}
}

// NewStatsStreamHandler creates a new StatsStreamHandler
func NewStatsStreamHandler(
	source realtime.Source,
	dispatcher *financial.InvalidationDispatcher,
	stats *financial.StatsService,
	logger *zap.Logger,
	opts ...StatsStreamOption,
) *StatsStreamHandler {
	h := &StatsStreamHandler{
		source:     source,
		dispatcher: dispatcher,
		stats:      stats,
		logger:     logger,
		heartbeat:  30 * time.Second,
		maxClients: 1000,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Stream establishes the SSE connection for the caller's scope
func (h *StatsStreamHandler) Stream(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if h.maxClients > 0 && h.clients.Load() >= h.maxClients {
		h.Error(c, http.StatusServiceUnavailable, "MAX_CONNECTIONS_REACHED",
			"Maximum number of stream connections reached")
		return
	}
	h.clients.Add(1)
	defer h.clients.Add(-1)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	// Snapshot pushes queue here; a slow client drops updates rather
	// than blocking the listener.
	updates := make(chan finance.KPISnapshot, 16)
	listener := financial.NewListener(h.source, h.dispatcher, h.stats, scope,
		func(ctx context.Context, snapshot finance.KPISnapshot) {
			select {
			case updates <- snapshot:
			default:
				h.logger.Warn("stream client slow, dropping snapshot",
					zap.String("scope", scope.String()))
			}
		},
		h.logger,
	)

	reqCtx := c.Request.Context()
	if err := listener.Start(reqCtx); err != nil {
		h.InternalError(c, "stream already active")
		return
	}
	defer listener.Stop()

	requestID := middleware.GetRequestID(c)
	h.logger.Info("stats stream connected",
		zap.String("scope", scope.String()),
		zap.String("request_id", requestID))
	defer h.logger.Info("stats stream disconnected",
		zap.String("scope", scope.String()),
		zap.String("request_id", requestID))

	h.sendEvent(c.Writer, SSEMessage{
		Event: "connected",
		Data:  fmt.Sprintf(`{"scope":%q,"timestamp":%d}`, scope.String(), time.Now().Unix()),
	})
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-reqCtx.Done():
			return
		case <-ticker.C:
			h.sendEvent(c.Writer, SSEMessage{
				Event: "heartbeat",
				Data:  fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()),
			})
			c.Writer.Flush()
		case snapshot := <-updates:
			data, err := json.Marshal(snapshot)
			if err != nil {
				h.logger.Error("failed to marshal snapshot", zap.Error(err))
				continue
			}
			h.sendEvent(c.Writer, SSEMessage{
				Event: "stats_updated",
				Data:  string(data),
				ID:    fmt.Sprintf("%d", time.Now().UnixNano()),
			})
			c.Writer.Flush()
		}
	}
}

// ClientCount returns the number of connected stream clients
func (h *StatsStreamHandler) ClientCount() int {
	return int(h.clients.Load())
}

func (h *StatsStreamHandler) sendEvent(w io.Writer, msg SSEMessage) {
	if msg.Event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.Event)
	}
	if msg.ID != "" {
		fmt.Fprintf(w, "id: %s\n", msg.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.Data)
}
