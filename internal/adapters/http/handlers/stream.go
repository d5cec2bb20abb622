package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/quote-slots/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-slots/internal/app"
	"github.com/jsamuelsen/quote-slots/internal/platform/logging"
)

// Stream defaults.
const (
	DefaultStreamWriteTimeout = 5 * time.Second
	DefaultStreamPingInterval = 30 * time.Second
	streamReadLimit           = 512
)

var errStreamEnded = errors.New("stream ended by client")

// EventSource hands out live event subscriptions.
type EventSource interface {
	Subscribe() (<-chan app.Event, func())
}

// StreamConfig configures the WebSocket stream.
type StreamConfig struct {
	// WriteTimeout bounds every frame written to the client.
	WriteTimeout time.Duration

	// PingInterval is how often a ping is sent. A client that has not
	// answered within two intervals is dropped.
	PingInterval time.Duration

	// CheckOrigin decides which browser origins may connect. All origins
	// are accepted when nil.
	CheckOrigin func(r *http.Request) bool
}

// StreamHandler serves GET /api/v1/stream. Each connection gets a display
// snapshot followed by every frame, completion and audio cue event.
type StreamHandler struct {
	events   EventSource
	slots    SlotMachine
	cfg      StreamConfig
	upgrader websocket.Upgrader
}

// NewStreamHandler creates a stream handler.
// Panics if events or slots is nil.
func NewStreamHandler(events EventSource, slots SlotMachine, cfg StreamConfig) *StreamHandler {
	if events == nil || slots == nil {
		panic("handlers.NewStreamHandler: events and slots are required")
	}

	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultStreamWriteTimeout
	}

	if cfg.PingInterval <= 0 {
		cfg.PingInterval = DefaultStreamPingInterval
	}

	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}

	return &StreamHandler{
		events: events,
		slots:  slots,
		cfg:    cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Stream upgrades the connection and pumps events until either side goes
// away. Subscribing happens before the snapshot so no event is lost between
// the two.
func (h *StreamHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	logger := logging.FromContext(ctx)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// The upgrader has already written the error response.
		logger.WarnContext(ctx, "websocket upgrade failed", slog.Any("error", err))
		return
	}

	events, cancel := h.events.Subscribe()
	defer cancel()

	snapshot := dto.StreamSnapshot{
		Type:    dto.StreamSnapshotType,
		Display: dto.NewDisplayResponse(h.slots.Display()),
	}

	if err := h.write(conn, snapshot); err != nil {
		logger.WarnContext(ctx, "failed to send stream snapshot", slog.Any("error", err))
		_ = conn.Close()

		return
	}

	logger.DebugContext(ctx, "stream connected")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer conn.Close()
		return h.writeLoop(gctx, conn, events)
	})

	g.Go(func() error {
		return h.readLoop(conn)
	})

	err = g.Wait()

	switch {
	case err == nil, errors.Is(err, errStreamEnded):
		logger.DebugContext(ctx, "stream closed")
	default:
		logger.WarnContext(ctx, "stream closed with error", slog.Any("error", err))
	}
}

func (h *StreamHandler) writeLoop(ctx context.Context, conn *websocket.Conn, events <-chan app.Event) error {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeFrame(conn, websocket.CloseNormalClosure, "")
			return nil

		case e, ok := <-events:
			if !ok {
				h.closeFrame(conn, websocket.CloseGoingAway, "shutting down")
				return nil
			}

			if err := h.write(conn, dto.NewStreamEvent(e)); err != nil {
				return fmt.Errorf("writing %s event: %w", e.Type, err)
			}

		case <-ticker.C:
			deadline := time.Now().Add(h.cfg.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return fmt.Errorf("writing ping: %w", err)
			}
		}
	}
}

// readLoop discards client messages. It exists to process control frames
// and to notice when the client disconnects.
func (h *StreamHandler) readLoop(conn *websocket.Conn) error {
	wait := 2 * h.cfg.PingInterval

	conn.SetReadLimit(streamReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return fmt.Errorf("%w: %w", errStreamEnded, err)
		}
	}
}

func (h *StreamHandler) write(conn *websocket.Conn, v any) error {
	if err := conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout)); err != nil {
		return err
	}

	return conn.WriteJSON(v)
}

func (h *StreamHandler) closeFrame(conn *websocket.Conn, code int, text string) {
	deadline := time.Now().Add(h.cfg.WriteTimeout)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), deadline)
}

// RegisterRoutes registers the stream route on rg. Do not put rg behind a
// request timeout.
func (h *StreamHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stream", h.Stream)
}
