package app

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jsamuelsen/quote-slots/internal/domain"
	"github.com/jsamuelsen/quote-slots/internal/platform/metrics"
	"github.com/jsamuelsen/quote-slots/internal/ports"
)

// DefaultEventBuffer is the per-subscriber channel size.
const DefaultEventBuffer = 64

// EventType distinguishes stream events.
type EventType string

const (
	EventFrame    EventType = "frame"
	EventComplete EventType = "complete"
	EventAudio    EventType = "audio"
)

// Event is one message on the live stream. dto.NewStreamEvent renders it
// for the wire.
type Event struct {
	Type        EventType
	SessionID   string
	Seq         int
	Phase       string
	LandingStep int
	Quote       *domain.Quote
	Aborted     bool
	Cue         *ports.AudioCue
	At          time.Time
}

// EventHub fans events out to subscribers. Publish never blocks: a
// subscriber whose buffer is full misses the event.
type EventHub struct {
	mu      sync.RWMutex
	subs    map[uint64]chan Event
	next    uint64
	buffer  int
	closed  bool
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewEventHub creates a hub. m may be nil.
func NewEventHub(buffer int, m *metrics.Metrics, logger *slog.Logger) *EventHub {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &EventHub{
		subs:    make(map[uint64]chan Event),
		buffer:  buffer,
		logger:  logger.With(slog.String("component", "app.EventHub")),
		metrics: m,
		now:     time.Now,
	}
}

// Subscribe returns a channel of events and a func that unsubscribes and
// closes the channel. After Close the channel is returned already closed.
func (h *EventHub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.next
	h.next++
	h.subs[id] = ch
	h.setGauge()

	var once sync.Once

	return ch, func() {
		once.Do(func() { h.unsubscribe(id) })
	}
}

func (h *EventHub) unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch, ok := h.subs[id]
	if !ok {
		return
	}

	delete(h.subs, id)
	close(ch)
	h.setGauge()
}

// Publish delivers e to every subscriber with room in its buffer.
func (h *EventHub) Publish(e Event) {
	if e.At.IsZero() {
		e.At = h.now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subs {
		select {
		case ch <- e:
		default:
			if h.metrics != nil {
				h.metrics.StreamDropped.Inc()
			}

			h.logger.Debug("dropped event for slow subscriber",
				slog.Uint64("subscriber", id),
				slog.String("type", string(e.Type)),
			)
		}
	}
}

// PublishCue implements ports.CueSink.
func (h *EventHub) PublishCue(cue ports.AudioCue) {
	h.Publish(Event{Type: EventAudio, Cue: &cue})
}

// Subscribers returns the number of live subscribers.
func (h *EventHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subs)
}

// Close closes every subscriber channel. Later subscribers get a closed
// channel.
func (h *EventHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	h.closed = true

	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}

	h.setGauge()
}

func (h *EventHub) setGauge() {
	if h.metrics != nil {
		h.metrics.StreamSubscribers.Set(float64(len(h.subs)))
	}
}
