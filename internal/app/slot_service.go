package app

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jsamuelsen/quote-slots/internal/app/spin"
	"github.com/jsamuelsen/quote-slots/internal/domain"
	"github.com/jsamuelsen/quote-slots/internal/platform/logging"
	"github.com/jsamuelsen/quote-slots/internal/platform/metrics"
	"github.com/jsamuelsen/quote-slots/internal/platform/telemetry"
	"github.com/jsamuelsen/quote-slots/internal/ports"
)

// Action labels and the empty-slot placeholder. LabelPick reads "today's
// pick is..." and doubles as the placeholder.
const (
	LabelLoading = "Loading Quotes..."
	LabelSpin    = "GOGOGO!!!"
	LabelPick    = "今天要分享的是..."

	Placeholder = LabelPick
)

// SpinTicket describes a spin that has just started.
type SpinTicket struct {
	SessionID  string
	Reel       []domain.Quote
	FinalQuote domain.Quote
	Duration   time.Duration
}

// Display is everything a client needs to render the machine.
type Display struct {
	// Quote is the single quote in the display slot, nil when the slot is
	// empty and Placeholder should be shown.
	Quote       *domain.Quote
	Placeholder string
	ImageURL    string
	// IsFinal is set when the slot shows a settled result.
	IsFinal bool
	// Overlay is set when the top and bottom gradients should be shown.
	Overlay     bool
	Spinning    bool
	Phase       spin.Phase
	SessionID   string
	ActionLabel string
	CanSpin     bool
	Muted       bool
	Error       string
}

// SlotServiceConfig holds the slot service dependencies.
type SlotServiceConfig struct {
	Catalog *Catalog
	Deck    ports.AudioDeck

	// Hub receives frame, completion and audio events. A private hub is
	// created when nil.
	Hub     *EventHub
	Metrics *metrics.Metrics

	// Spin carries the sequencer timing and clock. OnFrame and Logger are
	// set by the service.
	Spin spin.Config

	// Rand drives selection and reel shuffling. Defaults to a randomly
	// seeded PCG source.
	Rand domain.Rand

	StartMuted bool
	Logger     *slog.Logger
}

// SlotService runs the slot machine for a single display. Only one spin can
// run at a time.
type SlotService struct {
	catalog *Catalog
	deck    ports.AudioDeck
	hub     *EventHub
	metrics *metrics.Metrics
	seq     *spin.Sequencer
	logger  *slog.Logger

	mu        sync.Mutex
	rng       domain.Rand
	spinning  bool
	sessionID string
	final     *domain.Quote
	muted     bool
	lastError string
	closed    bool
}

// NewSlotService creates the service.
// Panics if Catalog or Deck is nil.
func NewSlotService(cfg SlotServiceConfig) *SlotService {
	if cfg.Catalog == nil {
		panic("app.NewSlotService: Catalog is required")
	}

	if cfg.Deck == nil {
		panic("app.NewSlotService: Deck is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	hub := cfg.Hub
	if hub == nil {
		hub = NewEventHub(DefaultEventBuffer, cfg.Metrics, logger)
	}

	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	s := &SlotService{
		catalog: cfg.Catalog,
		deck:    cfg.Deck,
		hub:     hub,
		metrics: cfg.Metrics,
		logger:  logger.With(slog.String("component", "app.SlotService")),
		rng:     rng,
		muted:   cfg.StartMuted,
	}

	spinCfg := cfg.Spin
	spinCfg.OnFrame = s.onFrame
	spinCfg.Logger = logger
	s.seq = spin.New(spinCfg)

	return s
}

// Hub returns the event hub the service publishes to.
func (s *SlotService) Hub() *EventHub {
	return s.hub
}

// Quotes returns the catalog's quotes in configuration order.
func (s *SlotService) Quotes() ([]domain.Quote, error) {
	if err := s.catalog.Check(context.Background()); err != nil {
		return nil, s.catalogError()
	}

	return s.catalog.Quotes(), nil
}

// Spin selects the next final quote and starts the spin sequence.
//
// Errors:
//   - domain.ErrUnavailable when the catalog failed to load or is loading
//   - domain.ErrConflict when a spin is already running
//   - domain.ErrValidation when fewer than two quotes are configured
func (s *SlotService) Spin(ctx context.Context) (_ *SpinTicket, err error) {
	ctx, span := telemetry.Tracer().Start(ctx, "SlotService.Spin")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		span.End()
	}()

	logger := logging.FromContext(ctx).With(slog.String("component", "app.SlotService"))

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, domain.NewUnavailableError("slot-machine", "shutting down")
	}

	if s.catalog.State() != CatalogReady {
		s.countSpin(metrics.ResultRejected)
		return nil, s.catalogError()
	}

	if s.spinning {
		s.countSpin(metrics.ResultRejected)
		return nil, domain.NewConflictError("spin", "a spin is already running")
	}

	s.lastError = ""

	quotes := s.catalog.Quotes()
	if len(quotes) < domain.MinQuotesForSpin {
		s.lastError = domain.ErrInsufficientQuotes.Message
		s.countSpin(metrics.ResultRejected)

		logger.WarnContext(ctx, "spin rejected", slog.Int("quotes", len(quotes)))

		return nil, domain.ErrInsufficientQuotes
	}

	final, err := domain.SelectNext(quotes, s.catalog.PinnedText(), s.final, s.rng)
	if err != nil {
		return nil, err
	}

	reel := domain.Shuffle(quotes, s.rng)

	s.final = &final
	s.spinning = true
	s.playCue(ctx, ports.TrackSpin)

	id, err := s.seq.Start(reel, final, s.onSpinEnd)
	if err != nil {
		s.spinning = false
		s.stopSpinTrack()

		return nil, err
	}

	s.sessionID = id

	span.SetAttributes(
		attribute.String("spin.session_id", id),
		attribute.Int("spin.reel_size", len(reel)),
		attribute.String("spin.final_quote", final.Text),
	)

	logger.InfoContext(ctx, "spin started",
		slog.String(logging.KeySessionID, id),
		slog.Int("reel_size", len(reel)),
		slog.Bool("pinned", final.Text == s.catalog.PinnedText()),
	)

	return &SpinTicket{
		SessionID:  id,
		Reel:       reel,
		FinalQuote: final,
		Duration:   s.seq.TotalDuration(),
	}, nil
}

// onFrame runs under the sequencer lock and must not touch s.mu.
func (s *SlotService) onFrame(f spin.Frame) {
	if s.metrics != nil {
		s.metrics.FramesTotal.WithLabelValues(string(f.Phase)).Inc()
	}

	q := f.Quote
	s.hub.Publish(Event{
		Type:        EventFrame,
		SessionID:   f.SessionID,
		Seq:         f.Seq,
		Phase:       string(f.Phase),
		LandingStep: f.LandingStep,
		Quote:       &q,
	})
}

func (s *SlotService) onSpinEnd(res spin.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || res.SessionID != s.sessionID {
		return
	}

	s.spinning = false
	s.stopSpinTrack()

	if s.final != nil {
		s.playCue(context.Background(), ports.TrackWin)
	}

	result := metrics.ResultLanded
	if res.Aborted {
		result = metrics.ResultAborted
	}

	s.countSpin(result)

	if s.metrics != nil {
		s.metrics.SpinDuration.Observe(res.Duration.Seconds())
	}

	target := res.Target
	s.hub.Publish(Event{
		Type:      EventComplete,
		SessionID: res.SessionID,
		Seq:       res.Frames,
		Quote:     &target,
		Aborted:   res.Aborted,
	})

	s.logger.Info("spin finished",
		slog.String(logging.KeySessionID, res.SessionID),
		slog.String("quote", target.Text),
		slog.Bool("aborted", res.Aborted),
		slog.Duration("duration", res.Duration),
	)
}

// Display returns the presentation state. While spinning the slot shows the
// sequencer's current frame, otherwise the final quote.
func (s *SlotService) Display() Display {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := Display{
		Placeholder: Placeholder,
		Spinning:    s.spinning,
		Phase:       s.seq.Phase(),
		Muted:       s.muted,
		Error:       s.lastError,
	}

	if s.spinning {
		d.SessionID = s.sessionID
		if q, ok := s.seq.Current(); ok {
			d.Quote = &q
		}
	} else if s.final != nil {
		q := *s.final
		d.Quote = &q
		d.IsFinal = true
	}

	if d.Quote != nil {
		d.ImageURL = d.Quote.ImageURL
	}

	d.Overlay = d.Spinning || d.ImageURL == ""

	state := s.catalog.State()
	if state == CatalogFailed {
		d.Error = domain.UserMessage(s.catalog.Err())
	}

	switch {
	case state == CatalogLoading:
		d.ActionLabel = LabelLoading
	case s.spinning || s.final != nil:
		d.ActionLabel = LabelPick
	default:
		d.ActionLabel = LabelSpin
	}

	d.CanSpin = state == CatalogReady && !s.spinning && d.Error == "" && !s.closed

	return d
}

// SetMuted pauses the background music when muted and plays it otherwise.
func (s *SlotService) SetMuted(ctx context.Context, muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.muted = muted
	s.applyMute(ctx)
}

// Muted reports the mute state.
func (s *SlotService) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.muted
}

// Start applies the initial mute state to the background track.
func (s *SlotService) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.applyMute(ctx)
}

func (s *SlotService) applyMute(ctx context.Context) {
	if s.muted {
		if err := s.deck.Pause(ports.TrackBackground); err != nil {
			s.mediaFailure(ctx, ports.TrackBackground, err)
		}

		return
	}

	s.playCue(ctx, ports.TrackBackground)
}

// Audio returns the deck's track states.
func (s *SlotService) Audio() []ports.TrackState {
	return s.deck.State()
}

// Close stops any running spin, then releases the audio tracks and closes
// the event stream.
func (s *SlotService) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}

	s.closed = true
	s.spinning = false
	s.mu.Unlock()

	s.seq.Close()
	err := s.deck.Close()
	s.hub.Close()

	return err
}

func (s *SlotService) playCue(ctx context.Context, track ports.Track) {
	if err := s.deck.Play(ctx, track); err != nil {
		s.mediaFailure(ctx, track, err)
	}
}

func (s *SlotService) stopSpinTrack() {
	if err := s.deck.Pause(ports.TrackSpin); err != nil {
		s.mediaFailure(context.Background(), ports.TrackSpin, err)
		return
	}

	if err := s.deck.Rewind(ports.TrackSpin); err != nil {
		s.mediaFailure(context.Background(), ports.TrackSpin, err)
	}
}

func (s *SlotService) mediaFailure(ctx context.Context, track ports.Track, err error) {
	if s.metrics != nil {
		s.metrics.MediaFailures.WithLabelValues(string(track)).Inc()
	}

	s.logger.WarnContext(ctx, "audio cue failed",
		slog.String("track", string(track)),
		slog.Any("error", err),
	)
}

func (s *SlotService) countSpin(result string) {
	if s.metrics != nil {
		s.metrics.SpinsTotal.WithLabelValues(result).Inc()
	}
}

func (s *SlotService) catalogError() error {
	if err := s.catalog.Err(); err != nil {
		return err
	}

	return domain.NewUnavailableError("quote-catalog", LabelLoading)
}
