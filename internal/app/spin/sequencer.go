// Package spin runs the slot machine's timed spin sequence.
//
// A spin cycles the reel quickly for TotalDuration-LandingDuration, then
// plays a fixed four-step landing that ends on the target quote. Every timer
// callback carries the generation of the session that scheduled it; a
// callback whose generation no longer matches is dropped, so a stopped or
// superseded session can never write the current quote again.
package spin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/jsamuelsen/quote-slots/internal/domain"
	"github.com/jsamuelsen/quote-slots/internal/platform/logging"
)

// Default timing values.
const (
	// DefaultTickInterval is the fast-spin refresh period.
	DefaultTickInterval = 80 * time.Millisecond

	// DefaultTotalDuration is the full length of a spin.
	DefaultTotalDuration = 5 * time.Second

	// DefaultLandingDuration is the length of the landing sequence.
	DefaultLandingDuration = 1800 * time.Millisecond
)

// ErrClosed is returned by Start after Close.
var ErrClosed = errors.New("sequencer closed")

// Phase is a sequencer state.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseFastSpin Phase = "fast_spin"
	PhaseLanding  Phase = "landing"
	// PhaseAborting covers a session whose target is missing from the reel.
	// No frames are emitted; it completes after TotalDuration.
	PhaseAborting Phase = "aborting"
)

// Frame is one update of the current quote.
type Frame struct {
	SessionID   string
	Seq         int
	Phase       Phase
	Index       int
	LandingStep int
	Quote       domain.Quote
}

// Result is delivered once when a session finishes.
type Result struct {
	SessionID string
	Target    domain.Quote
	// Aborted is set when the target was missing from the reel and the
	// visual spin was skipped.
	Aborted  bool
	Frames   int
	Duration time.Duration
}

// Config holds the sequencer timing.
type Config struct {
	TickInterval    time.Duration
	TotalDuration   time.Duration
	LandingDuration time.Duration

	// OnFrame is called for every current-quote update. It runs with the
	// sequencer lock held and must not call back into the Sequencer.
	OnFrame func(Frame)

	// Clock schedules every tick and landing step. Defaults to the real
	// clock; tests pass a clockwork.FakeClock.
	Clock clockwork.Clock

	// NewID generates session IDs. Defaults to random UUIDs.
	NewID func() string

	Logger *slog.Logger
}

// session is the state of one spin. It lives only while the spin runs.
type session struct {
	id        string
	gen       uint64
	reel      []domain.Quote
	target    domain.Quote
	targetIdx int
	startedAt time.Time
	phase     Phase
	tickIdx   int
	step      int
	frames    int
	done      func(Result)
}

// Sequencer drives at most one spin session at a time.
type Sequencer struct {
	mu      sync.Mutex
	cfg     Config
	logger  *slog.Logger
	gen     uint64
	active  *session
	timer   clockwork.Timer
	current *domain.Quote
	closed  bool
	clock   clockwork.Clock
	newID   func() string
}

// New creates a sequencer. Zero timing values fall back to the defaults.
func New(cfg Config) *Sequencer {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}

	if cfg.TotalDuration <= 0 {
		cfg.TotalDuration = DefaultTotalDuration
	}

	if cfg.LandingDuration <= 0 {
		cfg.LandingDuration = DefaultLandingDuration
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	newID := cfg.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	return &Sequencer{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "spin.Sequencer")),
		clock:  clock,
		newID:  newID,
	}
}

// FastSpinDuration is how long the reel cycles before landing begins.
func (s *Sequencer) FastSpinDuration() time.Duration {
	d := s.cfg.TotalDuration - s.cfg.LandingDuration
	if d < 0 {
		return 0
	}

	return d
}

// TotalDuration is the nominal length of a spin.
func (s *Sequencer) TotalDuration() time.Duration {
	return s.cfg.TotalDuration
}

// Start begins a spin over reel that lands on target. Any running session is
// cancelled first. onComplete is called exactly once when the new session
// finishes, unless it is cancelled by Stop, Close or another Start.
func (s *Sequencer) Start(reel []domain.Quote, target domain.Quote, onComplete func(Result)) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrClosed
	}

	if len(reel) == 0 {
		return "", domain.NewValidationError("reel", "must contain at least one quote")
	}

	s.cancelLocked()

	sess := &session{
		id:        s.newID(),
		gen:       s.gen,
		reel:      append([]domain.Quote(nil), reel...),
		target:    target,
		targetIdx: domain.IndexOf(reel, target.Text),
		startedAt: s.clock.Now(),
		done:      onComplete,
	}
	s.active = sess

	if sess.targetIdx < 0 {
		s.logger.Error("target quote not found in reel, skipping spin",
			slog.String("session_id", sess.id),
			slog.String("target", target.Text),
			slog.Int("reel_size", len(reel)),
		)
		sess.phase = PhaseAborting
		s.schedule(sess, s.cfg.TotalDuration, func() func() { return s.finishLocked(sess, true) })

		return sess.id, nil
	}

	s.logger.Debug("spin started",
		slog.String("session_id", sess.id),
		slog.Int("reel_size", len(reel)),
		slog.Int("target_index", sess.targetIdx),
	)

	sess.phase = PhaseFastSpin
	// The first tick either cycles or begins landing; both schedule a timer,
	// so nothing can complete synchronously here.
	_ = s.tickLocked(sess)

	return sess.id, nil
}

// Stop cancels the running session, if any. Once Stop returns, a session
// that was still running delivers no further frame and no completion.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
}

// Close stops the sequencer for good.
func (s *Sequencer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
	s.closed = true
}

// Current returns the quote on display, if any.
func (s *Sequencer) Current() (domain.Quote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return domain.Quote{}, false
	}

	return *s.current, true
}

// Phase returns the state of the running session, or PhaseIdle.
func (s *Sequencer) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil || s.active.phase == "" {
		return PhaseIdle
	}

	return s.active.phase
}

// Active reports whether a session is running.
func (s *Sequencer) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.active != nil
}

// cancelLocked bumps the generation and stops the pending timer.
func (s *Sequencer) cancelLocked() {
	s.gen++

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	if s.active != nil {
		s.logger.Debug("spin cancelled", slog.String("session_id", s.active.id))
		s.active = nil
	}
}

// schedule arms the single pending timer for sess. The callback is dropped
// if the session has been superseded by the time it fires. Whatever fn
// returns runs after the lock is released.
func (s *Sequencer) schedule(sess *session, d time.Duration, fn func() func()) {
	gen := sess.gen
	s.timer = s.clock.AfterFunc(d, func() {
		s.mu.Lock()

		if s.gen != gen || s.active != sess {
			s.mu.Unlock()
			return
		}

		after := fn()
		s.mu.Unlock()

		if after != nil {
			after()
		}
	})
}

func (s *Sequencer) tickLocked(sess *session) func() {
	elapsed := s.clock.Now().Sub(sess.startedAt)
	if elapsed < s.FastSpinDuration() {
		sess.tickIdx = (sess.tickIdx + 1) % len(sess.reel)
		s.emitLocked(sess, sess.tickIdx, 0)
		s.schedule(sess, s.cfg.TickInterval, func() func() { return s.tickLocked(sess) })

		return nil
	}

	sess.phase = PhaseLanding

	return s.landLocked(sess, LandingSteps(sess.targetIdx, len(sess.reel), s.cfg.LandingDuration))
}

func (s *Sequencer) landLocked(sess *session, steps []LandingStep) func() {
	if sess.step >= len(steps) {
		return s.finishLocked(sess, false)
	}

	step := steps[sess.step]
	sess.step++
	s.emitLocked(sess, step.Index, sess.step)
	s.schedule(sess, step.Delay, func() func() { return s.landLocked(sess, steps) })

	return nil
}

func (s *Sequencer) emitLocked(sess *session, index, landingStep int) {
	q := sess.reel[index]
	s.current = &q
	sess.frames++

	frame := Frame{
		SessionID:   sess.id,
		Seq:         sess.frames,
		Phase:       sess.phase,
		Index:       index,
		LandingStep: landingStep,
		Quote:       q,
	}
	s.logger.Log(context.Background(), logging.LevelTrace, "frame", slog.Any("frame", frame))

	if s.cfg.OnFrame != nil {
		s.cfg.OnFrame(frame)
	}
}

// finishLocked ends sess and returns the completion call, which the caller
// runs once the lock is released.
func (s *Sequencer) finishLocked(sess *session, aborted bool) func() {
	target := sess.target
	s.current = &target
	s.active = nil
	s.timer = nil

	res := Result{
		SessionID: sess.id,
		Target:    target,
		Aborted:   aborted,
		Frames:    sess.frames,
		Duration:  s.clock.Now().Sub(sess.startedAt),
	}

	s.logger.Debug("spin finished",
		slog.String("session_id", sess.id),
		slog.Bool("aborted", aborted),
		slog.Int("frames", sess.frames),
		slog.Duration("duration", res.Duration),
	)

	if sess.done == nil {
		return nil
	}

	return func() { sess.done(res) }
}

// String implements fmt.Stringer for log output.
func (f Frame) String() string {
	return fmt.Sprintf("%s#%d %s[%d] %q", f.SessionID, f.Seq, f.Phase, f.Index, f.Quote.Text)
}
