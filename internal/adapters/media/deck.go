// Package media owns the audio tracks of the slot machine.
//
// Playback happens in the browser. The Deck keeps the authoritative state of
// each track and turns every change into a ports.AudioCue that is published
// to connected clients.
package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jsamuelsen/quote-slots/internal/ports"
)

// DefaultBackgroundVolume is the background music volume.
const DefaultBackgroundVolume = 0.3

var (
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("audio deck closed")

	// ErrNoSource is returned when a track has no URL.
	ErrNoSource = errors.New("track has no source")

	// ErrUnknownTrack is returned for a track the deck does not own.
	ErrUnknownTrack = errors.New("unknown track")
)

// Config holds the track sources.
type Config struct {
	BackgroundURL    string
	SpinURL          string
	WinURL           string
	BackgroundVolume float64

	// Sink receives every cue. May be nil.
	Sink   ports.CueSink
	Logger *slog.Logger
}

type track struct {
	url     string
	loop    bool
	volume  float64
	playing bool
}

// Deck implements ports.AudioDeck.
type Deck struct {
	mu     sync.Mutex
	tracks map[ports.Track]*track
	sink   ports.CueSink
	closed bool
	logger *slog.Logger
}

var _ ports.AudioDeck = (*Deck)(nil)

// order is the State and Close iteration order.
var order = []ports.Track{ports.TrackBackground, ports.TrackSpin, ports.TrackWin}

// NewDeck acquires the three tracks.
func NewDeck(cfg Config) *Deck {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	volume := cfg.BackgroundVolume
	if volume <= 0 || volume > 1 {
		volume = DefaultBackgroundVolume
	}

	d := &Deck{
		tracks: map[ports.Track]*track{
			ports.TrackBackground: {url: cfg.BackgroundURL, loop: true, volume: volume},
			ports.TrackSpin:       {url: cfg.SpinURL, loop: true, volume: 1},
			ports.TrackWin:        {url: cfg.WinURL, volume: 1},
		},
		sink:   cfg.Sink,
		logger: logger.With(slog.String("component", "media.Deck")),
	}

	d.logger.Debug("audio tracks acquired",
		slog.String("background", cfg.BackgroundURL),
		slog.String("spin", cfg.SpinURL),
		slog.String("win", cfg.WinURL),
	)

	return d
}

// Play starts a track from its current position.
func (d *Deck) Play(ctx context.Context, name ports.Track) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	t, err := d.lookupLocked(name)
	if err != nil {
		return err
	}

	if t.url == "" {
		return fmt.Errorf("play %s: %w", name, ErrNoSource)
	}

	t.playing = true
	d.emitLocked(name, t, ports.CuePlay)

	return nil
}

// Pause stops a track in place. Pausing a stopped track is a no-op.
func (d *Deck) Pause(name ports.Track) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, err := d.lookupLocked(name)
	if err != nil {
		return err
	}

	if !t.playing {
		return nil
	}

	t.playing = false
	d.emitLocked(name, t, ports.CuePause)

	return nil
}

// Rewind resets a track to its start.
func (d *Deck) Rewind(name ports.Track) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, err := d.lookupLocked(name)
	if err != nil {
		return err
	}

	d.emitLocked(name, t, ports.CueRewind)

	return nil
}

// State returns the tracks in background, spin, win order.
func (d *Deck) State() []ports.TrackState {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]ports.TrackState, 0, len(order))
	for _, name := range order {
		t := d.tracks[name]
		out = append(out, ports.TrackState{
			Track:   name,
			URL:     t.url,
			Loop:    t.loop,
			Volume:  t.volume,
			Playing: t.playing && !d.closed,
		})
	}

	return out
}

// Close releases every track. Safe to call more than once.
func (d *Deck) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}

	for _, name := range order {
		t := d.tracks[name]
		t.playing = false
		d.emitLocked(name, t, ports.CueRelease)
	}

	d.closed = true
	d.logger.Debug("audio tracks released")

	return nil
}

func (d *Deck) lookupLocked(name ports.Track) (*track, error) {
	if d.closed {
		return nil, ErrClosed
	}

	t, ok := d.tracks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTrack, name)
	}

	return t, nil
}

func (d *Deck) emitLocked(name ports.Track, t *track, action ports.CueAction) {
	if d.sink == nil {
		return
	}

	d.sink.PublishCue(ports.AudioCue{
		Track:  name,
		Action: action,
		URL:    t.url,
		Loop:   t.loop,
		Volume: t.volume,
	})
}
