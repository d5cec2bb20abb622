package ports

import "context"

// Track identifies one of the owned audio resources.
type Track string

const (
	// TrackBackground is the looping background music.
	TrackBackground Track = "background"

	// TrackSpin is the looping sound played while the reel spins.
	TrackSpin Track = "spin"

	// TrackWin is the one-shot sound played when a spin lands.
	TrackWin Track = "win"
)

// CueAction is what the browser should do with a track.
type CueAction string

const (
	CuePlay    CueAction = "play"
	CuePause   CueAction = "pause"
	CueRewind  CueAction = "rewind"
	CueRelease CueAction = "release"
)

// AudioCue is a playback instruction. The server owns track state; clients
// only follow cues.
type AudioCue struct {
	Track  Track     `json:"track"`
	Action CueAction `json:"action"`
	URL    string    `json:"url,omitempty"`
	Loop   bool      `json:"loop"`
	Volume float64   `json:"volume"`
}

// CueSink receives cues emitted by an AudioDeck.
type CueSink interface {
	PublishCue(cue AudioCue)
}

// TrackState is a snapshot of one track.
type TrackState struct {
	Track   Track   `json:"track"`
	URL     string  `json:"url,omitempty"`
	Loop    bool    `json:"loop"`
	Volume  float64 `json:"volume"`
	Playing bool    `json:"playing"`
}

// AudioDeck owns the background, spin and win tracks from construction
// until Close.
type AudioDeck interface {
	// Play starts a track. Returns an error if the track has no source or
	// the deck is closed.
	Play(ctx context.Context, track Track) error

	// Pause stops a track without resetting it.
	Pause(track Track) error

	// Rewind resets a track to its start.
	Rewind(track Track) error

	// State returns a snapshot of every track.
	State() []TrackState

	// Close releases all tracks. Further calls fail.
	Close() error
}
