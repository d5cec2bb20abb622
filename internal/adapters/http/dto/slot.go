package dto

import (
	"time"

	"github.com/jsamuelsen/quote-slots/internal/app"
	"github.com/jsamuelsen/quote-slots/internal/domain"
	"github.com/jsamuelsen/quote-slots/internal/ports"
)

// QuoteResponse is a quote on the wire. Field names follow the quote
// configuration document.
type QuoteResponse struct {
	Text     string `json:"text"`
	Author   string `json:"author"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// NewQuoteResponse converts a domain quote.
func NewQuoteResponse(q domain.Quote) QuoteResponse {
	return QuoteResponse{Text: q.Text, Author: q.Author, ImageURL: q.ImageURL}
}

// NewQuoteResponses converts a collection, keeping order.
func NewQuoteResponses(quotes []domain.Quote) []QuoteResponse {
	out := make([]QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, NewQuoteResponse(q))
	}

	return out
}

// QuotesResponse is the body of GET /api/v1/quotes.
type QuotesResponse struct {
	Quotes []QuoteResponse `json:"quotes"`
	Count  int             `json:"count"`
}

// SpinResponse is the body of POST /api/v1/spins.
type SpinResponse struct {
	SessionID  string          `json:"sessionId"`
	Reel       []QuoteResponse `json:"reel"`
	FinalQuote QuoteResponse   `json:"finalQuote"`
	DurationMS int64           `json:"durationMs"`
}

// NewSpinResponse converts a ticket.
func NewSpinResponse(t *app.SpinTicket) SpinResponse {
	return SpinResponse{
		SessionID:  t.SessionID,
		Reel:       NewQuoteResponses(t.Reel),
		FinalQuote: NewQuoteResponse(t.FinalQuote),
		DurationMS: t.Duration.Milliseconds(),
	}
}

// DisplayResponse is the body of GET /api/v1/display and the first message
// of the event stream.
type DisplayResponse struct {
	Quote       *QuoteResponse `json:"quote"`
	Placeholder string         `json:"placeholder"`
	ImageURL    string         `json:"imageUrl,omitempty"`
	IsFinal     bool           `json:"isFinal"`
	Overlay     bool           `json:"overlay"`
	Spinning    bool           `json:"spinning"`
	Phase       string         `json:"phase"`
	SessionID   string         `json:"sessionId,omitempty"`
	ActionLabel string         `json:"actionLabel"`
	CanSpin     bool           `json:"canSpin"`
	Muted       bool           `json:"muted"`
	Error       string         `json:"error,omitempty"`
}

// NewDisplayResponse converts a display snapshot.
func NewDisplayResponse(d app.Display) DisplayResponse {
	resp := DisplayResponse{
		Placeholder: d.Placeholder,
		ImageURL:    d.ImageURL,
		IsFinal:     d.IsFinal,
		Overlay:     d.Overlay,
		Spinning:    d.Spinning,
		Phase:       string(d.Phase),
		SessionID:   d.SessionID,
		ActionLabel: d.ActionLabel,
		CanSpin:     d.CanSpin,
		Muted:       d.Muted,
		Error:       d.Error,
	}

	if d.Quote != nil {
		q := NewQuoteResponse(*d.Quote)
		resp.Quote = &q
	}

	return resp
}

// MuteRequest is the body of PUT /api/v1/audio/mute.
type MuteRequest struct {
	Muted *bool `json:"muted" validate:"required"`
}

// AudioResponse reports the mute state and every track.
type AudioResponse struct {
	Muted  bool               `json:"muted"`
	Tracks []ports.TrackState `json:"tracks"`
}

// StreamSnapshot is sent once when a stream connects.
type StreamSnapshot struct {
	Type    string          `json:"type"`
	Display DisplayResponse `json:"display"`
}

// StreamSnapshotType is the type of StreamSnapshot messages.
const StreamSnapshotType = "snapshot"

// StreamEvent is a frame, completion or audio cue event on the stream.
type StreamEvent struct {
	Type        string          `json:"type"`
	SessionID   string          `json:"sessionId,omitempty"`
	Seq         int             `json:"seq,omitempty"`
	Phase       string          `json:"phase,omitempty"`
	LandingStep int             `json:"landingStep,omitempty"`
	Quote       *QuoteResponse  `json:"quote,omitempty"`
	Aborted     bool            `json:"aborted,omitempty"`
	Cue         *ports.AudioCue `json:"cue,omitempty"`
	At          time.Time       `json:"at"`
}

// NewStreamEvent converts a hub event.
func NewStreamEvent(e app.Event) StreamEvent {
	out := StreamEvent{
		Type:        string(e.Type),
		SessionID:   e.SessionID,
		Seq:         e.Seq,
		Phase:       e.Phase,
		LandingStep: e.LandingStep,
		Aborted:     e.Aborted,
		Cue:         e.Cue,
		At:          e.At,
	}

	if e.Quote != nil {
		q := NewQuoteResponse(*e.Quote)
		out.Quote = &q
	}

	return out
}
