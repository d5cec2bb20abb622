package clients

import (
	"fmt"

	"github.com/sony/gobreaker"

	"github.com/jsamuelsen/quote-slots/internal/platform/config"
)

// State is a circuit breaker state.
type State = gobreaker.State

// Breaker states, re-exported so callers need not import gobreaker.
const (
	StateClosed   = gobreaker.StateClosed
	StateHalfOpen = gobreaker.StateHalfOpen
	StateOpen     = gobreaker.StateOpen
)

// CircuitBreaker guards a downstream.
//
//   - closed to open after MaxFailures consecutive failures
//   - open to half-open once Timeout has passed
//   - half-open to closed after HalfOpenLimit consecutive successes
//   - half-open to open on any failure
type CircuitBreaker struct {
	breaker *gobreaker.TwoStepCircuitBreaker
}

// NewCircuitBreaker creates a closed breaker named after the downstream.
// Non-positive limits fall back to one. onChange, when set, runs on every
// transition while the breaker holds its lock, so it must not call back
// into the breaker.
func NewCircuitBreaker(name string, cfg config.CircuitBreakerConfig, onChange func(from, to State)) *CircuitBreaker {
	maxFailures := max(cfg.MaxFailures, 1)
	halfOpen := max(cfg.HalfOpenLimit, 1)

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: uint32(halfOpen),
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(maxFailures)
		},
	}

	if onChange != nil {
		settings.OnStateChange = func(_ string, from, to gobreaker.State) {
			onChange(from, to)
		}
	}

	return &CircuitBreaker{breaker: gobreaker.NewTwoStepCircuitBreaker(settings)}
}

// Allow reports whether a request may proceed. On success the returned
// done func must be called exactly once with the request outcome. A
// rejection wraps ErrCircuitOpen.
func (cb *CircuitBreaker) Allow() (done func(success bool), err error) {
	done, err = cb.breaker.Allow()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCircuitOpen, err)
	}

	return done, nil
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	return cb.breaker.State()
}

// Counts returns the request counters of the current generation.
func (cb *CircuitBreaker) Counts() gobreaker.Counts {
	return cb.breaker.Counts()
}
