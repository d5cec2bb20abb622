// Package clients provides the instrumented HTTP client used to fetch remote
// resources such as the quote configuration.
package clients

import "errors"

// Transport-level failures. Adapters translate them to domain errors.
var (
	// ErrCircuitOpen means the breaker rejected the request without sending it.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last failure once every attempt failed.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
