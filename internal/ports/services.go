// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter for calls that may block
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrUnavailable, ErrValidation, etc.)
package ports

import (
	"context"

	"github.com/jsamuelsen/quote-slots/internal/domain"
)

// QuoteSource loads the quote configuration. The catalog calls it once at
// startup; a failure is fatal for the process lifetime.
//
// Implementations:
//   - acl.FileSource reads a local JSON document
//   - acl.QuoteConfigClient fetches the same document over HTTP
type QuoteSource interface {
	// Load returns the translated configuration.
	// Returns domain.ErrUnavailable if the source cannot be read and
	// domain.ErrValidation if the document is malformed.
	Load(ctx context.Context) (*domain.QuoteConfig, error)

	// Describe names the source for logs, e.g. a path or URL.
	Describe() string
}
