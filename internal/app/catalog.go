package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/jsamuelsen/quote-slots/internal/domain"
	"github.com/jsamuelsen/quote-slots/internal/ports"
)

// FatalLoadMessage is shown when the quote configuration cannot be loaded.
const FatalLoadMessage = "Fatal Error: Could not load quotes from the configuration file. Please check 'quotes-config.json'."

// CatalogCheckName is the catalog's health check name.
const CatalogCheckName = "quote-catalog"

var errCatalogLoading = errors.New("quote catalog not loaded yet")

// CatalogState describes where the catalog is in its one-shot load.
type CatalogState string

const (
	CatalogLoading CatalogState = "loading"
	CatalogReady   CatalogState = "ready"
	CatalogFailed  CatalogState = "failed"
)

// Catalog holds the quote configuration loaded once at startup. A failed
// load is remembered for the life of the process.
type Catalog struct {
	source ports.QuoteSource
	logger *slog.Logger

	mu     sync.RWMutex
	state  CatalogState
	config *domain.QuoteConfig
	err    error
}

// NewCatalog creates a catalog backed by source.
// Panics if source is nil.
func NewCatalog(source ports.QuoteSource, logger *slog.Logger) *Catalog {
	if source == nil {
		panic("app.NewCatalog: source is required")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Catalog{
		source: source,
		logger: logger.With(slog.String("component", "app.Catalog")),
		state:  CatalogLoading,
	}
}

// Load reads the configuration from the source. Only the first call hits the
// source; later calls return the outcome of the first.
func (c *Catalog) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != CatalogLoading {
		return c.err
	}

	cfg, err := c.source.Load(ctx)
	if err == nil && cfg == nil {
		err = errors.New("source returned no configuration")
	}

	if err != nil {
		c.logger.ErrorContext(ctx, "failed to load quote configuration",
			slog.String("source", c.source.Describe()),
			slog.Any("error", err),
		)

		c.state = CatalogFailed
		c.err = domain.NewUnavailableError("quote-config", FatalLoadMessage)

		return c.err
	}

	c.config = cfg
	c.state = CatalogReady

	c.logger.InfoContext(ctx, "quote configuration loaded",
		slog.String("source", c.source.Describe()),
		slog.Int("quotes", len(cfg.Quotes)),
		slog.Bool("pinned", cfg.PinnedText != ""),
	)

	return nil
}

// State reports the load state.
func (c *Catalog) State() CatalogState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state
}

// Err returns the load failure, if any.
func (c *Catalog) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.err
}

// Quotes returns a copy of the quotes in configuration order, or nil before
// a successful load.
func (c *Catalog) Quotes() []domain.Quote {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.config == nil {
		return nil
	}

	return append([]domain.Quote(nil), c.config.Quotes...)
}

// PinnedText returns the configured pinned quote text.
func (c *Catalog) PinnedText() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.config == nil {
		return ""
	}

	return c.config.PinnedText
}

// Name implements ports.HealthChecker.
func (c *Catalog) Name() string {
	return CatalogCheckName
}

// Check implements ports.HealthChecker. The catalog is healthy only once
// loaded.
func (c *Catalog) Check(_ context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch c.state {
	case CatalogReady:
		return nil
	case CatalogFailed:
		return c.err
	default:
		return errCatalogLoading
	}
}
