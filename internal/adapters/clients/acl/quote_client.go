package acl

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen/quote-slots/internal/adapters/clients"
	"github.com/jsamuelsen/quote-slots/internal/domain"
	"github.com/jsamuelsen/quote-slots/internal/platform/logging"
	"github.com/jsamuelsen/quote-slots/internal/ports"
)

// QuoteConfigServiceName names the remote configuration in errors and
// health checks.
const QuoteConfigServiceName = "quote-config"

// QuoteConfigClientConfig configures a QuoteConfigClient.
type QuoteConfigClientConfig struct {
	// Client's BaseURL is the configuration document URL.
	Client *clients.Client
	Logger *slog.Logger
}

// QuoteConfigClient loads the quote configuration over HTTP.
type QuoteConfigClient struct {
	BaseAdapter

	client *clients.Client
	logger *slog.Logger
}

var (
	_ ports.QuoteSource   = (*QuoteConfigClient)(nil)
	_ ports.HealthChecker = (*QuoteConfigClient)(nil)
)

// NewQuoteConfigClient creates the client.
// Panics if Client is nil. Defaults logger to slog.Default() if nil.
func NewQuoteConfigClient(cfg QuoteConfigClientConfig) *QuoteConfigClient {
	if cfg.Client == nil {
		panic("QuoteConfigClient: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteConfigClient{
		BaseAdapter: NewBaseAdapter(cfg.Client, QuoteConfigServiceName),
		client:      cfg.Client,
		logger:      logger.With(slog.String("component", "acl.QuoteConfigClient")),
	}
}

// Load fetches and translates the configuration document.
func (c *QuoteConfigClient) Load(ctx context.Context) (*domain.QuoteConfig, error) {
	c.logger.Log(ctx, logging.LevelTrace, "fetching quote configuration")

	body, err := c.Get(ctx, "", "load quote configuration")
	if err != nil {
		return nil, err
	}

	cfg, err := decodeConfig(ctx, body, c.logger)
	if err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "quote configuration fetched", slog.Int("quotes", len(cfg.Quotes)))

	return cfg, nil
}

// Describe returns the configuration URL.
func (c *QuoteConfigClient) Describe() string {
	return c.client.BaseURL()
}

// Name implements ports.HealthChecker.
func (c *QuoteConfigClient) Name() string {
	return QuoteConfigServiceName
}

// Check reports whether the configuration URL answers with a 2xx.
func (c *QuoteConfigClient) Check(ctx context.Context) error {
	resp, err := c.client.Get(ctx, "")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("quote configuration returned status %d", resp.StatusCode)
	}

	return nil
}
