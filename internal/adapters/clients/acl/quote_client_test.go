package acl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-slots/internal/adapters/clients"
	"github.com/jsamuelsen/quote-slots/internal/domain"
	"github.com/jsamuelsen/quote-slots/internal/platform/config"
)

const sampleDocument = `{"quotes":[{"text":"A","author":"Ann"},{"text":"B","author":"Bob"}]}`

func setupQuoteConfigClient(t *testing.T, handler http.HandlerFunc) *QuoteConfigClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := clients.New(&clients.Config{
		ServiceName: QuoteConfigServiceName,
		BaseURL:     server.URL + "/quotes-config.json",
		Timeout:     2 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     1,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   10,
			Timeout:       30 * time.Second,
			HalfOpenLimit: 1,
		},
	})
	require.NoError(t, err)

	return NewQuoteConfigClient(QuoteConfigClientConfig{Client: client, Logger: discardLogger()})
}

func TestNewQuoteConfigClient_PanicsWithoutClient(t *testing.T) {
	assert.Panics(t, func() {
		NewQuoteConfigClient(QuoteConfigClientConfig{})
	})
}

func TestQuoteConfigClient_Load(t *testing.T) {
	var path string

	c := setupQuoteConfigClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleDocument))
	})

	cfg, err := c.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "/quotes-config.json", path)
	assert.Equal(t, []domain.Quote{{Text: "A", Author: "Ann"}, {Text: "B", Author: "Bob"}}, cfg.Quotes)
	assert.Contains(t, c.Describe(), "/quotes-config.json")
	assert.Equal(t, QuoteConfigServiceName, c.Name())
}

func TestQuoteConfigClient_LoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
		check   func(error) bool
	}{
		{name: "missing document", status: http.StatusNotFound, check: domain.IsNotFound},
		{name: "server error", status: http.StatusBadGateway, check: domain.IsUnavailable},
		{name: "malformed document", status: http.StatusOK, payload: `{"quotes":`, check: domain.IsValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := setupQuoteConfigClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.payload))
			})

			cfg, err := c.Load(context.Background())

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}
}

func TestQuoteConfigClient_Check(t *testing.T) {
	healthy := setupQuoteConfigClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleDocument))
	})
	require.NoError(t, healthy.Check(context.Background()))

	broken := setupQuoteConfigClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	require.ErrorContains(t, broken.Check(context.Background()), "status 404")
}

func TestFileSource_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quotes.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDocument), 0o600))

	source := NewFileSource(path, discardLogger())

	cfg, err := source.Load(context.Background())

	require.NoError(t, err)
	assert.Len(t, cfg.Quotes, 2)
	assert.Equal(t, path, source.Describe())
}

func TestFileSource_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("not json"), 0o600))

	_, err := NewFileSource(filepath.Join(dir, "missing.json"), nil).Load(context.Background())
	assert.True(t, domain.IsUnavailable(err))

	_, err = NewFileSource(bad, discardLogger()).Load(context.Background())
	assert.True(t, domain.IsValidation(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = NewFileSource(bad, discardLogger()).Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
