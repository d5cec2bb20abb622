//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-slots/internal/adapters/clients"
	"github.com/jsamuelsen/quote-slots/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quote-slots/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-slots/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-slots/internal/app"
	"github.com/jsamuelsen/quote-slots/internal/domain"
)

func newConfigClient(t *testing.T, baseURL string) *acl.QuoteConfigClient {
	t.Helper()

	httpClient, err := clients.New(clientConfig(baseURL))
	require.NoError(t, err)

	return acl.NewQuoteConfigClient(acl.QuoteConfigClientConfig{Client: httpClient, Logger: quietLogger()})
}

// TestQuoteSource_RecoversFromTransientFailure verifies that a 5xx on the
// first attempt is retried and the catalog still loads.
func TestQuoteSource_RecoversFromTransientFailure(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		_, _ = w.Write([]byte(quoteDocument(3, "")))
	}))
	defer server.Close()

	catalog := app.NewCatalog(newConfigClient(t, server.URL), quietLogger())

	require.NoError(t, catalog.Load(context.Background()))
	assert.Equal(t, app.CatalogReady, catalog.State())
	assert.Len(t, catalog.Quotes(), 3)
	assert.Equal(t, int32(2), attempts.Load())
}

// TestQuoteSource_LoadsOnce verifies that the configuration is fetched a
// single time however often the catalog is asked.
func TestQuoteSource_LoadsOnce(t *testing.T) {
	s, err := startStack(stackOptions{document: quoteDocument(3, "")})
	require.NoError(t, err)
	defer s.close()

	for range 3 {
		require.NoError(t, s.catalog.Load(context.Background()))
	}

	status, _, err := s.do(context.Background(), http.MethodGet, "/api/v1/quotes", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, int32(1), s.configHits.Load())
}

// TestQuoteSource_DocumentTranslation verifies that the external document
// reaches the API in order, with repeats dropped and image URLs trimmed.
func TestQuoteSource_DocumentTranslation(t *testing.T) {
	s, err := startStack(stackOptions{document: `{
		"pinnedQuoteText": "Second",
		"quotes": [
			{"text": "First", "author": "A"},
			{"text": "Second", "author": "B", "imageUrl": "  /img/b.jpg  "},
			{"text": "First", "author": "Repeat"},
			{"text": "Third", "author": "C"}
		]
	}`})
	require.NoError(t, err)
	defer s.close()

	status, body, err := s.do(context.Background(), http.MethodGet, "/api/v1/quotes", "")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)

	var resp dto.QuotesResponse
	require.NoError(t, json.Unmarshal(body, &resp))

	require.Equal(t, 3, resp.Count)
	assert.Equal(t, "First", resp.Quotes[0].Text)
	assert.Equal(t, "A", resp.Quotes[0].Author)
	assert.Equal(t, "Second", resp.Quotes[1].Text)
	assert.Equal(t, "/img/b.jpg", resp.Quotes[1].ImageURL)
	assert.Equal(t, "Third", resp.Quotes[2].Text)
	assert.Equal(t, "Second", s.catalog.PinnedText())
}

// TestQuoteSource_Failures verifies that every way of failing to read the
// configuration ends in the same user-facing state.
func TestQuoteSource_Failures(t *testing.T) {
	tests := []struct {
		name string
		opts stackOptions
	}{
		{name: "not found", opts: stackOptions{status: http.StatusNotFound, document: `{"message":"missing"}`}},
		{name: "server error", opts: stackOptions{status: http.StatusInternalServerError}},
		{name: "malformed json", opts: stackOptions{document: `{"quotes": [`}},
		{name: "blank quote text", opts: stackOptions{document: `{"quotes":[{"text":"  ","author":"x"},{"text":"b"}]}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := startStack(tt.opts)
			require.NoError(t, err)
			defer s.close()

			assert.Equal(t, app.CatalogFailed, s.catalog.State())

			status, body, err := s.do(context.Background(), http.MethodGet, "/api/v1/quotes", "")
			require.NoError(t, err)
			assert.Equal(t, http.StatusServiceUnavailable, status)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(body, &resp))
			assert.Equal(t, dto.ErrorCodeUnavailable, resp.Error.Code)
			assert.Equal(t, app.FatalLoadMessage, resp.Error.Message)

			status, _, err = s.do(context.Background(), http.MethodPost, "/api/v1/spins", "")
			require.NoError(t, err)
			assert.Equal(t, http.StatusServiceUnavailable, status)
		})
	}
}

// TestQuoteSource_Timeout verifies that a slow configuration server fails
// the load instead of hanging startup.
func TestQuoteSource_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
			return
		}

		_, _ = w.Write([]byte(quoteDocument(3, "")))
	}))
	defer server.Close()

	catalog := app.NewCatalog(newConfigClient(t, server.URL), quietLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := catalog.Load(ctx)

	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

// TestQuoteSource_PropagatesRequestIDs verifies that the health check of
// the remote source carries the caller's request and correlation IDs.
func TestQuoteSource_PropagatesRequestIDs(t *testing.T) {
	var requestID, correlationID string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = r.Header.Get(middleware.HeaderRequestID)
		correlationID = r.Header.Get(middleware.HeaderCorrelationID)
		_, _ = w.Write([]byte(quoteDocument(2, "")))
	}))
	defer server.Close()

	ctx := middleware.ContextWithRequestID(context.Background(), "req-integration-123")
	ctx = middleware.ContextWithCorrelationID(ctx, "corr-integration-456")

	require.NoError(t, newConfigClient(t, server.URL).Check(ctx))
	assert.Equal(t, "req-integration-123", requestID)
	assert.Equal(t, "corr-integration-456", correlationID)
}

// TestQuoteSource_CircuitOpens verifies that repeated failures stop
// reaching the configuration server.
func TestQuoteSource_CircuitOpens(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := clientConfig(server.URL)
	cfg.Retry.MaxAttempts = 1
	cfg.Circuit.MaxFailures = 2

	httpClient, err := clients.New(cfg)
	require.NoError(t, err)

	source := acl.NewQuoteConfigClient(acl.QuoteConfigClientConfig{Client: httpClient, Logger: quietLogger()})

	for range 2 {
		_, err := source.Load(context.Background())
		require.Error(t, err)
	}

	assert.Equal(t, clients.StateOpen, httpClient.CircuitState())

	before := calls.Load()
	_, err = source.Load(context.Background())

	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))
	assert.Equal(t, before, calls.Load(), "open circuit must not reach the server")
}
