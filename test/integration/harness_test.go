//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/quote-slots/internal/adapters/clients"
	"github.com/jsamuelsen/quote-slots/internal/adapters/clients/acl"
	httpadapter "github.com/jsamuelsen/quote-slots/internal/adapters/http"
	"github.com/jsamuelsen/quote-slots/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-slots/internal/adapters/media"
	"github.com/jsamuelsen/quote-slots/internal/app"
	"github.com/jsamuelsen/quote-slots/internal/app/spin"
	"github.com/jsamuelsen/quote-slots/internal/platform/config"
	"github.com/jsamuelsen/quote-slots/internal/platform/logging"
	"github.com/jsamuelsen/quote-slots/internal/platform/metrics"
	"github.com/jsamuelsen/quote-slots/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fastTiming keeps a full spin well under a second.
var fastTiming = spin.Config{
	TickInterval:    10 * time.Millisecond,
	TotalDuration:   300 * time.Millisecond,
	LandingDuration: 120 * time.Millisecond,
}

// stackOptions shapes the remote quote configuration.
type stackOptions struct {
	// document is served as the configuration body.
	document string

	// status overrides the configuration response status. Zero means 200.
	status int

	// delay is applied before every configuration response.
	delay time.Duration
}

// stack is the whole service wired in-process: a fake remote configuration
// server, the real client, catalog, slot service and router.
type stack struct {
	configServer *httptest.Server
	server       *httptest.Server
	service      *app.SlotService
	hub          *app.EventHub
	catalog      *app.Catalog
	registry     *prometheus.Registry
	configHits   atomic.Int32
}

// quoteDocument renders a configuration with n quotes named "Quote 1".."Quote n".
func quoteDocument(n int, pinned string) string {
	quotes := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		quotes = append(quotes, fmt.Sprintf(`{"text":"Quote %d","author":"Author %d"}`, i, i))
	}

	return fmt.Sprintf(`{"pinnedQuoteText":%q,"quotes":[%s]}`, pinned, strings.Join(quotes, ","))
}

func clientConfig(baseURL string) *clients.Config {
	return &clients.Config{
		BaseURL:     baseURL,
		ServiceName: acl.QuoteConfigServiceName,
		Timeout:     2 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     2,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     50 * time.Millisecond,
			Multiplier:      2,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   5,
			Timeout:       time.Second,
			HalfOpenLimit: 1,
		},
		Logger: quietLogger(),
	}
}

func quietLogger() *slog.Logger {
	return logging.NewWithWriter(&logging.Config{Level: "error", Format: "json", Service: "quote-slots"}, io.Discard)
}

// startStack wires and starts the service. Callers must call close.
func startStack(opts stackOptions) (*stack, error) {
	s := &stack{}

	s.configServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.configHits.Add(1)

		if opts.delay > 0 {
			select {
			case <-time.After(opts.delay):
			case <-r.Context().Done():
				return
			}
		}

		status := opts.status
		if status == 0 {
			status = http.StatusOK
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, opts.document)
	}))

	logger := quietLogger()

	httpClient, err := clients.New(clientConfig(s.configServer.URL + "/quotes.json"))
	if err != nil {
		s.configServer.Close()
		return nil, err
	}

	source := acl.NewQuoteConfigClient(acl.QuoteConfigClientConfig{Client: httpClient, Logger: logger})

	health := ports.NewHealthRegistry()
	if err := health.Register(source); err != nil {
		s.configServer.Close()
		return nil, err
	}

	s.catalog = app.NewCatalog(source, logger)
	_ = s.catalog.Load(context.Background())

	if err := health.Register(s.catalog); err != nil {
		s.configServer.Close()
		return nil, err
	}

	s.registry = prometheus.NewRegistry()
	m := metrics.New(s.registry)

	s.hub = app.NewEventHub(0, m, logger)

	s.service = app.NewSlotService(app.SlotServiceConfig{
		Catalog: s.catalog,
		Deck: media.NewDeck(media.Config{
			BackgroundURL:    "/audio/background.mp3",
			SpinURL:          "/audio/spin.mp3",
			WinURL:           "/audio/win.mp3",
			BackgroundVolume: 0.3,
			Sink:             s.hub,
			Logger:           logger,
		}),
		Hub:        s.hub,
		Metrics:    m,
		Spin:       fastTiming,
		StartMuted: true,
		Logger:     logger,
	})
	s.service.Start(context.Background())

	engine := gin.New()
	httpadapter.SetupRouter(engine, httpadapter.RouterConfig{
		Logger:        logger,
		AppConfig:     &config.AppConfig{Name: "quote-slots", Version: "test", Environment: "test"},
		HealthHandler: handlers.NewHealthHandler(health, handlers.NewBuildInfo("test", "none", "now"), s.registry),
		SlotHandler:   handlers.NewSlotHandler(s.service),
		StreamHandler: handlers.NewStreamHandler(s.hub, s.service, handlers.StreamConfig{PingInterval: time.Second}),
		Timeout:       5 * time.Second,
	})

	s.server = httptest.NewServer(engine)

	return s, nil
}

// close ends every stream before stopping the servers.
func (s *stack) close() {
	if s == nil {
		return
	}

	_ = s.service.Close()
	s.server.Close()
	s.configServer.Close()
}

func (s *stack) url(path string) string {
	return s.server.URL + path
}

// do sends a request with an optional JSON body.
func (s *stack) do(ctx context.Context, method, path, body string) (int, []byte, error) {
	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.url(path), reader)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading body: %w", err)
	}

	return resp.StatusCode, data, nil
}

// dialStream opens the live stream.
func (s *stack) dialStream(ctx context.Context) (*websocket.Conn, error) {
	wsURL := "ws" + strings.TrimPrefix(s.url("/api/v1/stream"), "http")

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	if err != nil {
		return nil, fmt.Errorf("dialing stream: %w", err)
	}

	return conn, nil
}

// streamMessage is the union of snapshot and event fields the tests read.
type streamMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	Phase     string `json:"phase"`
	Quote     *struct {
		Text string `json:"text"`
	} `json:"quote"`
}

var errStreamTimeout = errors.New("stream did not deliver the expected message in time")

// awaitMessage reads until match returns true or the deadline passes.
func awaitMessage(conn *websocket.Conn, timeout time.Duration, match func(streamMessage) bool) (streamMessage, error) {
	deadline := time.Now().Add(timeout)

	for {
		if err := conn.SetReadDeadline(deadline); err != nil {
			return streamMessage{}, err
		}

		var msg streamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if time.Now().After(deadline) {
				return streamMessage{}, errStreamTimeout
			}

			return streamMessage{}, err
		}

		if match(msg) {
			return msg, nil
		}
	}
}
