package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-slots/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-slots/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-slots/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-slots/internal/adapters/media"
	"github.com/jsamuelsen/quote-slots/internal/app"
	"github.com/jsamuelsen/quote-slots/internal/app/spin"
	"github.com/jsamuelsen/quote-slots/internal/domain"
	"github.com/jsamuelsen/quote-slots/internal/platform/config"
	"github.com/jsamuelsen/quote-slots/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testServerConfig() *config.ServerConfig {
	return &config.ServerConfig{
		Host:           "127.0.0.1",
		Port:           0,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    30 * time.Second,
		MaxRequestSize: 1 << 20,
	}
}

type staticSource struct{ cfg *domain.QuoteConfig }

func (s staticSource) Load(context.Context) (*domain.QuoteConfig, error) { return s.cfg, nil }

func (s staticSource) Describe() string { return "static" }

// newSlotService builds a service over three quotes with a manual clock.
func newSlotService(t *testing.T) (*app.SlotService, *clockwork.FakeClock) {
	t.Helper()

	catalog := app.NewCatalog(staticSource{cfg: &domain.QuoteConfig{
		Quotes: []domain.Quote{
			{Text: "one", Author: "a"},
			{Text: "two", Author: "b"},
			{Text: "three", Author: "c"},
		},
	}}, discardLogger())
	require.NoError(t, catalog.Load(context.Background()))

	hub := app.NewEventHub(0, nil, discardLogger())
	clock := clockwork.NewFakeClock()

	svc := app.NewSlotService(app.SlotServiceConfig{
		Catalog: catalog,
		Deck: media.NewDeck(media.Config{
			BackgroundURL: "/audio/background.mp3",
			SpinURL:       "/audio/spin.mp3",
			WinURL:        "/audio/win.mp3",
			Sink:          hub,
		}),
		Hub: hub,
		Spin: spin.Config{
			TickInterval:    100 * time.Millisecond,
			TotalDuration:   time.Second,
			LandingDuration: 400 * time.Millisecond,
			Clock:           clock,
		},
		StartMuted: true,
		Logger:     discardLogger(),
	})
	t.Cleanup(func() { _ = svc.Close() })

	return svc, clock
}

// finishSpin steps clock in 10ms increments until svc's spin has completed,
// waiting after each step for the fired callback to arm the next timer.
func finishSpin(t *testing.T, clock *clockwork.FakeClock, svc *app.SlotService) {
	t.Helper()

	for steps := 0; svc.Display().Spinning; steps++ {
		require.Less(t, steps, 500, "spin never completed")

		clock.Advance(10 * time.Millisecond)
		require.Eventually(t, func() bool {
			if !svc.Display().Spinning {
				return true
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
			defer cancel()

			return clock.BlockUntilContext(ctx, 1) == nil
		}, time.Second, time.Millisecond)
	}
}

func newRouter(t *testing.T, timeout time.Duration) (*gin.Engine, *app.SlotService, *clockwork.FakeClock) {
	t.Helper()

	svc, clock := newSlotService(t)

	registry := ports.NewHealthRegistry()
	require.NoError(t, registry.Register(ports.CheckerFunc{
		CheckName: app.CatalogCheckName,
		Fn:        func(context.Context) error { return nil },
	}))

	engine := gin.New()
	SetupRouter(engine, RouterConfig{
		Logger:        discardLogger(),
		AppConfig:     &config.AppConfig{Name: "quote-slots"},
		HealthHandler: handlers.NewHealthHandler(registry, handlers.NewBuildInfo("1.0.0", "abc", "now"), prometheus.NewRegistry()),
		SlotHandler:   handlers.NewSlotHandler(svc),
		StreamHandler: handlers.NewStreamHandler(svc.Hub(), svc, handlers.StreamConfig{}),
		Timeout:       timeout,
	})

	return engine, svc, clock
}

func TestServerNew(t *testing.T) {
	srv := New(testServerConfig(), discardLogger())

	require.NotNil(t, srv)
	assert.NotNil(t, srv.Engine())
	assert.Equal(t, testServerConfig(), srv.Config())
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		name         string
		host         string
		port         int
		expectedAddr string
	}{
		{name: "localhost", host: "localhost", port: 8080, expectedAddr: "localhost:8080"},
		{name: "all interfaces", host: "0.0.0.0", port: 3000, expectedAddr: "0.0.0.0:3000"},
		{name: "ipv6 loopback", host: "::1", port: 8080, expectedAddr: "[::1]:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testServerConfig()
			cfg.Host = tt.host
			cfg.Port = tt.port

			assert.Equal(t, tt.expectedAddr, New(cfg, discardLogger()).Addr())
		})
	}
}

func TestServerStartShutdown(t *testing.T) {
	srv := New(testServerConfig(), discardLogger())
	srv.Engine().GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	errCh, err := srv.Start()
	require.NoError(t, err)

	assert.NotEqual(t, "127.0.0.1:0", srv.Addr(), "bound address should carry the real port")

	resp, err := http.Get(fmt.Sprintf("http://%s/ping", srv.Addr()))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, srv.Shutdown(ctx))

	_, ok := <-errCh
	assert.False(t, ok, "error channel should be closed")
}

func TestServerStart_BindFailure(t *testing.T) {
	first := New(testServerConfig(), discardLogger())
	_, err := first.Start()
	require.NoError(t, err)

	t.Cleanup(func() { _ = first.Shutdown(context.Background()) })

	host, port, err := net.SplitHostPort(first.Addr())
	require.NoError(t, err)

	cfg := testServerConfig()
	cfg.Host = host
	cfg.Port, err = strconv.Atoi(port)
	require.NoError(t, err)

	_, err = New(cfg, discardLogger()).Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listening on")
}

func TestMaxBodySizeMiddleware(t *testing.T) {
	engine := gin.New()
	engine.Use(maxBodySize(16))
	engine.POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}

		c.Status(http.StatusOK)
	})

	tests := []struct {
		name         string
		body         string
		expectedCode int
	}{
		{name: "within limit", body: "small", expectedCode: http.StatusOK},
		{name: "over limit", body: strings.Repeat("x", 64), expectedCode: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString(tt.body)))

			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestSetupRouter_Routes(t *testing.T) {
	engine, _, _ := newRouter(t, time.Second)

	routes := make(map[string]bool)
	for _, r := range engine.Routes() {
		routes[r.Method+" "+r.Path] = true
	}

	for _, expected := range []string{
		"GET /-/live",
		"GET /-/ready",
		"GET /-/build",
		"GET /-/metrics",
		"GET /api/v1/quotes",
		"POST /api/v1/spins",
		"GET /api/v1/display",
		"GET /api/v1/audio",
		"PUT /api/v1/audio/mute",
		"GET /api/v1/stream",
	} {
		assert.True(t, routes[expected], "missing route: %s", expected)
	}
}

func TestSetupRouter_PropagatesIDs(t *testing.T) {
	engine, _, _ := newRouter(t, time.Second)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/display", nil)
	req.Header.Set(middleware.HeaderRequestID, "req-123")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-123", w.Header().Get(middleware.HeaderRequestID))
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderCorrelationID))
}

func TestSetupRouter_SpinFlow(t *testing.T) {
	engine, svc, clock := newRouter(t, time.Second)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/spins", nil))
	require.Equal(t, http.StatusAccepted, w.Code)

	var ticket dto.SpinResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ticket))

	finishSpin(t, clock, svc)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/display", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var display dto.DisplayResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &display))
	require.NotNil(t, display.Quote)
	assert.Equal(t, ticket.FinalQuote.Text, display.Quote.Text)
	assert.True(t, display.IsFinal)
}

func TestSetupRouter_RecoversPanics(t *testing.T) {
	engine := gin.New()
	SetupRouter(engine, RouterConfig{Logger: discardLogger()})

	engine.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrorCodeInternal, resp.Error.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}
