package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-slots/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-slots/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-slots/internal/platform/config"
	"github.com/jsamuelsen/quote-slots/internal/platform/telemetry"
)

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is stored in every request context.
	Logger *slog.Logger

	// AppConfig names the service for tracing.
	AppConfig *config.AppConfig

	// HealthHandler handles the /-/ endpoints.
	HealthHandler *handlers.HealthHandler

	// SlotHandler handles the slot machine API.
	SlotHandler *handlers.SlotHandler

	// StreamHandler handles the WebSocket event stream.
	StreamHandler *handlers.StreamHandler

	// Timeout is the request deadline for the slot API. The stream is
	// exempt.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Context logger - request-scoped logger for everything below
//  2. Recovery - catch panics
//  3. Request ID - generate/extract request ID
//  4. Correlation ID - handle distributed tracing correlation
//  5. OpenTelemetry - tracing and metrics
//  6. Logging - request logging (skips health endpoints)
//  7. Timeout - request deadline, /api/v1 only
//
// Route groups:
//   - /-/ (internal): health, build info and metrics
//   - /api/v1/ (public API): quotes, spins, display, audio
//   - /api/v1/stream: long-lived WebSocket, no timeout
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.ContextLogger(cfg.Logger),
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)

	if cfg.AppConfig != nil {
		engine.Use(telemetry.Middleware(cfg.AppConfig.Name)...)
	}

	engine.Use(middleware.Logging())

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	if cfg.StreamHandler != nil {
		cfg.StreamHandler.RegisterRoutes(engine.Group("/api/v1"))
	}

	if cfg.SlotHandler != nil {
		apiV1 := engine.Group("/api/v1")
		if cfg.Timeout > 0 {
			apiV1.Use(middleware.Timeout(cfg.Timeout))
		}

		cfg.SlotHandler.RegisterRoutes(apiV1)
	}
}
