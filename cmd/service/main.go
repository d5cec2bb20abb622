// Package main is the entry point for the quote slot machine service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

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
	"github.com/jsamuelsen/quote-slots/internal/platform/telemetry"
	"github.com/jsamuelsen/quote-slots/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// 1. Determine profile from environment
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	// 4. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	// 5. Prometheus registry with runtime collectors
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := metrics.New(registry)

	// 6. Health registry and quote source
	healthRegistry := ports.NewHealthRegistry()

	source, err := newQuoteSource(cfg, logger, healthRegistry)
	if err != nil {
		return err
	}

	// 7. Load the catalog once. A failure is kept and shown to users rather
	// than stopping the process.
	catalog := app.NewCatalog(source, logger)

	loadCtx, cancelLoad := context.WithTimeout(ctx, cfg.Client.Timeout)
	_ = catalog.Load(loadCtx)

	cancelLoad()

	if err := healthRegistry.Register(catalog); err != nil {
		return fmt.Errorf("registering catalog health check: %w", err)
	}

	// 8. Event hub, audio deck and slot service
	hub := app.NewEventHub(cfg.Slot.EventBuffer, m, logger)

	deck := media.NewDeck(media.Config{
		BackgroundURL:    cfg.Audio.BackgroundURL,
		SpinURL:          cfg.Audio.SpinURL,
		WinURL:           cfg.Audio.WinURL,
		BackgroundVolume: cfg.Audio.BackgroundVolume,
		Sink:             hub,
		Logger:           logger,
	})

	service := app.NewSlotService(app.SlotServiceConfig{
		Catalog: catalog,
		Deck:    deck,
		Hub:     hub,
		Metrics: m,
		Spin: spin.Config{
			TickInterval:    cfg.Slot.TickInterval,
			TotalDuration:   cfg.Slot.TotalDuration,
			LandingDuration: cfg.Slot.LandingDuration,
			Clock:           clockwork.NewRealClock(),
		},
		StartMuted: cfg.Audio.StartMuted,
		Logger:     logger,
	})
	service.Start(ctx)

	// 9. Create handlers
	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime).WithQuoteSource(source.Describe())
	healthHandler := handlers.NewHealthHandler(healthRegistry, buildInfo, registry)
	slotHandler := handlers.NewSlotHandler(service)
	streamHandler := handlers.NewStreamHandler(hub, service, handlers.StreamConfig{
		WriteTimeout: cfg.Stream.WriteTimeout,
		PingInterval: cfg.Stream.PingInterval,
		CheckOrigin:  originChecker(cfg.Stream.AllowedOrigins),
	})

	// 10. Create HTTP server and router
	server := httpadapter.New(&cfg.Server, logger)

	httpadapter.SetupRouter(server.Engine(), httpadapter.RouterConfig{
		Logger:        logger,
		AppConfig:     &cfg.App,
		HealthHandler: healthHandler,
		SlotHandler:   slotHandler,
		StreamHandler: streamHandler,
		Timeout:       cfg.Server.RequestTimeout,
	})

	// 11. Start server (non-blocking)
	serverErr, err := server.Start()
	if err != nil {
		_ = service.Close()
		return err
	}

	// 12. Wait for shutdown signal
	return waitForShutdown(ctx, logger, server, service, serverErr, cfg.Server.ShutdownTimeout)
}

// newQuoteSource builds the configured quote source. The remote source also
// registers its health check.
func newQuoteSource(cfg *config.Config, logger *slog.Logger, health ports.HealthRegistry) (ports.QuoteSource, error) {
	if cfg.Slot.Source != "http" {
		return acl.NewFileSource(cfg.Slot.ConfigPath, logger), nil
	}

	httpClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.Slot.ConfigURL,
		ServiceName: acl.QuoteConfigServiceName,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating HTTP client: %w", err)
	}

	client := acl.NewQuoteConfigClient(acl.QuoteConfigClientConfig{
		Client: httpClient,
		Logger: logger,
	})

	if err := health.Register(client); err != nil {
		return nil, fmt.Errorf("registering quote config health check: %w", err)
	}

	return client, nil
}

// originChecker accepts any origin when allowed is empty, otherwise only
// the listed ones. Requests without an Origin header are not from a
// browser and are accepted.
func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(allowed, origin) {
			return true
		}

		logging.FromContext(r.Context()).Warn("stream origin rejected",
			slog.String("origin", origin),
			slog.String("remote_addr", r.RemoteAddr),
		)

		return false
	}
}

// waitForShutdown blocks until a shutdown signal is received or server error occurs.
// It then stops the HTTP server and closes the slot service, which ends
// every open stream.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *httpadapter.Server,
	service *app.SlotService,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		_ = service.Close()
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown",
		slog.Duration("timeout", shutdownTimeout),
	)

	// Stop accepting new requests, drain in-flight
	serverShutdownErr := server.Shutdown(shutdownCtx)

	if err := service.Close(); err != nil {
		logger.Error("slot service close error", slog.Any("error", err))
	}

	if serverShutdownErr != nil {
		return fmt.Errorf("server shutdown: %w", serverShutdownErr)
	}

	logger.Info("shutdown complete")

	return nil
}
