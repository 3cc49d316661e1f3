package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appconfig "tripnotify/internal/config"
	"tripnotify/internal/infra/adapter/persistence/postgres"
	"tripnotify/internal/infra/db"
	"tripnotify/internal/infra/provider"
	"tripnotify/internal/infra/render"
	"tripnotify/internal/observability/logging"
	"tripnotify/internal/observability/tracing"
	"tripnotify/internal/repository"
	"tripnotify/internal/usecase/dispatch"
	"tripnotify/pkg/config"

	hhttp "tripnotify/internal/handler/http"
	hnotification "tripnotify/internal/handler/http/notification"
	"tripnotify/internal/handler/http/requestid"

	"tripnotify/internal/domain/entity"
)

func main() {
	logger := initLogger()

	shutdownTracing, err := tracing.InitTracerProvider(context.Background())
	if err != nil {
		logger.Error("failed to initialize tracer provider", slog.Any("error", err))
		os.Exit(1)
	}

	version := getVersion()
	components := setupServer(logger, version)

	runServer(logger, components, shutdownTracing, version)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// ServerComponents holds components needed for server operation and cleanup.
type ServerComponents struct {
	Handler http.Handler
	Svc     dispatch.Service
	DB      *sql.DB
}

// setupServer configures and returns the HTTP handler with all routes and middleware.
func setupServer(logger *slog.Logger, version string) *ServerComponents {
	branding := appconfig.LoadBranding(os.Getenv("BRANDING_CONFIG_PATH"))

	limits, err := config.LoadDeliveryLimits()
	if err != nil {
		logger.Error("failed to load delivery limits", slog.Any("error", err))
		os.Exit(1)
	}

	providers := dispatch.Providers{
		Push:  buildProvider(logger, entity.ChannelPush, limits.Push),
		Email: buildProvider(logger, entity.ChannelEmail, limits.Email),
		SMS:   buildProvider(logger, entity.ChannelSMS, limits.SMS),
	}

	database, history := setupHistory(logger)

	svc := dispatch.NewService(branding, providers, dispatch.Options{History: history})
	renderer := render.NewEmailRenderer(branding)

	rootMux := setupRoutes(svc, renderer, history, version)
	handler := applyMiddleware(logger, rootMux)

	return &ServerComponents{
		Handler: handler,
		Svc:     svc,
		DB:      database,
	}
}

// setupHistory opens the delivery history store when DATABASE_URL is set.
// Without it the engine runs in-memory only and the history endpoints are
// not registered.
func setupHistory(logger *slog.Logger) (*sql.DB, repository.DeliveryHistoryRepository) {
	if os.Getenv("DATABASE_URL") == "" {
		logger.Info("DATABASE_URL not set, delivery history disabled")
		return nil, nil
	}

	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("delivery history store ready")
	return database, postgres.NewDeliveryRepo(database)
}

// buildProvider returns the gateway provider for a channel, or the no-op
// provider when no webhook URL is configured.
func buildProvider(logger *slog.Logger, channel entity.DeliveryChannel, limits config.ChannelLimits) provider.Provider {
	if limits.WebhookURL == "" {
		logger.Warn("no gateway configured for channel, using no-op provider",
			slog.String("channel", string(channel)))
		return provider.NewNoop()
	}

	cfg := provider.DefaultWebhookConfig(limits.WebhookURL, channel)
	cfg.Timeout = limits.Timeout
	cfg.RequestsPerSecond = limits.RequestsPerSecond
	cfg.Burst = limits.Burst

	logger.Info("gateway provider configured",
		slog.String("channel", string(channel)),
		slog.Float64("rps", cfg.RequestsPerSecond),
		slog.Int("burst", cfg.Burst),
		slog.Duration("timeout", cfg.Timeout))
	return provider.NewWebhook(cfg)
}

// setupRoutes registers all HTTP routes.
func setupRoutes(svc dispatch.Service, renderer *render.EmailRenderer, history repository.DeliveryHistoryRepository, version string) *http.ServeMux {
	mux := http.NewServeMux()
	hnotification.Register(mux, svc, renderer, history)

	mux.Handle("GET    /health", &hhttp.HealthHandler{Queue: svc, Version: version})
	mux.Handle("GET    /metrics", hhttp.MetricsHandler())

	return mux
}

// applyMiddleware wraps the handler with the middleware chain.
// Order: Request ID → Tracing → Rate Limit → Recovery → Logging → Body Limit → Validation → Timeout → Metrics
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	// Dispatch fan-out is bounded, so a burst of 120 req/min per IP covers
	// any legitimate internal caller.
	rateLimiter := hhttp.NewRateLimiter(120, 1*time.Minute)

	middlewareChain := handler

	// Apply in reverse order (innermost to outermost)
	middlewareChain = hhttp.MetricsMiddleware(middlewareChain)
	middlewareChain = hhttp.Timeout(30 * time.Second)(middlewareChain)
	middlewareChain = hhttp.InputValidation()(middlewareChain)
	middlewareChain = hhttp.LimitRequestBody(1 << 20)(middlewareChain) // 1MB limit
	middlewareChain = hhttp.Logging(logger)(middlewareChain)
	middlewareChain = hhttp.Recover(logger)(middlewareChain)
	middlewareChain = rateLimiter.Limit(middlewareChain)
	middlewareChain = tracing.Middleware(middlewareChain)
	middlewareChain = requestid.Middleware(middlewareChain)

	return middlewareChain
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, components *ServerComponents, shutdownTracing func(context.Context) error, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Drain deferred retries and quiet-hours operations. Dispatch triggers a
	// pass on its own, but backoff and quiet-hours schedules land between
	// requests.
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				components.Svc.ProcessQueue(ctx)
			}
		}
	}()

	srv := &http.Server{
		Addr:              ":8080",
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", ":8080"),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	// Stop accepting new requests first, then drain in-flight deliveries
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}

	if err := components.Svc.Shutdown(shutdownCtx); err != nil {
		logger.Error("dispatch service shutdown failed", slog.Any("error", err))
	}

	if components.DB != nil {
		if err := components.DB.Close(); err != nil {
			logger.Error("database close failed", slog.Any("error", err))
		}
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracer provider shutdown failed", slog.Any("error", err))
	}

	logger.Info("server stopped")
}
