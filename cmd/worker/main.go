package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	appconfig "tripnotify/internal/config"
	"tripnotify/internal/domain/entity"
	"tripnotify/internal/infra/adapter/persistence/postgres"
	"tripnotify/internal/infra/db"
	"tripnotify/internal/infra/provider"
	workerPkg "tripnotify/internal/infra/worker"
	"tripnotify/internal/observability/logging"
	"tripnotify/internal/observability/metrics"
	"tripnotify/internal/repository"
	"tripnotify/internal/resilience/retryqueue"
	"tripnotify/internal/usecase/dispatch"
	"tripnotify/pkg/config"
)

func main() {
	logger := initLogger()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("sweep_schedule", workerConfig.SweepSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("poll_interval", workerConfig.PollInterval),
		slog.Int("deliver_max_concurrent", workerConfig.DeliverMaxConcurrent),
		slog.Int("health_port", workerConfig.HealthPort))

	database, history := setupHistory(logger)
	if database != nil {
		defer database.Close()
	}

	svc := setupDispatchService(logger, workerConfig, history)

	// Start ingest + metrics HTTP server
	startIngestServer(ctx, logger, svc, history)

	// Start health check server
	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	runWorker(ctx, cancel, logger, svc, workerConfig, workerMetrics, healthServer)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// setupHistory opens the delivery history store when DATABASE_URL is set.
// Without it the worker runs in-memory only.
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

// setupDispatchService builds the dispatch service with gateway providers
// from the environment.
func setupDispatchService(logger *slog.Logger, workerConfig *workerPkg.WorkerConfig, history repository.DeliveryHistoryRepository) dispatch.Service {
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

	return dispatch.NewService(branding, providers, dispatch.Options{
		Queue: retryqueue.Options{
			MaxConcurrent: workerConfig.DeliverMaxConcurrent,
		},
		History: history,
	})
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

// runWorker starts the retry poll loop and the cron-scheduled reconciliation
// sweep, then blocks until a termination signal arrives.
func runWorker(
	ctx context.Context,
	cancel context.CancelFunc,
	logger *slog.Logger,
	svc dispatch.Service,
	cfg *workerPkg.WorkerConfig,
	workerMetrics *workerPkg.WorkerMetrics,
	healthServer *workerPkg.HealthServer,
) {
	// Load timezone
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.SweepSchedule, func() {
		runSweep(logger, svc, workerMetrics)
	})
	if err != nil {
		logger.Error("failed to add sweep job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	// Retry poll loop: runs one processing pass per interval so backoff and
	// quiet-hours schedules are honored promptly.
	go func() {
		ticker := time.NewTicker(cfg.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runRetryPass(ctx, svc, workerMetrics)
			}
		}
	}()

	// Mark as ready after the poll loop and sweep are set up
	healthServer.SetReady(true)
	logger.Info("worker marked as ready")

	logger.Info("worker started",
		slog.Duration("poll_interval", cfg.PollInterval),
		slog.String("sweep_schedule", cfg.SweepSchedule),
		slog.String("timezone", cfg.Timezone))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down worker...")

	cancel()
	<-c.Stop().Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := svc.Shutdown(shutdownCtx); err != nil {
		logger.Error("dispatch service shutdown failed", slog.Any("error", err))
	}
	logger.Info("worker stopped")
}

// runRetryPass executes a single retry-queue processing pass and records its
// outcome.
func runRetryPass(ctx context.Context, svc dispatch.Service, workerMetrics *workerPkg.WorkerMetrics) {
	start := time.Now()
	attempted := dueCount(svc.QueueSnapshot(), start)
	if attempted == 0 {
		return
	}

	svc.ProcessQueue(ctx)
	workerMetrics.ObservePass(start, attempted, ctx.Err())
}

// dueCount counts operations eligible for an attempt at the given time.
func dueCount(ops []entity.QueuedOperation, now time.Time) int {
	n := 0
	for _, op := range ops {
		if op.Attempts < op.MaxAttempts && !op.ScheduledAt.After(now) {
			n++
		}
	}
	return n
}

// runSweep refreshes backlog gauges and logs operations stuck near their
// attempt budget.
func runSweep(logger *slog.Logger, svc dispatch.Service, workerMetrics *workerPkg.WorkerMetrics) {
	snapshot := svc.QueueSnapshot()
	workerMetrics.SetQueueDepth(len(snapshot))

	now := time.Now()
	var oldest time.Duration
	lastAttempt := 0
	for _, op := range snapshot {
		if age := now.Sub(op.ScheduledAt); age > oldest {
			oldest = age
		}
		if op.Attempts == op.MaxAttempts-1 {
			lastAttempt++
			logger.Warn("operation on final attempt",
				slog.String("operation_id", op.ID),
				slog.Int("attempts", op.Attempts),
				slog.String("last_error", op.LastError))
		}
	}
	if oldest < 0 {
		oldest = 0
	}
	metrics.UpdateQueueOldestAge(oldest)

	logger.Info("sweep completed",
		slog.Int("queue_depth", len(snapshot)),
		slog.Duration("oldest_age", oldest),
		slog.Int("on_final_attempt", lastAttempt))
}
