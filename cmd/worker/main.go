package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hms-api/internal/config"
	"github.com/jwalitptl/hms-api/internal/email"
	"github.com/jwalitptl/hms-api/internal/handler/health"
	promhandler "github.com/jwalitptl/hms-api/internal/handler/prometheus"
	"github.com/jwalitptl/hms-api/internal/repository/postgres"
	"github.com/jwalitptl/hms-api/internal/worker"
	"github.com/jwalitptl/hms-api/pkg/logger"
	"github.com/jwalitptl/hms-api/pkg/messaging"
	"github.com/jwalitptl/hms-api/pkg/messaging/redis"
	"github.com/jwalitptl/hms-api/pkg/metrics"
	pkgworker "github.com/jwalitptl/hms-api/pkg/worker"
)

const cleanupInterval = time.Hour

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("Worker failed")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	l := logger.NewLogger(&logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
	})
	log.Logger = *l.Zerolog()
	l = l.With("worker").WithFields(map[string]interface{}{"worker_id": workerID()})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db.DB, "hms_worker"),
	)
	m := metrics.NewMetrics("hms_worker", reg)

	broker, err := newBroker(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer broker.Close()

	base := postgres.NewBaseRepository(db)
	outboxRepo := postgres.NewOutboxRepository(base)

	processor := pkgworker.NewOutboxProcessor(
		outboxRepo,
		postgres.NewTransactor(base),
		broker,
		pkgworker.OutboxProcessorConfig{
			BatchSize:     cfg.Outbox.BatchSize,
			PollInterval:  cfg.Outbox.PollInterval,
			RetryAttempts: cfg.Outbox.RetryAttempts,
			RetryDelay:    cfg.Outbox.RetryDelay,
		},
		l.With("outbox_processor"),
		m,
	)
	cleanup := pkgworker.NewOutboxCleanupWorker(outboxRepo, cfg.Outbox.Retention, cleanupInterval, l.With("outbox_cleanup"))

	mailer := email.NewService(cfg.SMTP, l.With("mailer"))
	notifier := worker.NewNotifier(broker, mailer, l.With("notifier"))
	if err := notifier.Start(ctx); err != nil {
		return fmt.Errorf("notifier: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Outbox.HealthPort),
		Handler:           sideRouter(db, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup
	for _, start := range []func(context.Context){processor.Start, cleanup.Start, mailer.Start} {
		wg.Add(1)
		go func(start func(context.Context)) {
			defer wg.Done()
			start(ctx)
		}(start)
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info("Worker health server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		l.Info("Shutting down worker")
	case err = <-errCh:
		l.Error(err, "Health server failed")
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		l.Error(shutdownErr, "Health server shutdown failed")
	}
	wg.Wait()
	return err
}

// newBroker connects to Redis pub/sub. Without a Redis URL events are
// still marked relayed but nothing subscribes to them.
func newBroker(ctx context.Context, cfg *config.Config, l *logger.Logger) (messaging.Broker, error) {
	if cfg.Redis.URL == "" {
		l.Warn("No Redis URL configured, relaying events to a no-op broker")
		return messaging.NewNopBroker(), nil
	}
	client, err := redis.NewClient(ctx, redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return redis.NewRedisBroker(client, l.Zerolog()), nil
}

func sideRouter(db health.Pinger, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	health.NewHandler(db).RegisterRoutes(r)
	promhandler.New(gatherer).RegisterRoutes(r)
	return r
}

func workerID() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}
