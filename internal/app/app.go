package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/ReviewSentiment/internal/config"
	"github.com/utafrali/ReviewSentiment/internal/event"
	handler "github.com/utafrali/ReviewSentiment/internal/handler/http"
	"github.com/utafrali/ReviewSentiment/pkg/database"
	"github.com/utafrali/ReviewSentiment/pkg/health"
	pkgkafka "github.com/utafrali/ReviewSentiment/pkg/kafka"
	"github.com/utafrali/ReviewSentiment/pkg/middleware"
	"github.com/utafrali/ReviewSentiment/pkg/tracing"
)

const idempotencyTTL = 24 * time.Hour

// App wires together all dependencies and runs the review sentiment service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	core           *Core
	producer       *pkgkafka.Producer
	dlq            *pkgkafka.DLQProducer
	consumers      []*pkgkafka.Consumer
	rateLimiter    *middleware.RateLimiter
	tracerShutdown tracing.Shutdown
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies
// and applying pending migrations.
func NewApp(cfg *config.Config, version string, logger *slog.Logger) (*App, error) {
	ctx := context.Background()
	reg := prometheus.DefaultRegisterer

	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{cfg: cfg, logger: logger, tracerShutdown: tracerShutdown}

	// Kafka producer; the event producer drops events when Kafka is disabled.
	kafkaMetrics := pkgkafka.NewMetrics(reg)
	var publisher event.Publisher
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), kafkaMetrics, logger)
		publisher = a.producer
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}
	eventProducer := event.NewProducer(publisher, logger)

	core, err := NewCore(ctx, cfg, reg, eventProducer, logger)
	if err != nil {
		a.abort()
		return nil, err
	}
	a.core = core

	migrateCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if err := core.Migrate(migrateCtx); err != nil {
		a.abort()
		return nil, err
	}

	if err := database.RegisterPoolMetrics(reg, core.Pool, cfg.ServiceName); err != nil {
		logger.Warn("failed to register pool metrics", slog.String("error", err.Error()))
	}

	// Kafka consumer for review.submitted.
	if cfg.KafkaEnabled {
		var store pkgkafka.IdempotencyStore = pkgkafka.NewMemoryIdempotencyStore(idempotencyTTL)
		if core.Redis != nil {
			store = pkgkafka.NewRedisIdempotencyStore(core.Redis, idempotencyTTL)
		}
		a.dlq = pkgkafka.NewDLQProducer(cfg.KafkaBrokers, logger)
		consumerHandler := event.NewConsumerHandler(core.Reviews, logger)
		a.consumers = append(a.consumers, event.NewSubmittedConsumer(
			cfg.KafkaBrokers, cfg.KafkaConsumerGroup, consumerHandler, store, a.dlq, kafkaMetrics, logger,
		))
	}

	// Health checks.
	healthHandler := health.NewHandler(version)
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return core.Pool.Ping(ctx)
	})
	if core.Redis != nil {
		healthHandler.RegisterOptional("redis", func(ctx context.Context) error {
			return core.Redis.Ping(ctx).Err()
		})
	}
	if a.producer != nil {
		healthHandler.RegisterOptional("kafka", a.producer.Ping)
	}

	a.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 10*time.Minute, logger)

	// HTTP router.
	router := handler.NewRouter(handler.RouterConfig{
		ServiceName:       cfg.ServiceName,
		Version:           version,
		CORSOrigins:       cfg.CORSAllowedOrigins,
		RequestTimeout:    cfg.HTTPRequestTimeout,
		PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
		CacheMaxAge:       cfg.HTTPCacheMaxAge,
		Metrics:           middleware.NewHTTPMetrics(reg, cfg.ServiceName),
		MetricsHandler:    promhttp.Handler(),
		RateLimiter:       a.rateLimiter,
		TracingEnabled:    cfg.OTELEnabled,
	}, core.Reviews, core.Reports, healthHandler, logger)

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

// Run starts the HTTP server and Kafka consumers, then blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	// Start Kafka consumers.
	for _, consumer := range a.consumers {
		c := consumer
		go func() {
			if err := c.Start(ctx); err != nil {
				a.logger.Error("kafka consumer error", slog.String("error", err.Error()))
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.closeAll()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.closeAll()

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}

// abort releases everything acquired so far when NewApp fails part way.
func (a *App) abort() {
	a.closeAll()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.tracerShutdown(ctx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}
}

func (a *App) closeAll() {
	if a.rateLimiter != nil {
		a.rateLimiter.Close()
	}
	if err := a.closeKafka(); err != nil {
		a.logger.Error("kafka close error", slog.String("error", err.Error()))
	}
	if a.core != nil {
		a.core.Close()
	}
}

func (a *App) closeKafka() error {
	var errs []error
	for _, consumer := range a.consumers {
		errs = append(errs, consumer.Close())
	}
	if a.dlq != nil {
		errs = append(errs, a.dlq.Close())
	}
	if a.producer != nil {
		errs = append(errs, a.producer.Close())
	}
	return errors.Join(errs...)
}
