package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/ReviewSentiment/internal/config"
	"github.com/utafrali/ReviewSentiment/internal/migrations"
	"github.com/utafrali/ReviewSentiment/internal/repository"
	"github.com/utafrali/ReviewSentiment/internal/repository/postgres"
	rediscache "github.com/utafrali/ReviewSentiment/internal/repository/redis"
	"github.com/utafrali/ReviewSentiment/internal/sentiment"
	"github.com/utafrali/ReviewSentiment/internal/service"
	"github.com/utafrali/ReviewSentiment/pkg/database"
	"github.com/utafrali/ReviewSentiment/pkg/httpclient"
)

// Core holds the storage and domain services shared by the HTTP server and
// the admin CLI.
type Core struct {
	Pool    *pgxpool.Pool
	Redis   *redis.Client
	Reviews *service.ReviewService
	Reports *service.ReportService

	logger *slog.Logger
}

// NewCore connects to PostgreSQL (and Redis when enabled) and builds the
// review services. reg may be nil to leave metrics unregistered. publisher may
// be nil.
func NewCore(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, publisher service.EventPublisher, logger *slog.Logger) (*Core, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(connectCtx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.SetSlowQueryLogging(cfg.SlowQueryThreshold(), logger)

	c := &Core{Pool: pool, logger: logger}

	var cache repository.ReviewCache
	if cfg.RedisEnabled {
		client, err := database.NewRedisClient(connectCtx, cfg.Redis())
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis", slog.String("addr", cfg.Redis().Addr()))
		c.Redis = client
		cache = rediscache.NewReviewCache(client, cfg.ReviewCacheTTL)
	}

	repo := postgres.NewReviewRepository(pool)
	classifier := NewClassifier(cfg, reg, logger)

	c.Reviews = service.NewReviewService(repo, cache, classifier, publisher, logger)
	c.Reports = service.NewReportService(repo, logger)
	return c, nil
}

// Migrate applies the embedded schema migrations.
func (c *Core) Migrate(ctx context.Context) error {
	if err := database.RunMigrations(ctx, c.Pool, migrations.FS, c.logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Close releases the database and cache connections.
func (c *Core) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	c.Pool.Close()
}

// NewClassifier builds the sentiment classifier. When the LLM is disabled no
// client is created and every review receives the neutral fallback.
func NewClassifier(cfg *config.Config, reg prometheus.Registerer, logger *slog.Logger) *sentiment.Classifier {
	scfg := sentiment.Config{
		Enabled:       cfg.LLMEnabled(),
		Model:         cfg.GroqModel,
		MaxTokens:     cfg.LLMMaxTokens,
		Temperature:   cfg.LLMTemperature,
		Timeout:       cfg.LLMTimeout,
		ThrottleDelay: cfg.LLMThrottleDelay,
	}
	metrics := sentiment.NewMetrics(reg)

	if !scfg.Enabled {
		logger.Warn("LLM analysis disabled, reviews will be stored as neutral",
			slog.Bool("use_llm_analysis", cfg.UseLLMAnalysis),
			slog.Bool("api_key_set", cfg.GroqAPIKey != "" && cfg.GroqAPIKey != config.PlaceholderAPIKey),
		)
		return sentiment.New(scfg, nil, metrics, logger)
	}

	transport := httpclient.New(httpclient.Config{
		Timeout:         cfg.LLMTimeout + 5*time.Second,
		MaxConnsPerHost: 20,
		UserAgent:       cfg.ServiceName,
	})
	breaker := httpclient.NewCircuitBreakerClient(transport, httpclient.CircuitBreakerConfig{
		Name:             "groq",
		MaxFailures:      cfg.LLMBreakerMaxFailures,
		OpenTimeout:      cfg.LLMBreakerOpenTimeout,
		HalfOpenRequests: 1,
	}, logger)
	client := sentiment.NewOpenAIClient(cfg.GroqAPIKey, cfg.GroqBaseURL, breaker)

	logger.Info("LLM analysis enabled",
		slog.String("model", cfg.GroqModel),
		slog.String("base_url", cfg.GroqBaseURL),
	)
	return sentiment.New(scfg, client, metrics, logger)
}
