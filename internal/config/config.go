package config

import (
	"errors"
	"fmt"
	"time"

	pkgconfig "github.com/utafrali/ReviewSentiment/pkg/config"
	"github.com/utafrali/ReviewSentiment/pkg/database"
	"github.com/utafrali/ReviewSentiment/pkg/logger"
)

// PlaceholderAPIKey is the sample key shipped in example env files. It is
// treated the same as an empty key.
const PlaceholderAPIKey = "gsk_YOUR_GROQ_API_KEY"

// Config holds all configuration for the review sentiment service.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"review-sentiment"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort           int           `env:"HTTP_PORT" envDefault:"8000"`
	HTTPReadTimeout    time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout   time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	HTTPRequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"25s"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	HTTPCacheMaxAge    time.Duration `env:"HTTP_CACHE_MAX_AGE" envDefault:"60s"`

	// PostgreSQL
	DatabaseURL  string `env:"DATABASE_URL"`
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"sentiment"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"sentiment_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"sentiment_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns        int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	SlowQueryMs       int           `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`

	// LLM
	UseLLMAnalysis        bool          `env:"USE_LLM_ANALYSIS" envDefault:"true"`
	GroqAPIKey            string        `env:"GROQ_API_KEY"`
	GroqBaseURL           string        `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	GroqModel             string        `env:"GROQ_MODEL" envDefault:"llama-3.3-70b-versatile"`
	LLMMaxTokens          int           `env:"LLM_MAX_TOKENS" envDefault:"1024"`
	LLMTemperature        float32       `env:"LLM_TEMPERATURE" envDefault:"0.1"`
	LLMTimeout            time.Duration `env:"LLM_TIMEOUT" envDefault:"15s"`
	LLMThrottleDelay      time.Duration `env:"LLM_THROTTLE_DELAY" envDefault:"1s"`
	LLMBreakerMaxFailures uint32        `env:"LLM_BREAKER_MAX_FAILURES" envDefault:"5"`
	LLMBreakerOpenTimeout time.Duration `env:"LLM_BREAKER_OPEN_TIMEOUT" envDefault:"30s"`

	// Redis
	RedisEnabled   bool          `env:"REDIS_ENABLED" envDefault:"false"`
	RedisHost      string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort      int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	ReviewCacheTTL time.Duration `env:"REVIEW_CACHE_TTL" envDefault:"10m"`

	// Kafka
	KafkaEnabled       bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers       []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaConsumerGroup string   `env:"KAFKA_CONSUMER_GROUP" envDefault:"review-sentiment"`

	// Rate limiting on review submission
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation); empty disables them.
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8,::1/128" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load review-sentiment config: %w", err)
	}
	return cfg, nil
}

// Validate checks the parsed values.
func (c *Config) Validate() error {
	var errs []error

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP port: %d", c.HTTPPort))
	}
	if c.DatabaseURL == "" && c.PostgresHost == "" {
		errs = append(errs, errors.New("DATABASE_URL or POSTGRES_HOST is required"))
	}
	if c.DBMinConns > c.DBMaxConns {
		errs = append(errs, fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns))
	}
	if c.LLMMaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("LLM_MAX_TOKENS must be positive, got %d", c.LLMMaxTokens))
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		errs = append(errs, fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2, got %g", c.LLMTemperature))
	}
	if c.LLMTimeout <= 0 {
		errs = append(errs, fmt.Errorf("LLM_TIMEOUT must be positive, got %s", c.LLMTimeout))
	}
	if c.LLMThrottleDelay < 0 {
		errs = append(errs, fmt.Errorf("LLM_THROTTLE_DELAY must not be negative, got %s", c.LLMThrottleDelay))
	}
	if c.HTTPRequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("HTTP_REQUEST_TIMEOUT must not be negative, got %s", c.HTTPRequestTimeout))
	}
	if llmBudget := c.LLMTimeout + c.LLMThrottleDelay; c.HTTPRequestTimeout > 0 && c.HTTPRequestTimeout <= llmBudget {
		errs = append(errs, fmt.Errorf("HTTP_REQUEST_TIMEOUT (%s) must exceed LLM_TIMEOUT + LLM_THROTTLE_DELAY (%s)", c.HTTPRequestTimeout, llmBudget))
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is set"))
	}
	if c.HTTPCacheMaxAge < 0 {
		errs = append(errs, fmt.Errorf("HTTP_CACHE_MAX_AGE must not be negative, got %s", c.HTTPCacheMaxAge))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive, got %g/%d", c.RateLimitRPS, c.RateLimitBurst))
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		errs = append(errs, fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate))
	}

	return errors.Join(errs...)
}

// LLMEnabled reports whether the classifier should call the LLM at all.
func (c *Config) LLMEnabled() bool {
	return c.UseLLMAnalysis && c.GroqAPIKey != "" && c.GroqAPIKey != PlaceholderAPIKey
}

// Postgres returns the pool settings derived from the config.
func (c *Config) Postgres() database.PostgresConfig {
	return database.PostgresConfig{
		URL:             c.DatabaseURL,
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: c.DBMaxConnLifetime,
		MaxConnIdleTime: c.DBMaxConnIdleTime,
	}
}

// Redis returns the Redis connection settings.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:        c.RedisHost,
		Port:        c.RedisPort,
		Password:    c.RedisPassword,
		DB:          c.RedisDB,
		DialTimeout: 5 * time.Second,
	}
}

// SlowQueryThreshold returns LOG_SLOW_QUERY_MS as a duration.
func (c *Config) SlowQueryThreshold() time.Duration {
	return time.Duration(c.SlowQueryMs) * time.Millisecond
}
