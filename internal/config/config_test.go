package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "review-sentiment", cfg.ServiceName)
	assert.Equal(t, 8000, cfg.HTTPPort)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.GroqModel)
	assert.Equal(t, 1024, cfg.LLMMaxTokens)
	assert.InDelta(t, 0.1, cfg.LLMTemperature, 1e-6)
	assert.Equal(t, 15*time.Second, cfg.LLMTimeout)
	assert.Equal(t, time.Second, cfg.LLMThrottleDelay)
	assert.Equal(t, uint32(5), cfg.LLMBreakerMaxFailures)
	assert.Equal(t, 30*time.Second, cfg.LLMBreakerOpenTimeout)
	assert.False(t, cfg.RedisEnabled)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, 500*time.Millisecond, cfg.SlowQueryThreshold())
	assert.Equal(t, time.Minute, cfg.HTTPCacheMaxAge)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9001")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/reviews")
	t.Setenv("GROQ_API_KEY", "gsk_live")
	t.Setenv("LLM_TIMEOUT", "3s")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.HTTPPort)
	assert.Equal(t, 3*time.Second, cfg.LLMTimeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)

	pg := cfg.Postgres()
	assert.Equal(t, "postgres://u:p@db:5432/reviews", pg.DSN())
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		msg  string
	}{
		{name: "port", key: "HTTP_PORT", val: "70000", msg: "invalid HTTP port"},
		{name: "log level", key: "LOG_LEVEL", val: "loud", msg: "unknown log level"},
		{name: "temperature", key: "LLM_TEMPERATURE", val: "2.5", msg: "LLM_TEMPERATURE"},
		{name: "max tokens", key: "LLM_MAX_TOKENS", val: "0", msg: "LLM_MAX_TOKENS"},
		{name: "timeout", key: "LLM_TIMEOUT", val: "0s", msg: "LLM_TIMEOUT"},
		{name: "sample rate", key: "OTEL_SAMPLE_RATE", val: "1.5", msg: "OTEL_SAMPLE_RATE"},
		{name: "rate limit", key: "RATE_LIMIT_RPS", val: "0", msg: "RATE_LIMIT_RPS"},
		{name: "cache max age", key: "HTTP_CACHE_MAX_AGE", val: "-1s", msg: "HTTP_CACHE_MAX_AGE"},
		{name: "request timeout below llm budget", key: "HTTP_REQUEST_TIMEOUT", val: "16s", msg: "must exceed LLM_TIMEOUT + LLM_THROTTLE_DELAY"},
		{name: "llm timeout above request timeout", key: "LLM_TIMEOUT", val: "60s", msg: "HTTP_REQUEST_TIMEOUT (25s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoad_RequestTimeoutZeroSkipsLLMBudget(t *testing.T) {
	t.Setenv("HTTP_REQUEST_TIMEOUT", "0s")
	t.Setenv("LLM_TIMEOUT", "60s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.HTTPRequestTimeout)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("LLM_TIMEOUT", "soon")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestConfig_LLMEnabled(t *testing.T) {
	tests := []struct {
		name    string
		use     bool
		key     string
		enabled bool
	}{
		{name: "enabled with key", use: true, key: "gsk_real", enabled: true},
		{name: "flag off", use: false, key: "gsk_real", enabled: false},
		{name: "empty key", use: true, key: "", enabled: false},
		{name: "placeholder key", use: true, key: PlaceholderAPIKey, enabled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{UseLLMAnalysis: tt.use, GroqAPIKey: tt.key}
			assert.Equal(t, tt.enabled, cfg.LLMEnabled())
		})
	}
}

func TestConfig_Redis(t *testing.T) {
	cfg := &Config{RedisHost: "cache", RedisPort: 6380, RedisDB: 2}
	assert.Equal(t, "cache:6380", cfg.Redis().Addr())
	assert.Equal(t, 2, cfg.Redis().DB)
}
