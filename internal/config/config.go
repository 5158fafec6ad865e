package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string
	MigrateOnStart     bool

	LogFormat        string
	LogLevel         string
	MetricsNamespace string
	MetricsEnabled   bool
	MetricsBuckets   string
	TracingEnabled   bool
	OTLPEndpoint     string
	TracingSampling  float64

	TenantHeader     string
	TenantRootDomain string
	TenantDefault    string
	TenantRequired   bool

	LoyaltyExcludedCategories []string
	LoyaltyMaxRedeemBps       int

	CheckoutTimeout      time.Duration
	IdempotencyTTL       time.Duration
	QuoteRateLimitMax    int
	QuoteRateLimitWindow time.Duration
	BodyLimitBytes       int64
	FinalizeLockTTL      time.Duration

	FlatTaxBreakerThreshold int
	FlatTaxBreakerCooldown  time.Duration
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        strings.TrimSpace(k.String("DATABASE_URL")),
		RedisURL:           strings.TrimSpace(k.String("REDIS_URL")),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		MigrateOnStart:     parseBool(k.String("MIGRATE_ON_START"), false),

		LogFormat:        valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
		LogLevel:         valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
		MetricsNamespace: valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "wholesale"),
		MetricsEnabled:   parseBool(k.String("OBS_ENABLE_PROMETHEUS"), true),
		MetricsBuckets:   k.String("OBS_METRICS_BUCKETS_MS"),
		TracingEnabled:   parseBool(k.String("OBS_ENABLE_TRACING"), false),
		OTLPEndpoint:     strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
		TracingSampling:  parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1.0),

		TenantHeader:     valueOrDefault(k.String("TENANT_HEADER"), "X-Tenant-ID"),
		TenantRootDomain: strings.TrimSpace(k.String("TENANT_ROOT_DOMAIN")),
		TenantDefault:    strings.TrimSpace(k.String("TENANT_DEFAULT")),
		TenantRequired:   parseBool(k.String("TENANT_REQUIRED"), false),

		LoyaltyExcludedCategories: splitAndTrim(valueOrDefault(k.String("LOYALTY_EXCLUDED_CATEGORIES"), "tobacco")),
		LoyaltyMaxRedeemBps:       parseInt(k.String("LOYALTY_MAX_REDEEM_BPS"), 5000),

		CheckoutTimeout:      parseDuration(k.String("CHECKOUT_TIMEOUT"), "5s"),
		IdempotencyTTL:       parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		QuoteRateLimitMax:    parseInt(k.String("QUOTE_RATE_LIMIT_MAX"), 60),
		QuoteRateLimitWindow: parseDuration(k.String("QUOTE_RATE_LIMIT_WINDOW"), "1m"),
		BodyLimitBytes:       int64(parseInt(k.String("BODY_LIMIT_BYTES"), 1<<20)),
		FinalizeLockTTL:      parseDuration(k.String("FINALIZE_LOCK_TTL"), "10s"),

		FlatTaxBreakerThreshold: parseInt(k.String("FLAT_TAX_BREAKER_THRESHOLD"), 5),
		FlatTaxBreakerCooldown:  parseDuration(k.String("FLAT_TAX_BREAKER_COOLDOWN"), "10s"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.LoyaltyMaxRedeemBps < 0 || cfg.LoyaltyMaxRedeemBps > 10000 {
		return nil, fmt.Errorf("LOYALTY_MAX_REDEEM_BPS must be between 0 and 10000, got %d", cfg.LoyaltyMaxRedeemBps)
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func parseInt(value string, fallback int) int {
	if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		return parsed
	}
	return fallback
}

func parseFloat(value string, fallback float64) float64 {
	if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
		return parsed
	}
	return fallback
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]*string, len(env))
	for key := range env {
		if prev, ok := os.LookupEnv(key); ok {
			original[key] = &prev
		} else {
			original[key] = nil
		}
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]*string) error {
	var errs []string
	for key, value := range values {
		var err error
		if value == nil {
			err = os.Unsetenv(key)
		} else {
			err = os.Setenv(key, *value)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
