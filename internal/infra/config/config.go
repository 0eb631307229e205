package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	ModeMemory = "memory"
	ModeMongo  = "mongo"
	ModeKafka  = "kafka"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env                 string
	HTTPAddr            string
	AllowedOrigins      []string
	StorageMode         string
	MongoURI            string
	MongoDB             string
	SubmissionMode      string
	KafkaBrokers        []string
	KafkaTopicPrefix    string
	SubmitTimeout       time.Duration
	IdempotencyTTL      time.Duration
	OutboxPollInterval  time.Duration
	RetryBackoff        []time.Duration
	PricingPolicyFile   string
	ListingsFixtures    string
	PaymentRedirectBase string
	MetricsEnabled      bool
	ShutdownTimeout     time.Duration
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:                 getEnv("APP_ENV", "dev"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		StorageMode:         strings.ToLower(getEnv("STORAGE_MODE", ModeMemory)),
		MongoURI:            os.Getenv("MONGO_URI"),
		MongoDB:             getEnv("MONGO_DB", "staybook"),
		SubmissionMode:      strings.ToLower(getEnv("SUBMISSION_MODE", ModeMemory)),
		KafkaTopicPrefix:    getEnv("KAFKA_TOPIC_PREFIX", ""),
		PricingPolicyFile:   getEnv("PRICING_POLICY_FILE", "config/pricing.toml"),
		ListingsFixtures:    getEnv("LISTINGS_FIXTURES", "data/listings.json"),
		PaymentRedirectBase: os.Getenv("PAYMENT_REDIRECT_BASE"),
	}
	cfg.KafkaBrokers = splitList(getEnv("KAFKA_BROKERS", ""))
	cfg.AllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"))

	var err error
	if cfg.SubmitTimeout, err = parseDurationEnv("SUBMIT_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = parseDurationEnv("IDEMP_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.OutboxPollInterval, err = parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = parseDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.MetricsEnabled, err = parseBoolEnv("METRICS_ENABLED", true); err != nil {
		return Config{}, err
	}

	retryStr := getEnv("RETRY_BACKOFF", "1s,5s,30s")
	for _, raw := range strings.Split(retryStr, ",") {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}

	switch cfg.StorageMode {
	case ModeMemory:
	case ModeMongo:
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required when STORAGE_MODE=mongo")
		}
	default:
		return Config{}, fmt.Errorf("invalid STORAGE_MODE %q", cfg.StorageMode)
	}
	switch cfg.SubmissionMode {
	case ModeMemory:
	case ModeKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return Config{}, fmt.Errorf("KAFKA_BROKERS is required when SUBMISSION_MODE=kafka")
		}
	default:
		return Config{}, fmt.Errorf("invalid SUBMISSION_MODE %q", cfg.SubmissionMode)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s duration: must not be negative", key)
	}
	return d, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
