package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/farewatch/farewatch/internal/watcher"
)

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingClientID     ValidationError = "AMADEUS_CLIENT_ID is required"
	ErrMissingClientSecret ValidationError = "AMADEUS_CLIENT_SECRET is required"
	ErrInvalidMaxRetries   ValidationError = "AMADEUS_MAX_RETRIES must not be negative"
	ErrInvalidCurrency     ValidationError = "CURRENCY must be a 3-letter code"
)

// Config holds everything a run needs, read from the environment and an
// optional YAML plan file.
type Config struct {
	// Amadeus
	ClientID          string
	ClientSecret      string
	Env               string
	Currency          string
	MaxRetries        int
	RequestsPerSecond float64

	// Notification
	WebhookURL string

	// Cache
	CacheEnabled bool
	RedisHost    string
	RedisPort    string
	RedisTTL     time.Duration

	// Observability
	PushgatewayURL string
	LogLevel       string

	PlanPath string
	Plan     watcher.Plan
}

// Load reads .env (when present), then the environment, then the plan file.
// planPath wins over FAREWATCH_PLAN; with neither the built-in plan is used.
func Load(planPath string) (*Config, error) {
	// Missing .env is fine.
	_ = godotenv.Load()

	cfg := &Config{
		ClientID:          getEnv("AMADEUS_CLIENT_ID", ""),
		ClientSecret:      getEnv("AMADEUS_CLIENT_SECRET", ""),
		Env:               getEnv("AMADEUS_ENV", "test"),
		Currency:          getEnv("CURRENCY", "EUR"),
		MaxRetries:        getEnvAsInt("AMADEUS_MAX_RETRIES", 6),
		RequestsPerSecond: getEnvAsFloat("AMADEUS_RPS", 10),

		WebhookURL: getEnv("DISCORD_WEBHOOK_URL", ""),

		CacheEnabled: getEnvBool("CACHE_ENABLED", false),
		RedisHost:    getEnv("REDIS_HOST", "localhost"),
		RedisPort:    getEnv("REDIS_PORT", "6379"),
		RedisTTL:     getEnvDuration("REDIS_TTL", 30*time.Minute),

		PushgatewayURL: getEnv("PUSHGATEWAY_URL", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		PlanPath: planPath,
		Plan:     watcher.DefaultPlan(),
	}
	if cfg.PlanPath == "" {
		cfg.PlanPath = getEnv("FAREWATCH_PLAN", "")
	}

	if cfg.PlanPath != "" {
		plan, err := LoadPlan(cfg.PlanPath)
		if err != nil {
			return nil, err
		}
		cfg.Plan = plan
	}

	return cfg, nil
}

// LoadPlan reads a YAML plan. Keys absent from the file keep their defaults.
func LoadPlan(path string) (watcher.Plan, error) {
	plan := watcher.DefaultPlan()

	data, err := os.ReadFile(path)
	if err != nil {
		return plan, fmt.Errorf("failed to read plan %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return plan, fmt.Errorf("failed to parse plan %s: %w", path, err)
	}
	return plan, nil
}

func (c *Config) Validate() error {
	if c.ClientID == "" {
		return ErrMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrMissingClientSecret
	}
	if c.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}
	if len(c.Currency) != 3 {
		return ErrInvalidCurrency
	}
	return c.Plan.Validate()
}

func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
