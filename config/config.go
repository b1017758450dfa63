package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// API Configuration
	APIPort        string
	APIHost        string
	APIEnvironment string

	// CORS
	CORSAllowedOrigins []string

	// Logging
	LogLevel string

	// Session tokens
	SessionSecret   string
	SessionTTLHours int

	// Quota
	FreeDailyLimit int

	// Local model (Ollama, OpenAI compatible)
	LocalModelEnabled        bool
	LocalModelName           string
	LocalModelBaseURL        string
	LocalModelTimeoutSeconds int

	// Hosted model
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	// Stripe
	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceID       string
	PublicBaseURL       string

	// Storage
	StorageType       string // file, redis, s3
	StorageDir        string
	StorageFailClosed bool
	RedisURL          string
	S3Bucket          string
	S3Endpoint        string
	AWSRegion         string
	AWSAccessKeyID    string
	AWSSecretKey      string

	// Rate Limiting
	RateLimitRequestsPerMinute int
	RateLimitBurst             int

	// Sentry
	SentryDSN         string
	SentryEnvironment string
}

// Load loads configuration from environment variables.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		// API
		APIPort:        getEnv("API_PORT", "8080"),
		APIHost:        getEnv("API_HOST", "0.0.0.0"),
		APIEnvironment: getEnv("API_ENVIRONMENT", "development"),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS"),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		SessionSecret:   getEnv("SESSION_SECRET", "change-this-in-production"),
		SessionTTLHours: getEnvAsInt("SESSION_TTL_HOURS", 24),

		FreeDailyLimit: getEnvAsInt("FREE_DAILY_LIMIT", 5),

		// Local model
		LocalModelEnabled:        getEnvAsBool("LOCAL_MODEL_ENABLED", false),
		LocalModelName:           getEnv("LOCAL_MODEL_NAME", "llama3.1:8b"),
		LocalModelBaseURL:        getEnv("LOCAL_MODEL_BASE_URL", "http://localhost:11434/v1"),
		LocalModelTimeoutSeconds: getEnvAsInt("LOCAL_MODEL_TIMEOUT_SECONDS", 60),

		// Hosted model
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),

		// Stripe
		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripePriceID:       getEnv("STRIPE_PRICE_ID", ""),
		PublicBaseURL:       strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),

		// Storage
		StorageType:       getEnv("STORAGE_TYPE", "file"),
		StorageDir:        getEnv("STORAGE_DIR", "./data"),
		StorageFailClosed: getEnvAsBool("STORAGE_FAIL_CLOSED", false),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:    getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),

		// Rate Limiting
		RateLimitRequestsPerMinute: getEnvAsInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 60),
		RateLimitBurst:             getEnvAsInt("RATE_LIMIT_BURST", 10),

		// Sentry
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		SentryEnvironment: getEnv("SENTRY_ENVIRONMENT", "development"),
	}
}

// StripeConfigured reports whether every setting needed for the upgrade path is present.
func (c *Config) StripeConfigured() bool {
	return c.StripeSecretKey != "" && c.StripePriceID != "" && c.PublicBaseURL != ""
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsSlice splits a comma separated value, dropping blank entries
func getEnvAsSlice(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
