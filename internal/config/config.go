package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	DatabaseURL string
	ServerPort  string
	FrontendURL string

	OpenAIKey  string
	AIProvider string
	AIModel    string
	AIBaseURL  string

	RabbitMQURL      string
	RabbitMQPrefetch int
	RedisURL         string

	// Pipeline tunables
	BatchSize        int
	MaxArticleChars  int
	MaxItemsPerFeed  int
	FetchConcurrency int
	FetchTimeout     time.Duration
	ProviderTimeout  time.Duration

	WorkerDebugMode bool
	ServerDebugMode bool
	OTELEnabled     bool
	OTELEndpoint    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:3000"),
		OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
		AIProvider:       getEnv("AI_PROVIDER", "openai"),
		AIModel:          getEnv("AI_MODEL", ""),
		AIBaseURL:        getEnv("AI_BASE_URL", ""),
		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch: getEnvInt("RABBITMQ_PREFETCH", 1),
		RedisURL:         getEnv("REDIS_URL", ""),
		BatchSize:        getEnvInt("PIPELINE_BATCH_SIZE", 20),
		MaxArticleChars:  getEnvInt("PIPELINE_MAX_ARTICLE_CHARS", 8000),
		MaxItemsPerFeed:  getEnvInt("PIPELINE_MAX_ITEMS_PER_FEED", 10),
		FetchConcurrency: getEnvInt("PIPELINE_FETCH_CONCURRENCY", 5),
		FetchTimeout:     getEnvDuration("PIPELINE_FETCH_TIMEOUT", 30*time.Second),
		ProviderTimeout:  getEnvDuration("PIPELINE_PROVIDER_TIMEOUT", 120*time.Second),
		WorkerDebugMode:  getEnvBool("WORKER_DEBUG_MODE", false),
		ServerDebugMode:  getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:      getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required for pipeline job queueing")
	}

	if cfg.BatchSize < 1 {
		return nil, fmt.Errorf("PIPELINE_BATCH_SIZE must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
