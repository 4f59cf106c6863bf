package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config carries every environment knob the service reads. Loaded once in main
// after godotenv has populated the process environment.
type Config struct {
	Port        string
	DatabaseURL string

	OpenAIAPIKey string
	OpenAIModel  string
	MaxRetries   int
	RetryDelay   time.Duration

	GoogleMapsAPIKey string

	ShopifyStoreDomain string
	ShopifyAccessToken string

	ReturnsPortalURL string

	RedisAddr     string
	RedisPassword string

	LogLevel string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		MaxRetries:         getEnvInt("MAX_RETRIES", 3),
		RetryDelay:         time.Duration(getEnvInt("RETRY_DELAY_MS", 500)) * time.Millisecond,
		GoogleMapsAPIKey:   os.Getenv("GOOGLE_MAPS_API_KEY"),
		ShopifyStoreDomain: os.Getenv("SHOPIFY_STORE_DOMAIN"),
		ShopifyAccessToken: os.Getenv("SHOPIFY_ACCESS_TOKEN"),
		ReturnsPortalURL:   getEnv("RETURNS_PORTAL_URL", "https://devoluciones.shameless.es"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
