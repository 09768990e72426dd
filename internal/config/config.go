package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all configuration for the service
type Config struct {
	Port            string
	GinMode         string
	RedisURL        string
	AdminAPIKey     string
	TMDBAPIKeys     []string // several keys are used round-robin
	TMDBBaseURL     string
	TMDBImageBase   string
	Language        string
	ReviewsLanguage string
	HTTPTimeout     time.Duration
	TUILogFile      string
}

// ErrMissingAPIKey is returned by Validate when TMDB_API_KEY is empty
var ErrMissingAPIKey = errors.New("TMDB_API_KEY is required")

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment win.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("Could not load .env file")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only
func FromEnv() *Config {
	tmdbKeys := []string{}
	if keyEnv := os.Getenv("TMDB_API_KEY"); keyEnv != "" {
		for _, k := range strings.Split(keyEnv, ",") {
			if trimmed := strings.TrimSpace(k); trimmed != "" {
				tmdbKeys = append(tmdbKeys, trimmed)
			}
		}
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		GinMode:         getEnv("GIN_MODE", "debug"),
		RedisURL:        os.Getenv("REDIS_URL"),
		AdminAPIKey:     os.Getenv("ADMIN_API_KEY"),
		TMDBAPIKeys:     tmdbKeys,
		TMDBBaseURL:     getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		TMDBImageBase:   getEnv("TMDB_IMAGE_BASE", "https://image.tmdb.org/t/p/w500"),
		Language:        getEnv("CATALOG_LANGUAGE", "fr-FR"),
		ReviewsLanguage: getEnv("REVIEWS_LANGUAGE", "en-US"),
		HTTPTimeout:     getDuration("HTTP_TIMEOUT", 10*time.Second),
		TUILogFile:      os.Getenv("TUI_LOG_FILE"),
	}
}

// Validate reports configuration that makes the catalog unusable
func (c *Config) Validate() error {
	if len(c.TMDBAPIKeys) == 0 {
		return ErrMissingAPIKey
	}
	return nil
}

// AnalyticsEnabled reports whether request analytics are stored in Redis
func (c *Config) AnalyticsEnabled() bool {
	return c.RedisURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid duration, using default")
		return defaultValue
	}
	return d
}
