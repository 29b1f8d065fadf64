// Package config loads process configuration from environment variables.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port string

	DatabaseURL string
	RedisURL    string

	GeminiAPIKey string
	GitHubToken  string

	AllowedOrigins []string

	CacheTTLSeconds   int
	WorkerConcurrency int
	CloneBaseDir      string
}

// Load reads configuration from environment variables, exiting the process
// if a required variable is missing. godotenv.Load() is expected to have
// already been attempted by the caller before Load runs.
func Load() *Config {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		slog.Error("missing required environment variable", "var", "DATABASE_URL")
		os.Exit(1)
	}

	return &Config{
		Port: envOrDefault("PORT", "8000"),

		DatabaseURL: databaseURL,
		RedisURL:    envOrDefault("REDIS_URL", "redis://localhost:6379"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GitHubToken:  os.Getenv("GITHUB_TOKEN"),

		AllowedOrigins: splitCSV(envOrDefault("ALLOWED_ORIGINS", "*")),

		CacheTTLSeconds:   envOrDefaultInt("CACHE_TTL_SECONDS", 3600),
		WorkerConcurrency: envOrDefaultInt("WORKER_CONCURRENCY", 3),
		CloneBaseDir:      envOrDefault("CLONE_BASE_DIR", os.TempDir()),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
