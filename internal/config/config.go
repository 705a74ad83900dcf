package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	MongoURI       string
	PostgresURI    string
	RedisURI       string
	Port           string
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL
	Environment    string   // ENV: production, development, etc.

	// ModeratorIDs is the fixed set of chat user identifiers allowed to review
	// vents. Injected here so nothing reads it from ambient process state.
	ModeratorIDs []string

	// SessionTTL is how long an abandoned conversation draft survives in Redis.
	SessionTTL time.Duration
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseList(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		frontend := strings.TrimSpace(getEnv("FRONTEND_URL", "http://localhost:3000"))
		if frontend != "" {
			allowedOrigins = append(allowedOrigins, frontend)
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	sessionTTL := 30 * time.Minute
	if minutes, err := strconv.Atoi(getEnv("SESSION_TTL_MINUTES", "")); err == nil && minutes > 0 {
		sessionTTL = time.Duration(minutes) * time.Minute
	}

	return &Config{
		// Empty MongoURI means "run on the in-memory record store" (local dev)
		MongoURI:       getEnv("MONGODB_URI", getEnv("MONGO_URI", "")),
		PostgresURI:    getEnv("POSTGRES_URI", "postgres://localhost:5432/ventline?sslmode=disable"),
		RedisURI:       getEnv("REDIS_URI", "redis://localhost:6379/0"),
		Port:           getEnv("PORT", "8080"),
		Environment:    env,
		AllowedOrigins: allowedOrigins,
		ModeratorIDs:   parseList(getEnv("MODERATOR_IDS", "")),
		SessionTTL:     sessionTTL,
	}
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
