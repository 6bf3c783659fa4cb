package config

import (
	"os"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Postgres PostgresConfig
	Sentry   SentryConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

type AuthConfig struct {
	JWTSecret        string
	JWTRefreshSecret string
	AccessExpiry     string
	RefreshExpiry    string
}

type PostgresConfig struct {
	DatabaseURL    string
	Host           string
	Port           string
	User           string
	Password       string
	Database       string
	SSLMode        string
	PoolMax        string
	IdleTimeout    string
	ConnectTimeout string
}

type SentryConfig struct {
	DSN string
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:           getenv("PORT", "8080"),
			Env:            getenv("APP_ENV", "development"),
			AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		},
		Auth: AuthConfig{
			JWTSecret:        os.Getenv("JWT_SECRET"),
			JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
			AccessExpiry:     getenv("JWT_ACCESS_EXPIRY", "15m"),
			RefreshExpiry:    getenv("JWT_REFRESH_EXPIRY", "168h"),
		},
		Postgres: PostgresConfig{
			DatabaseURL:    os.Getenv("DATABASE_URL"),
			Host:           getenv("PGHOST", "localhost"),
			Port:           getenv("PGPORT", "5432"),
			User:           os.Getenv("PGUSER"),
			Password:       os.Getenv("PGPASSWORD"),
			Database:       os.Getenv("PGDATABASE"),
			SSLMode:        getenv("PGSSLMODE", "disable"),
			PoolMax:        getenv("DB_POOL_MAX", "20"),
			IdleTimeout:    getenv("DB_IDLE_TIMEOUT", "30s"),
			ConnectTimeout: getenv("DB_CONNECT_TIMEOUT", "2s"),
		},
		Sentry: SentryConfig{
			DSN: os.Getenv("SENTRY_DSN"),
		},
	}
}

func (c ServerConfig) IsProduction() bool {
	return c.Env == "production"
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
