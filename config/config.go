package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/joy095/workspace/logger"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// AppConfig is the process configuration, read once at startup.
type AppConfig struct {
	Port        string
	DatabaseURL string
	StoreDriver string
	SeedDemo    bool
	RedisURL    string
	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins []string
	BookingRate string
}

// LoadEnv loads variables from a .env file when one exists.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logger.DebugLogger.Debugf("No .env file loaded: %v", err)
	}
}

// Load builds an AppConfig from the environment.
func Load() *AppConfig {
	cfg := &AppConfig{
		Port:        Get("PORT", "8081"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		JWTSecret:   Get("JWT_SECRET", "default-insecure-secret-only-for-development"),
		TokenTTL:    GetDuration("TOKEN_TTL", 12*time.Hour),
		BookingRate: Get("BOOKING_RATE", "20-1m"),
		SeedDemo:    strings.EqualFold(os.Getenv("SEED_DEMO"), "true"),
	}

	cfg.StoreDriver = strings.ToLower(os.Getenv("STORE_DRIVER"))
	if cfg.StoreDriver == "" {
		if cfg.DatabaseURL != "" {
			cfg.StoreDriver = StoreDriverPostgres
		} else {
			cfg.StoreDriver = StoreDriverMemory
		}
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if os.Getenv("JWT_SECRET") == "" {
		logger.WarnLogger.Warn("JWT_SECRET environment variable not set, using development secret")
	}

	return cfg
}

// Get returns the value of key or fallback when it is unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetDuration parses key as a time.Duration, returning fallback on absence or parse error.
func GetDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.WarnLogger.Warnf("Invalid duration for %s (%q): %v, using %v", key, v, err, fallback)
		return fallback
	}
	return d
}
