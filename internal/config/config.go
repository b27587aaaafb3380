package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                string
	DBUrl               string
	JWTSecret           string
	WebhookSecret       string
	UnknownActionPolicy string
	BusinessTimezone    string
	PastGraceMinutes    int
	AppEnv              string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		DBUrl:               getEnv("DB_URL", ""),
		JWTSecret:           jwtSecret,
		WebhookSecret:       getEnv("WEBHOOK_SECRET", ""),
		UnknownActionPolicy: strings.ToLower(getEnv("WEBHOOK_UNKNOWN_ACTION", "reject")),
		BusinessTimezone:    getEnv("BUSINESS_TIMEZONE", "America/Los_Angeles"),
		PastGraceMinutes:    getEnvInt("PAST_GRACE_MINUTES", 10),
		AppEnv:              normalizeEnv(getEnv("APP_ENV", "production")),
	}

	if cfg.UnknownActionPolicy != "reject" && cfg.UnknownActionPolicy != "book" {
		return nil, fmt.Errorf("WEBHOOK_UNKNOWN_ACTION must be reject or book, got %q", cfg.UnknownActionPolicy)
	}
	if _, err := time.LoadLocation(cfg.BusinessTimezone); err != nil {
		return nil, fmt.Errorf("BUSINESS_TIMEZONE is not a valid IANA zone: %v", err)
	}

	return cfg, nil
}

// BusinessLocation resolves the configured display/parse timezone. LoadConfig
// already validated the name.
func (c *Config) BusinessLocation() *time.Location {
	loc, err := time.LoadLocation(c.BusinessTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}
