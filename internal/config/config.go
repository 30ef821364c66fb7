package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings. Every field has a development
// default so the binary starts with an empty environment; production
// deployments set the ones that matter.
type Config struct {
	Port         string
	DatabasePath string

	JWTSecret string
	TokenTTL  time.Duration

	AdminKey string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	MailFromName string
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in first when present; a missing file is
// not an error.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:         envOrDefault("PORT", "8080"),
		DatabasePath: envOrDefault("DATABASE_PATH", "doma.db"),

		JWTSecret: envOrDefault("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:  envDuration("TOKEN_TTL", 24*time.Hour),

		AdminKey: os.Getenv("ADMIN_API_KEY"),

		SMTPHost:     envOrDefault("SMTP_HOST", "localhost"),
		SMTPPort:     envInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     envOrDefault("MAIL_FROM", "noreply@doma.local"),
		MailFromName: envOrDefault("MAIL_FROM_NAME", "DOMA Marketplace"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
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

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
