package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"octofit.app/tracker/pkg/database"
	"octofit.app/tracker/pkg/logger"
	"octofit.app/tracker/pkg/mailer"
)

type Config struct {
	AppEnv         string
	Port           string
	GinMode        string
	AllowedOrigins string
	FrontendURL    string

	Database database.Config
	Log      logger.Options

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	JWTTTL    time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	GeminiAPIKey string
	GeminiModel  string

	MeiliSearchHost string
	MeiliMasterKey  string

	CloudinaryURL string

	SMTP mailer.Config

	ReminderSchedule   string
	CoachRatePerMinute int
	SuggestionCooldown time.Duration
	LeaderboardTTL     time.Duration

	AdminEmail    string
	AdminPassword string
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),

		Database: database.Config{
			Type:     getEnv("DB_TYPE", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     os.Getenv("DB_PORT"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASS"),
			Name:     getEnv("DB_NAME", "octofit"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Path:     getEnv("DB_PATH", "octofit.db"),
			LogLevel: getEnv("DB_LOG_LEVEL", "warn"),
		},

		Log: logger.Options{
			Level:    getEnv("LOG_LEVEL", "info"),
			Path:     os.Getenv("LOG_PATH"),
			Compress: getEnv("LOG_COMPRESS", "false") == "true",
		},

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		JWTSecret: getEnv("JWT_SECRET", "change-me"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		MeiliSearchHost: os.Getenv("MEILI_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),

		SMTP: mailer.Config{
			Host:     os.Getenv("SMTP_HOST"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "noreply@octofit.app"),
			FromName: getEnv("SMTP_FROM_NAME", "OctoFit"),
			TLS:      getEnv("SMTP_TLS", "true") == "true",
		},

		ReminderSchedule: getEnv("REMINDER_SCHEDULE", "0 18 * * *"),

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@octofit.app"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.SMTP.Port, err = getInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	if cfg.CoachRatePerMinute, err = getInt("COACH_RATE_PER_MINUTE", 6); err != nil {
		return nil, err
	}
	if cfg.Log.MaxSizeMB, err = getInt("LOG_MAX_SIZE_MB", 100); err != nil {
		return nil, err
	}
	if cfg.Log.MaxBackups, err = getInt("LOG_MAX_BACKUPS", 3); err != nil {
		return nil, err
	}
	if cfg.Log.MaxAgeDays, err = getInt("LOG_MAX_AGE_DAYS", 7); err != nil {
		return nil, err
	}

	cfg.JWTTTL, err = parseDuration(getEnv("JWT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	cfg.SuggestionCooldown, err = parseDuration(getEnv("SUGGESTION_COOLDOWN", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SUGGESTION_COOLDOWN: %w", err)
	}
	cfg.LeaderboardTTL, err = parseDuration(getEnv("LEADERBOARD_CACHE_TTL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEADERBOARD_CACHE_TTL: %w", err)
	}
	cfg.Database.ConnMaxLifetime, err = parseDuration(getEnv("DB_CONN_MAX_LIFETIME", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}
