package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL string
	HTTPAddr    string
	LogLevel    string
	Environment string

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	CronSpecDispatch     string        // Sweep cadence for the report dispatcher
	DefaultIntervalHours int           // Cadence between recurring sends after the first anchor
	DispatchBatchLimit   int           // Max due schedules handled per sweep
	ClaimStaleAfter      time.Duration // A claim older than this is treated as crashed
	MaxSendAttempts      int           // Consecutive failures before a schedule is disabled
	SendTimeout          time.Duration // Budget for a single SMTP send
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	cfg.DBMaxOpenConns, err = intFromEnv("DB_MAX_OPEN_CONNS", 25)
	if err != nil {
		return nil, err
	}

	cfg.DBMaxIdleConns, err = intFromEnv("DB_MAX_IDLE_CONNS", 25)
	if err != nil {
		return nil, err
	}

	cfg.DBConnMaxLifetime, err = durationFromEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg.DBConnMaxIdleTime, err = durationFromEnv("DB_CONN_MAX_IDLE_TIME", time.Minute)
	if err != nil {
		return nil, err
	}

	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP_HOST is not set")
	}

	smtpPortStr := os.Getenv("SMTP_PORT")
	if smtpPortStr == "" {
		smtpPortStr = "587"
	}
	cfg.SMTPPort, err = strconv.Atoi(smtpPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	cfg.SMTPUsername = os.Getenv("SMTP_USERNAME")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")

	cfg.SMTPFrom = os.Getenv("SMTP_FROM")
	if cfg.SMTPFrom == "" {
		return nil, fmt.Errorf("SMTP_FROM is not set")
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.CronSpecDispatch = os.Getenv("CRON_SPEC_DISPATCH")
	if cfg.CronSpecDispatch == "" {
		cfg.CronSpecDispatch = "* * * * *" // Default: sweep every minute
	}

	cfg.DefaultIntervalHours, err = intFromEnv("DEFAULT_INTERVAL_HOURS", 6)
	if err != nil {
		return nil, err
	}
	if cfg.DefaultIntervalHours <= 0 {
		return nil, fmt.Errorf("DEFAULT_INTERVAL_HOURS must be positive")
	}

	cfg.DispatchBatchLimit, err = intFromEnv("DISPATCH_BATCH_LIMIT", 50)
	if err != nil {
		return nil, err
	}

	cfg.MaxSendAttempts, err = intFromEnv("MAX_SEND_ATTEMPTS", 5)
	if err != nil {
		return nil, err
	}

	cfg.ClaimStaleAfter, err = durationFromEnv("CLAIM_STALE_AFTER", 10*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg.SendTimeout, err = durationFromEnv("SEND_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func intFromEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func durationFromEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
