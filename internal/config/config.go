package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"taskflow/internal/logger"
)

// Config keeps runtime settings for the server, bot and scheduler.
type Config struct {
	Port             string
	DatabaseURL      string
	Location         *time.Location
	ReminderInterval time.Duration
	SummaryTime      string
	CORSOrigins      string
	SeedCategories   bool

	RedisURL string
	CacheTTL time.Duration
	NATSURL  string

	TelegramToken  string
	TelegramChatID int64

	Log logger.Config
}

// Load reads configuration from the environment (and a .env file when present) with sane defaults.
func Load() (Config, error) {
	// a missing .env is fine, the environment still applies
	_ = godotenv.Load()

	cfg := Config{
		Port:           getEnv("APP_PORT", "8080"),
		DatabaseURL:    getEnv("DATABASE_URL", "taskflow.db"),
		SummaryTime:    getEnv("DAILY_SUMMARY_TIME", "08:00"),
		CORSOrigins:    getEnv("CORS_ORIGINS", "http://localhost:5173"),
		SeedCategories: getEnv("SEED_DEFAULT_CATEGORIES", "true") == "true",
		RedisURL:       getEnv("REDIS_URL", ""),
		NATSURL:        getEnv("NATS_URL", ""),
		TelegramToken:  getEnv("TELEGRAM_TOKEN", ""),
		Log: logger.Config{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			Output:     getEnv("LOG_OUTPUT", "stdout"),
			FilePath:   getEnv("LOG_FILE", "logs/taskflow.log"),
			MaxSize:    getEnvInt("LOG_MAX_SIZE", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAge:     getEnvInt("LOG_MAX_AGE", 30),
			Compress:   getEnv("LOG_COMPRESS", "true") == "true",
		},
	}

	loc, err := loadLocation(getEnv("TIMEZONE", "Local"))
	if err != nil {
		return cfg, err
	}
	cfg.Location = loc

	if cfg.ReminderInterval, err = parseDuration("REMINDER_INTERVAL", "1m"); err != nil {
		return cfg, err
	}
	if cfg.CacheTTL, err = parseDuration("CACHE_TTL", "5m"); err != nil {
		return cfg, err
	}

	// "off" disables the daily agenda message
	if cfg.SummaryTime == "off" {
		cfg.SummaryTime = ""
	} else if _, err := time.Parse("15:04", cfg.SummaryTime); err != nil {
		return cfg, fmt.Errorf("DAILY_SUMMARY_TIME must be HH:MM or off")
	}

	if raw := getEnv("TELEGRAM_CHAT_ID", ""); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("TELEGRAM_CHAT_ID must be numeric: %w", err)
		}
		cfg.TelegramChatID = id
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		return cfg, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration", key)
	}
	return d, nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	return loc, nil
}
