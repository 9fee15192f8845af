package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/SignalBridge/internal/database"
)

// Config holds all application configuration
type Config struct {
	TelegramToken  string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `env:"TELEGRAM_CHAT_ID" envDefault:"0"`

	RiskConfigFile string `env:"RISK_CONFIG_FILE" envDefault:"risk_config.json" validate:"required"`

	VenueMode        string  `env:"VENUE_MODE" envDefault:"paper" validate:"oneof=paper bridge"`
	BridgeURL        string  `env:"VENUE_BRIDGE_URL" envDefault:"http://127.0.0.1:8228" validate:"url"`
	BridgeToken      string  `env:"VENUE_BRIDGE_TOKEN"`
	VenueTimeout     int     `env:"VENUE_TIMEOUT" envDefault:"15" validate:"gt=0"` // seconds
	VenueRPS         int     `env:"VENUE_RPS" envDefault:"5" validate:"gt=0"`
	PaperInstruments string  `env:"PAPER_INSTRUMENTS_FILE"`
	PaperBalance     float64 `env:"PAPER_BALANCE" envDefault:"10000" validate:"gte=0"`

	FallbackVolume   float64  `env:"FALLBACK_VOLUME" envDefault:"0.1" validate:"gt=0"`
	RescaleThreshold float64  `env:"RESCALE_THRESHOLD" envDefault:"30000" validate:"gt=0"`
	RescaleDivisor   float64  `env:"RESCALE_DIVISOR" envDefault:"100000" validate:"gt=0"`
	RescaleExempt    []string `env:"RESCALE_EXEMPT" envDefault:"US30,JP225,BTCUSD,USTEC"`

	JournalDriver string `env:"JOURNAL_DRIVER" validate:"omitempty,oneof=postgres sqlite"`
	JournalDSN    string `env:"JOURNAL_DSN" validate:"required_if=JournalDriver sqlite"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=trace debug info warn error"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console" validate:"oneof=console json"`
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}
	return FromEnv()
}

// FromEnv reads and validates the process environment without touching .env
func FromEnv() (*Config, error) {
	var cfg Config

	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatID = getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0)
	cfg.RiskConfigFile = getEnvWithDefault("RISK_CONFIG_FILE", "risk_config.json")
	cfg.VenueMode = strings.ToLower(getEnvWithDefault("VENUE_MODE", "paper"))
	cfg.BridgeURL = getEnvWithDefault("VENUE_BRIDGE_URL", "http://127.0.0.1:8228")
	cfg.BridgeToken = os.Getenv("VENUE_BRIDGE_TOKEN")
	cfg.VenueTimeout = getEnvIntWithDefault("VENUE_TIMEOUT", 15)
	cfg.VenueRPS = getEnvIntWithDefault("VENUE_RPS", 5)
	cfg.PaperInstruments = os.Getenv("PAPER_INSTRUMENTS_FILE")
	cfg.PaperBalance = getEnvFloatWithDefault("PAPER_BALANCE", 10000)
	cfg.FallbackVolume = getEnvFloatWithDefault("FALLBACK_VOLUME", 0.1)
	cfg.RescaleThreshold = getEnvFloatWithDefault("RESCALE_THRESHOLD", 30000)
	cfg.RescaleDivisor = getEnvFloatWithDefault("RESCALE_DIVISOR", 100000)
	cfg.RescaleExempt = getEnvListWithDefault("RESCALE_EXEMPT", []string{"US30", "JP225", "BTCUSD", "USTEC"})
	cfg.JournalDriver = strings.ToLower(os.Getenv("JOURNAL_DRIVER"))
	cfg.JournalDSN = os.Getenv("JOURNAL_DSN")
	cfg.LogLevel = strings.ToLower(getEnvWithDefault("LOG_LEVEL", "info"))
	cfg.LogFormat = strings.ToLower(getEnvWithDefault("LOG_FORMAT", "console"))

	if cfg.JournalDriver == database.DriverPostgres && cfg.JournalDSN == "" {
		cfg.JournalDSN = database.ConnectionParams{
			Host:     getEnvWithDefault("DB_HOST", "localhost"),
			Port:     getEnvWithDefault("DB_PORT", "5432"),
			User:     getEnvWithDefault("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   getEnvWithDefault("DB_NAME", "signalbridge"),
			SSLMode:  getEnvWithDefault("DB_SSLMODE", "disable"),
		}.DSN()
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// RequireTelegram reports a missing bot token
func (c *Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is not set")
	}
	return nil
}

// VenueTimeoutDuration is the per-call venue bound
func (c *Config) VenueTimeoutDuration() time.Duration {
	return time.Duration(c.VenueTimeout) * time.Second
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvListWithDefault(key string, defaultValue []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, strings.ToUpper(item))
		}
	}
	return out
}
