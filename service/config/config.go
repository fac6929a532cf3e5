package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultTxBaseURL is the explorer page a transaction id is appended to.
const DefaultTxBaseURL = "https://testnet-explorer.binance.org/tx/"

// Config holds all application configuration loaded from environment variables.
// Invalid values are reported together so a bad environment fails fast.
type Config struct {
	// Dashboard API configuration
	APIURL       string
	FetchTimeout time.Duration

	// Transaction detail links
	TxBaseURL string

	// Optional sources: a read-only Postgres database replaces the API
	// when set, NATS enables live refresh of the transaction history.
	DatabaseURL string
	NATSURL     string

	// Observability
	LogLevel    string
	MetricsAddr string

	// Wallet connected at startup, if any
	WalletAddress string
}

// LoadDotEnv reads variables from path into the environment without
// overriding ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from environment variables and validates it.
// Returns an error listing every invalid setting.
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []error

	cfg.APIURL = getEnvOrDefault("API_URL", "http://localhost:8080")
	cfg.TxBaseURL = getEnvOrDefault("TX_BASE_URL", DefaultTxBaseURL)
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.NATSURL = os.Getenv("NATS_URL")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")
	cfg.WalletAddress = os.Getenv("WALLET_ADDRESS")

	timeout, err := parseDuration("FETCH_TIMEOUT", "30s")
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.FetchTimeout = timeout
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MustLoad is like Load but panics if configuration is invalid.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks if the configuration is valid.
// This is useful for testing configuration without loading from env.
func (c *Config) Validate() error {
	var errs []error

	if c.DatabaseURL == "" {
		if err := validateURL("API_URL", c.APIURL, "http", "https"); err != nil {
			errs = append(errs, err)
		}
	} else if err := validateURL("DATABASE_URL", c.DatabaseURL, "postgres", "postgresql"); err != nil {
		errs = append(errs, err)
	}

	if err := validateURL("TX_BASE_URL", c.TxBaseURL, "http", "https"); err != nil {
		errs = append(errs, err)
	}

	if c.NATSURL != "" {
		if err := validateURL("NATS_URL", c.NATSURL, "nats", "tls", "ws", "wss"); err != nil {
			errs = append(errs, err)
		}
	}

	if c.FetchTimeout < time.Second {
		errs = append(errs, fmt.Errorf("FETCH_TIMEOUT must be at least 1 second"))
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}

	return nil
}

// ParseLogLevel maps LOG_LEVEL to a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: unknown level %q", level)
	}
}

func validateURL(key, raw string, schemes ...string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", key)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid URL %q: %w", key, raw, err)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("%s: scheme must be one of %s, got %q", key, strings.Join(schemes, ", "), u.Scheme)
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration parses a duration from an environment variable or uses a default.
func parseDuration(key, defaultValue string) (time.Duration, error) {
	value := getEnvOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return duration, nil
}
