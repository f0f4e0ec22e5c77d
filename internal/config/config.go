package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"productapi/internal/validation"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ID strategies understood by ID_STRATEGY.
const (
	IDStrategySequence = "sequence"
	IDStrategyUUID     = "uuid"
)

// Config holds all runtime configuration.
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// APIKey is the shared secret expected in x-api-key. APIKeyHash, when set,
	// is a bcrypt hash of it and takes precedence.
	APIKey     string
	APIKeyHash string

	IDStrategy   string
	SeedProducts bool
	ReadDelay    time.Duration
	// ReadTimeout bounds a single-product read, read delay included. Zero
	// means unbounded.
	ReadTimeout  time.Duration

	CreateValidation validation.Policy
	UpdateValidation validation.Policy

	RabbitMQURL   string
	RabbitMQQueue string
}

// Load reads a .env file when one exists and then the environment.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from v, applying defaults and validating it.
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetDefault("PORT", "3000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ID_STRATEGY", IDStrategySequence)
	v.SetDefault("SEED_PRODUCTS", true)
	v.SetDefault("READ_DELAY", "0s")
	v.SetDefault("READ_TIMEOUT", "0s")
	v.SetDefault("VALIDATION_CREATE_MODE", string(validation.Lenient))
	v.SetDefault("VALIDATION_UPDATE_MODE", string(validation.Lenient))
	v.SetDefault("VALIDATION_ERRORS", string(validation.FirstError))
	v.SetDefault("RABBITMQ_QUEUE", "product_events")

	cfg := &Config{
		Port:          v.GetString("PORT"),
		Environment:   v.GetString("APP_ENV"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		APIKey:        v.GetString("API_KEY"),
		APIKeyHash:    v.GetString("API_KEY_BCRYPT_HASH"),
		IDStrategy:    strings.ToLower(v.GetString("ID_STRATEGY")),
		SeedProducts:  v.GetBool("SEED_PRODUCTS"),
		ReadDelay:     v.GetDuration("READ_DELAY"),
		ReadTimeout:   v.GetDuration("READ_TIMEOUT"),
		RabbitMQURL:   v.GetString("RABBITMQ_URL"),
		RabbitMQQueue: v.GetString("RABBITMQ_QUEUE"),
	}

	if cfg.APIKey == "" && cfg.APIKeyHash == "" {
		return nil, errors.New("API_KEY or API_KEY_BCRYPT_HASH must be set")
	}
	if cfg.IDStrategy != IDStrategySequence && cfg.IDStrategy != IDStrategyUUID {
		return nil, fmt.Errorf("unknown ID_STRATEGY %q", cfg.IDStrategy)
	}
	if cfg.ReadDelay < 0 {
		return nil, fmt.Errorf("READ_DELAY must not be negative, got %s", cfg.ReadDelay)
	}
	if cfg.ReadTimeout < 0 {
		return nil, fmt.Errorf("READ_TIMEOUT must not be negative, got %s", cfg.ReadTimeout)
	}

	collection, err := validation.ParseCollection(v.GetString("VALIDATION_ERRORS"))
	if err != nil {
		return nil, fmt.Errorf("VALIDATION_ERRORS: %w", err)
	}
	createMode, err := validation.ParseMode(v.GetString("VALIDATION_CREATE_MODE"))
	if err != nil {
		return nil, fmt.Errorf("VALIDATION_CREATE_MODE: %w", err)
	}
	updateMode, err := validation.ParseMode(v.GetString("VALIDATION_UPDATE_MODE"))
	if err != nil {
		return nil, fmt.Errorf("VALIDATION_UPDATE_MODE: %w", err)
	}
	cfg.CreateValidation = validation.Policy{Mode: createMode, Errors: collection}
	cfg.UpdateValidation = validation.Policy{Mode: updateMode, Errors: collection}

	return cfg, nil
}

// ListenAddr returns the address passed to the HTTP listener.
func (c *Config) ListenAddr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
