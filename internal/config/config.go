// Package config loads marketplace configuration from the environment, an optional .env file
// and an optional config.yml.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "change-me-memorabilia-market-secret"

// Storage and lock drivers
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"

	LockLocal = "local"
	LockRedis = "redis"
)

// Config holds application configuration values
type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"APP_ENV"`
	GinMode  string `mapstructure:"GIN_MODE"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	TokenTTL  time.Duration `mapstructure:"TOKEN_TTL"`

	StoreDriver string `mapstructure:"STORE_DRIVER"`
	DatabaseDSN string `mapstructure:"DATABASE_DSN"`

	LockDriver     string        `mapstructure:"LOCK_DRIVER"`
	RedisURL       string        `mapstructure:"REDIS_URL"`
	BidLockTTL     time.Duration `mapstructure:"BID_LOCK_TTL"`
	BidLockTimeout time.Duration `mapstructure:"BID_LOCK_TIMEOUT"`

	AdminUsername string `mapstructure:"ADMIN_USERNAME"`
	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
	SeedCatalog   bool   `mapstructure:"SEED_CATALOG"`

	TaxRate     float64 `mapstructure:"TAX_RATE"`
	ShippingFee float64 `mapstructure:"SHIPPING_FEE"`
}

// Load reads .env (if present), config.yml (if present) and the environment.
func Load() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("STORE_DRIVER", StoreMemory)
	v.SetDefault("DATABASE_DSN", "memorabilia.db")
	v.SetDefault("LOCK_DRIVER", LockLocal)
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("BID_LOCK_TTL", "5s")
	v.SetDefault("BID_LOCK_TIMEOUT", "3s")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_EMAIL", "admin@memorabilia.local")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("SEED_CATALOG", true)
	v.SetDefault("TAX_RATE", 0.08)
	v.SetDefault("SHIPPING_FEE", 25.0)
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// IsProduction reports whether APP_ENV names a production profile
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate checks required values and driver names
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be changed from the default value in production")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}

	switch c.StoreDriver {
	case StoreMemory:
	case StoreSQLite, StorePostgres:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for store driver %q", c.StoreDriver)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.LockDriver {
	case LockLocal:
	case LockRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis lock driver")
		}
		if c.BidLockTTL <= 0 {
			return errors.New("BID_LOCK_TTL must be positive")
		}
	default:
		return fmt.Errorf("unknown LOCK_DRIVER %q", c.LockDriver)
	}

	if c.BidLockTimeout <= 0 {
		return errors.New("BID_LOCK_TIMEOUT must be positive")
	}
	if c.TaxRate < 0 {
		return errors.New("TAX_RATE must not be negative")
	}
	if c.ShippingFee < 0 {
		return errors.New("SHIPPING_FEE must not be negative")
	}
	return nil
}
