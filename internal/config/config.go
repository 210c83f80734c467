package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	AlphaVantage AlphaVantageConfig `mapstructure:"alphavantage"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Refresh      RefreshConfig      `mapstructure:"refresh"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// AlphaVantageConfig holds upstream API configuration
type AlphaVantageConfig struct {
	BaseURL            string        `mapstructure:"base_url"`
	APIKey             string        `mapstructure:"api_key"`
	Timeout            time.Duration `mapstructure:"timeout"`
	MinRequestInterval time.Duration `mapstructure:"min_request_interval"`
	MaxRetries         int           `mapstructure:"max_retries"`
	RetryDelayBase     time.Duration `mapstructure:"retry_delay_base"`
}

// CacheConfig holds TTLs for both cache tiers
type CacheConfig struct {
	MemoryTTL       time.Duration `mapstructure:"memory_ttl"`
	SnapshotTTL     time.Duration `mapstructure:"snapshot_ttl"`
	QuoteTTL        time.Duration `mapstructure:"quote_ttl"`
	FundamentalsTTL time.Duration `mapstructure:"fundamentals_ttl"`
}

// StorageConfig holds persistent storage configuration
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// RefreshConfig holds the market-mover refresh loop configuration
type RefreshConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	setDefaults(v)

	// Enable environment variable override
	v.SetEnvPrefix("STOCKDECK")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("alphavantage.base_url", "https://www.alphavantage.co")
	v.SetDefault("alphavantage.timeout", "30s")
	// The upstream rate limit is enforced per API key across all endpoints.
	v.SetDefault("alphavantage.min_request_interval", "12s")
	v.SetDefault("alphavantage.max_retries", 3)
	v.SetDefault("alphavantage.retry_delay_base", "1s")

	v.SetDefault("cache.memory_ttl", "5m")
	v.SetDefault("cache.snapshot_ttl", "5m")
	v.SetDefault("cache.quote_ttl", "30m")
	v.SetDefault("cache.fundamentals_ttl", "1h")

	v.SetDefault("storage.db_path", "./data/stockdeck.db")

	v.SetDefault("refresh.poll_interval", "5m")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.AlphaVantage.BaseURL == "" {
		return fmt.Errorf("alphavantage.base_url is required")
	}
	if c.AlphaVantage.APIKey == "" {
		return fmt.Errorf("alphavantage.api_key is required")
	}
	if c.AlphaVantage.Timeout < 1*time.Second {
		return fmt.Errorf("alphavantage.timeout must be at least 1 second")
	}
	if c.AlphaVantage.MinRequestInterval < 1*time.Second {
		return fmt.Errorf("alphavantage.min_request_interval must be at least 1 second")
	}
	if c.AlphaVantage.MaxRetries < 1 {
		return fmt.Errorf("alphavantage.max_retries must be at least 1")
	}
	if c.AlphaVantage.RetryDelayBase < 0 {
		return fmt.Errorf("alphavantage.retry_delay_base must not be negative")
	}

	if c.Cache.MemoryTTL < 1*time.Second {
		return fmt.Errorf("cache.memory_ttl must be at least 1 second")
	}
	if c.Cache.SnapshotTTL < 1*time.Second {
		return fmt.Errorf("cache.snapshot_ttl must be at least 1 second")
	}
	if c.Cache.QuoteTTL < 1*time.Second {
		return fmt.Errorf("cache.quote_ttl must be at least 1 second")
	}
	if c.Cache.FundamentalsTTL < 1*time.Second {
		return fmt.Errorf("cache.fundamentals_ttl must be at least 1 second")
	}

	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}

	if c.Refresh.PollInterval < 1*time.Minute {
		return fmt.Errorf("refresh.poll_interval must be at least 1 minute")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
