package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	OutputDir       string `mapstructure:"OUTPUT_DIR"`
	ManifestName    string `mapstructure:"MANIFEST_NAME"`
	NavTimeoutSec   int    `mapstructure:"NAV_TIMEOUT"`
	AttemptTimeout  int    `mapstructure:"ATTEMPT_TIMEOUT"`
	ItemTimeoutSec  int    `mapstructure:"ITEM_TIMEOUT"`
	MaxAttempts     int    `mapstructure:"MAX_ATTEMPTS"`
	SettleDelayMS   int    `mapstructure:"SETTLE_DELAY_MS"`
	ViewportWidth   int    `mapstructure:"VIEWPORT_WIDTH"`
	ViewportHeight  int    `mapstructure:"VIEWPORT_HEIGHT"`
	UserAgent       string `mapstructure:"USER_AGENT"`
	ProxyURL        string `mapstructure:"PROXY_URL"`
	StatusPort      string `mapstructure:"STATUS_PORT"`
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	PostgresURL     string `mapstructure:"POSTGRES_URL"`
	DedupTTLHours   int    `mapstructure:"DEDUP_TTL_HOURS"`
	ObstacleBudget  int    `mapstructure:"OBSTACLE_BUDGET_MS"`
	ScrollOffsetPX  int    `mapstructure:"SCROLL_OFFSET_PX"`
}

// Load reads configuration from file or environment variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present
	// This allows configuration purely through environment variables in production
	_ = viper.ReadInConfig()

	// Set default values
	viper.SetDefault("OUTPUT_DIR", "screenshots")
	viper.SetDefault("MANIFEST_NAME", "claim_screenshots_manifest.json")
	viper.SetDefault("NAV_TIMEOUT", 20)     // in seconds
	viper.SetDefault("ATTEMPT_TIMEOUT", 45) // in seconds
	viper.SetDefault("ITEM_TIMEOUT", 120)   // in seconds
	viper.SetDefault("MAX_ATTEMPTS", 3)
	viper.SetDefault("SETTLE_DELAY_MS", 2500)
	viper.SetDefault("VIEWPORT_WIDTH", 1920)
	viper.SetDefault("VIEWPORT_HEIGHT", 1080)
	viper.SetDefault("USER_AGENT", "")
	viper.SetDefault("STATUS_PORT", "")
	viper.SetDefault("DEDUP_TTL_HOURS", 48)
	viper.SetDefault("OBSTACLE_BUDGET_MS", 800)
	viper.SetDefault("SCROLL_OFFSET_PX", 60)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate enforces the deadline nesting the item loop depends on.
func (c *Config) validate() error {
	if c.NavTimeoutSec <= 0 || c.AttemptTimeout <= 0 || c.ItemTimeoutSec <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.NavTimeoutSec > c.AttemptTimeout {
		return fmt.Errorf("NAV_TIMEOUT (%ds) must not exceed ATTEMPT_TIMEOUT (%ds)", c.NavTimeoutSec, c.AttemptTimeout)
	}
	if c.AttemptTimeout > c.ItemTimeoutSec {
		return fmt.Errorf("ATTEMPT_TIMEOUT (%ds) must not exceed ITEM_TIMEOUT (%ds)", c.AttemptTimeout, c.ItemTimeoutSec)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("MAX_ATTEMPTS must be positive")
	}
	return nil
}

func (c *Config) NavTimeout() time.Duration     { return time.Duration(c.NavTimeoutSec) * time.Second }
func (c *Config) AttemptDeadline() time.Duration {
	return time.Duration(c.AttemptTimeout) * time.Second
}
func (c *Config) ItemTimeout() time.Duration { return time.Duration(c.ItemTimeoutSec) * time.Second }
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMS) * time.Millisecond
}
func (c *Config) ObstacleBudgetDur() time.Duration {
	return time.Duration(c.ObstacleBudget) * time.Millisecond
}
func (c *Config) DedupTTL() time.Duration { return time.Duration(c.DedupTTLHours) * time.Hour }
