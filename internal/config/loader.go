// Package config provides configuration management for the Stockcast application.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	// Read the configuration file
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Environment variables override file values (STOCKCAST_APP_LOG_LEVEL etc.)
	v.SetEnvPrefix("STOCKCAST")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func LoadWithDefaults(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v.SetConfigType("yaml")

	v.SetEnvPrefix("STOCKCAST")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Reasonable defaults so tooling can run without a full config file
	v.SetDefault("app.name", "stockcast")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("market_data.base_url", "https://www.alphavantage.co")
	v.SetDefault("market_data.timeout_seconds", 30)
	v.SetDefault("market_data.retry_attempts", 3)
	v.SetDefault("market_data.rate_limit", 5)
	v.SetDefault("news.finnhub_base_url", "https://finnhub.io/api/v1")
	v.SetDefault("news.google_rss_url", "https://news.google.com/rss/search")
	v.SetDefault("news.max_articles", 30)
	v.SetDefault("news.retention_days", 3)
	v.SetDefault("llm.model", "gemini-2.0-flash")
	v.SetDefault("llm.max_output_tokens", 2048)
	v.SetDefault("llm.timeout_seconds", 60)
	v.SetDefault("pipeline.cache_ttl_seconds", 900)
	v.SetDefault("pipeline.news_limit", 10)
	v.SetDefault("pipeline.social_limit", 10)
	v.SetDefault("backtest.symbols", []string{"AAPL", "MSFT", "GOOGL", "AMZN", "META"})
	v.SetDefault("backtest.output_dir", "backtest_reports")
	v.SetDefault("backtest.training_window_days", 21)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	// Read and expand the configuration file if it exists
	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// If file doesn't exist, continue with defaults and environment variables

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}
