// Package config provides configuration management for the Stockcast application.
package config

import "fmt"

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	MarketData MarketDataConfig `mapstructure:"market_data" validate:"required"`
	News       NewsConfig       `mapstructure:"news" validate:"required"`
	Social     SocialConfig     `mapstructure:"social"`
	LLM        LLMConfig        `mapstructure:"llm" validate:"required"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline" validate:"required"`
	Backtest   BacktestConfig   `mapstructure:"backtest" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// MarketDataConfig represents the daily-prices provider configuration
type MarketDataConfig struct {
	BaseURL        string  `mapstructure:"base_url" validate:"required,url"`
	APIKey         string  `mapstructure:"api_key" validate:"required"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts  int     `mapstructure:"retry_attempts" validate:"gte=0"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
}

// NewsConfig represents news source configuration
type NewsConfig struct {
	FinnhubBaseURL string `mapstructure:"finnhub_base_url" validate:"required,url"`
	FinnhubAPIKey  string `mapstructure:"finnhub_api_key"`
	GoogleRSSURL   string `mapstructure:"google_rss_url" validate:"required,url"`
	MaxArticles    int    `mapstructure:"max_articles" validate:"required,gt=0"`
	RetentionDays  int    `mapstructure:"retention_days" validate:"required,gt=0"`
}

// SocialConfig represents the social sentiment source configuration.
// Credentials are optional; without them the pipeline degrades to an
// empty sentiment summary.
type SocialConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
	PostLimit int    `mapstructure:"post_limit" validate:"omitempty,gt=0"`
}

// LLMConfig represents the LLM provider configuration
type LLMConfig struct {
	APIKey          string `mapstructure:"api_key" validate:"required"`
	Model           string `mapstructure:"model" validate:"required"`
	MaxOutputTokens int    `mapstructure:"max_output_tokens" validate:"required,gt=0"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
}

// PipelineConfig represents prediction pipeline configuration
type PipelineConfig struct {
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	NewsLimit       int `mapstructure:"news_limit" validate:"required,gt=0"`
	SocialLimit     int `mapstructure:"social_limit" validate:"required,gt=0"`
}

// BacktestConfig represents backtesting configuration
type BacktestConfig struct {
	Symbols            []string `mapstructure:"symbols" validate:"required,min=1,symbols"`
	OutputDir          string   `mapstructure:"output_dir" validate:"required"`
	TrainingWindowDays int      `mapstructure:"training_window_days" validate:"required,gt=0"`
	PersistToDatabase  bool     `mapstructure:"persist_to_database"`
}

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	Port           int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	QuoteStreamURL string   `mapstructure:"quote_stream_url"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// SchedulerConfig represents scheduled news refresh configuration
type SchedulerConfig struct {
	NewsRefreshCron string   `mapstructure:"news_refresh_cron"`
	Symbols         []string `mapstructure:"symbols"`
}

// GetDatabaseDSN builds the PostgreSQL connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
