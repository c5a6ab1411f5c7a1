// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Database backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// App token slot backends.
const (
	SlotMemory = "memory"
	SlotRedis  = "redis"
)

// Config is the top-level application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Ebay          EbayConfig          `yaml:"ebay"`
	Tokens        TokensConfig        `yaml:"tokens"`
	OAuth         OAuthConfig         `yaml:"oauth"`
	AppToken      AppTokenConfig      `yaml:"app_token"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Telemetry     TelemetryConfig     `yaml:"telemetry"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// PublicURL is the externally reachable base URL, used for reconnect links.
	PublicURL string `yaml:"public_url"`
}

// DatabaseConfig defines the account store settings.
type DatabaseConfig struct {
	Backend  string `yaml:"backend"` // postgres, memory
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s pool_max_conns=%d",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode, d.PoolSize,
	)
}

// EbayConfig defines eBay application credentials and endpoints.
type EbayConfig struct {
	Environment string `yaml:"environment"` // production, sandbox
	AppID       string `yaml:"app_id"`
	CertID      string `yaml:"cert_id"`
	// RuName is eBay's redirect URL name, sent as redirect_uri.
	RuName      string        `yaml:"ru_name"`
	Marketplace string        `yaml:"marketplace"`
	Timeout     time.Duration `yaml:"timeout"`
	// Endpoint overrides; empty values use the environment defaults.
	AuthURL     string          `yaml:"auth_url"`
	TokenURL    string          `yaml:"token_url"`
	APIURL      string          `yaml:"api_url"`
	IdentityURL string          `yaml:"identity_url"`
	TradingURL  string          `yaml:"trading_url"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines eBay API rate limiting settings.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"`
}

// TokensConfig defines user token refresh behavior.
type TokensConfig struct {
	RefreshMargin    time.Duration `yaml:"refresh_margin"`
	RefreshTimeout   time.Duration `yaml:"refresh_timeout"`
	SweepEnabled     bool          `yaml:"sweep_enabled"`
	SweepInterval    time.Duration `yaml:"sweep_interval"`
	SweepWindow      time.Duration `yaml:"sweep_window"`
	SweepConcurrency int           `yaml:"sweep_concurrency"`
}

// OAuthConfig defines the authorization flow settings.
type OAuthConfig struct {
	StateCookieName string `yaml:"state_cookie_name"`
	StateCookiePath string `yaml:"state_cookie_path"`
	SecureCookie    bool   `yaml:"secure_cookie"`
	// Prompt is passed to the authorization endpoint ("login" forces sign-in).
	Prompt string `yaml:"prompt"`
	// SuccessRedirect and FailureRedirect, when set, replace the built-in
	// result page after the callback.
	SuccessRedirect string `yaml:"success_redirect"`
	FailureRedirect string `yaml:"failure_redirect"`
}

// AppTokenConfig defines where the application token is cached.
type AppTokenConfig struct {
	Backend      string        `yaml:"backend"` // memory, redis
	ExpiryBuffer time.Duration `yaml:"expiry_buffer"`
	Redis        RedisConfig   `yaml:"redis"`
}

// RedisConfig defines Redis connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

// NotificationsConfig defines notification targets.
type NotificationsConfig struct {
	Discord DiscordConfig `yaml:"discord"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// TelemetryConfig defines OpenTelemetry trace export.
type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyEbayDefaults(&cfg.Ebay)
	applyTokensDefaults(&cfg.Tokens)
	applyAppTokenDefaults(&cfg.AppToken)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
	if s.PublicURL == "" {
		s.PublicURL = fmt.Sprintf("http://localhost:%d", s.Port)
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Backend == "" {
		d.Backend = BackendPostgres
	}
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyEbayDefaults(e *EbayConfig) {
	if e.Environment == "" {
		e.Environment = "production"
	}
	if e.Marketplace == "" {
		e.Marketplace = "EBAY_US"
	}
	if e.Timeout == 0 {
		e.Timeout = 20 * time.Second
	}
	applyRateLimitDefaults(&e.RateLimit)
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 5.0
	}
	if r.Burst == 0 {
		r.Burst = 10
	}
	if r.DailyLimit == 0 {
		r.DailyLimit = 5000
	}
}

func applyTokensDefaults(t *TokensConfig) {
	if t.RefreshMargin == 0 {
		t.RefreshMargin = 5 * time.Minute
	}
	if t.RefreshTimeout == 0 {
		t.RefreshTimeout = 20 * time.Second
	}
	if t.SweepInterval == 0 {
		t.SweepInterval = 5 * time.Minute
	}
	if t.SweepWindow == 0 {
		t.SweepWindow = 15 * time.Minute
	}
	if t.SweepConcurrency == 0 {
		t.SweepConcurrency = 4
	}
}

func applyAppTokenDefaults(a *AppTokenConfig) {
	if a.Backend == "" {
		a.Backend = SlotMemory
	}
	if a.ExpiryBuffer == 0 {
		a.ExpiryBuffer = time.Minute
	}
	if a.Redis.Key == "" {
		a.Redis.Key = "seller-connect:app-token"
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.ServiceName == "" {
		t.ServiceName = "seller-connect"
	}
	if t.SampleRatio == 0 {
		t.SampleRatio = 1.0
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	switch cfg.Database.Backend {
	case BackendPostgres:
		if cfg.Database.Host == "" {
			errs = append(errs, fmt.Errorf("database.host is required"))
		}
		if cfg.Database.Name == "" {
			errs = append(errs, fmt.Errorf("database.name is required"))
		}
		if cfg.Database.User == "" {
			errs = append(errs, fmt.Errorf("database.user is required"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf(
			"database.backend must be one of: postgres, memory (got %q)", cfg.Database.Backend,
		))
	}

	if cfg.Ebay.Environment != "production" && cfg.Ebay.Environment != "sandbox" {
		errs = append(errs, fmt.Errorf(
			"ebay.environment must be one of: production, sandbox (got %q)", cfg.Ebay.Environment,
		))
	}
	if cfg.Ebay.AppID == "" {
		errs = append(errs, fmt.Errorf("ebay.app_id is required"))
	}
	if cfg.Ebay.CertID == "" {
		errs = append(errs, fmt.Errorf("ebay.cert_id is required"))
	}
	if cfg.Ebay.RuName == "" {
		errs = append(errs, fmt.Errorf("ebay.ru_name is required"))
	}

	if cfg.Tokens.RefreshMargin < 0 {
		errs = append(errs, fmt.Errorf("tokens.refresh_margin must not be negative"))
	}

	switch cfg.AppToken.Backend {
	case SlotMemory:
	case SlotRedis:
		if cfg.AppToken.Redis.Addr == "" {
			errs = append(errs, fmt.Errorf("app_token.redis.addr is required when backend is redis"))
		}
	default:
		errs = append(errs, fmt.Errorf(
			"app_token.backend must be one of: memory, redis (got %q)", cfg.AppToken.Backend,
		))
	}

	if cfg.Notifications.Discord.Enabled && cfg.Notifications.Discord.WebhookURL == "" {
		errs = append(errs, fmt.Errorf(
			"notifications.discord.webhook_url is required when discord is enabled",
		))
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		errs = append(errs, fmt.Errorf("telemetry.endpoint is required when telemetry is enabled"))
	}

	return errors.Join(errs...)
}
