// Package config holds the application's root configuration, loaded from
// file and environment through viper and validated before use.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/obscuraops/multipass/internal/privacy"
	"github.com/obscuraops/multipass/internal/session"
)

var (
	instance *Config
	once     sync.Once
)

// Config is the root configuration structure for the entire application.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Browser  BrowserConfig  `mapstructure:"browser"`
	Privacy  PrivacyConfig  `mapstructure:"privacy"`
	Session  SessionConfig  `mapstructure:"session"`
}

// ColorConfig defines the color settings for different log levels.
// These are used for console output to make logs more readable.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" json:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" json:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" json:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" json:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" json:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" json:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" json:"fatal" yaml:"fatal"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" json:"level" yaml:"level" validate:"oneof=debug info warn error dpanic panic fatal"`
	Format      string      `mapstructure:"format" json:"format" yaml:"format" validate:"oneof=json console"`
	AddSource   bool        `mapstructure:"add_source" json:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" json:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" json:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" json:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" json:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" json:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" json:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" json:"colors" yaml:"colors"`
}

// PostgresConfig holds settings for the database connection.
type PostgresConfig struct {
	URL string `mapstructure:"url"`
}

// BrowserConfig holds settings for launching isolated browser contexts.
type BrowserConfig struct {
	Headless bool `mapstructure:"headless"`
	// Root directory for per-identity profile data.
	DataDir string `mapstructure:"data_dir" validate:"required"`
	// Explicit Chromium binary; empty means autodetect.
	BinaryPath string `mapstructure:"binary_path"`
	ProxyURL   string `mapstructure:"proxy_url" validate:"omitempty,url"`
}

// PrivacyConfig carries the risk policy and the default protection level.
type PrivacyConfig struct {
	DefaultLevel string         `mapstructure:"default_level" validate:"oneof=minimal standard enhanced maximum paranoid"`
	Policy       privacy.Policy `mapstructure:"policy"`
}

// SessionConfig tunes the session clone engine.
type SessionConfig struct {
	// Cookie name substrings treated as credentials during cloning.
	SensitiveCookieTokens []string `mapstructure:"sensitive_cookie_tokens" validate:"min=1"`
}

// SetDefaults registers the default value for every key so a bare
// invocation works without a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "multipass")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
	v.SetDefault("logger.compress", true)

	v.SetDefault("postgres.url", "")

	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.data_dir", defaultDataDir())
	v.SetDefault("browser.binary_path", "")
	v.SetDefault("browser.proxy_url", "")

	v.SetDefault("privacy.default_level", "standard")
	policy := privacy.DefaultPolicy()
	v.SetDefault("privacy.policy.trusted_domains", policy.TrustedDomains)
	v.SetDefault("privacy.policy.social_media_domains", policy.SocialMediaDomains)
	v.SetDefault("privacy.policy.government_suffixes", policy.GovernmentSuffixes)
	v.SetDefault("privacy.policy.tracker_domains", policy.TrackerDomains)

	v.SetDefault("session.sensitive_cookie_tokens", session.DefaultSensitiveTokens)
}

func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "multipass")
}

// Validate checks structural constraints on a loaded configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Load initializes the configuration singleton from Viper.
func Load(v *viper.Viper) error {
	var loadErr error
	once.Do(func() {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			loadErr = fmt.Errorf("error unmarshaling config: %w", err)
			return
		}
		if err := cfg.Validate(); err != nil {
			loadErr = err
			return
		}
		instance = &cfg
	})
	return loadErr
}

// Get returns the loaded configuration instance.
func Get() *Config {
	if instance == nil {
		panic("Configuration not initialized. Call config.Load() in the root command.")
	}
	return instance
}
