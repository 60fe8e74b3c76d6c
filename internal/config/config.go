// Package config provides configuration management for the catalog worker.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"editiongen/internal/override"
)

// Configuration validation errors.
var (
	ErrMissingDirectoryURL      = errors.New("source.directory_url is required")
	ErrMissingDetailURL         = errors.New("source.detail_url is required")
	ErrDirectoryURLPlaceholder  = errors.New("source.directory_url must contain {locale}")
	ErrDetailURLPlaceholder     = errors.New("source.detail_url must contain {id}")
	ErrInvalidRequestDelay      = errors.New("source.request_delay_ms must be non-negative")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("retry.timeout_sec must be at least 1")
	ErrMissingModel             = errors.New("gemini.model is required")
	ErrMissingPromptFile        = errors.New("gemini.prompt_file is required")
	ErrInvalidGeminiAttempts    = errors.New("gemini.max_attempts must be at least 1")
	ErrInvalidGeminiCooldown    = errors.New("gemini.cooldown_sec must be non-negative")
	ErrInvalidGeminiTimeout     = errors.New("gemini.timeout_sec must be at least 1")
	ErrMissingOutputDir         = errors.New("output.dir is required")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat         = errors.New("logging.format must be 'text' or 'json'")
	ErrIncompleteOverride       = errors.New("override rule requires edition_id, field and search")
)

// Config represents the complete worker configuration.
type Config struct {
	Source    SourceConfig    `yaml:"source"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
	Overrides []override.Rule `yaml:"overrides"`
}

// SourceConfig describes the source feed endpoints. directory_url carries a
// {locale} placeholder, detail_url an {id} placeholder, flag_url a
// {flag_code} placeholder.
type SourceConfig struct {
	DirectoryURL   string      `yaml:"directory_url"`
	DetailURL      string      `yaml:"detail_url"`
	FlagURL        string      `yaml:"flag_url"`
	StartLocale    string      `yaml:"start_locale"`
	RequestDelayMs int         `yaml:"request_delay_ms"`
	Retry          RetryPolicy `yaml:"retry"`
}

// RetryPolicy defines retry behavior for source feed requests.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec"`
}

// GeminiConfig describes the normalization service call.
type GeminiConfig struct {
	Model       string `yaml:"model"`
	APIKeyEnv   string `yaml:"api_key_env"`
	PromptFile  string `yaml:"prompt_file"`
	MaxAttempts int    `yaml:"max_attempts"`
	CooldownSec int    `yaml:"cooldown_sec"`
	TimeoutSec  int    `yaml:"timeout_sec"`
}

// OutputConfig defines the persisted document locations. File names are
// joined onto Dir by the store.
type OutputConfig struct {
	Dir           string `yaml:"dir"`
	RawFile       string `yaml:"raw_file"`
	PriorFile     string `yaml:"prior_file"`
	CatalogFile   string `yaml:"catalog_file"`
	ChangelogFile string `yaml:"changelog_file"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadConfig loads configuration from a YAML file, applies defaults and
// validates the result.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Source.StartLocale == "" {
		c.Source.StartLocale = "int-en"
	}

	if c.Source.Retry.MaxAttempts == 0 {
		c.Source.Retry = RetryPolicy{
			MaxAttempts:       3,
			InitialDelayMs:    500,
			MaxDelayMs:        30000,
			BackoffMultiplier: 2.0,
			TimeoutSec:        30,
		}
	}

	if c.Gemini.APIKeyEnv == "" {
		c.Gemini.APIKeyEnv = "GEMINI_API_KEY"
	}

	if c.Gemini.MaxAttempts == 0 {
		c.Gemini.MaxAttempts = 3
	}

	if c.Gemini.CooldownSec == 0 {
		c.Gemini.CooldownSec = 60
	}

	if c.Gemini.TimeoutSec == 0 {
		c.Gemini.TimeoutSec = 300
	}

	if c.Output.RawFile == "" {
		c.Output.RawFile = "editions_raw.json"
	}

	if c.Output.PriorFile == "" {
		c.Output.PriorFile = "editions_raw.previous.json"
	}

	if c.Output.CatalogFile == "" {
		c.Output.CatalogFile = "editions.json"
	}

	if c.Output.ChangelogFile == "" {
		c.Output.ChangelogFile = "changelog.md"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Source.DirectoryURL == "" {
		return ErrMissingDirectoryURL
	}

	if !strings.Contains(c.Source.DirectoryURL, "{locale}") {
		return ErrDirectoryURLPlaceholder
	}

	if c.Source.DetailURL == "" {
		return ErrMissingDetailURL
	}

	if !strings.Contains(c.Source.DetailURL, "{id}") {
		return ErrDetailURLPlaceholder
	}

	if c.Source.RequestDelayMs < 0 {
		return ErrInvalidRequestDelay
	}

	if err := c.Source.Retry.validate(); err != nil {
		return err
	}

	if c.Gemini.Model == "" {
		return ErrMissingModel
	}

	if c.Gemini.PromptFile == "" {
		return ErrMissingPromptFile
	}

	if c.Gemini.MaxAttempts < 1 {
		return ErrInvalidGeminiAttempts
	}

	if c.Gemini.CooldownSec < 0 {
		return ErrInvalidGeminiCooldown
	}

	if c.Gemini.TimeoutSec < 1 {
		return ErrInvalidGeminiTimeout
	}

	if c.Output.Dir == "" {
		return ErrMissingOutputDir
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	for i, rule := range c.Overrides {
		if rule.EditionID == "" || rule.Field == "" || rule.Search == "" {
			return fmt.Errorf("%w: overrides[%d]", ErrIncompleteOverride, i)
		}
	}

	return nil
}

func (rp *RetryPolicy) validate() error {
	if rp.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if rp.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if rp.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if rp.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	return nil
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the per-request timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// RequestDelay returns the fixed pause between source detail requests.
func (s *SourceConfig) RequestDelay() time.Duration {
	return time.Duration(s.RequestDelayMs) * time.Millisecond
}

// Cooldown returns the fixed wait between normalization attempts.
func (g *GeminiConfig) Cooldown() time.Duration {
	return time.Duration(g.CooldownSec) * time.Second
}

// Timeout returns the overall normalization call timeout.
func (g *GeminiConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSec) * time.Second
}

// APIKey reads the service credential from the configured environment
// variable.
func (g *GeminiConfig) APIKey() string {
	return os.Getenv(g.APIKeyEnv)
}
