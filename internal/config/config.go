// Package config provides configuration management for the news clipper.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"newsclip/pkg/utils"
)

//go:embed default_config.yaml
var defaultConfigYAML []byte

// AppName names the XDG subdirectories.
const AppName = "newsclip"

// Configuration validation errors.
var (
	ErrNoCategories             = errors.New("at least one category is required")
	ErrCategoryMissingName      = errors.New("category name is required")
	ErrDuplicateCategory        = errors.New("category names must be unique")
	ErrCategoryNoKeywords       = errors.New("category needs at least one keyword")
	ErrEmptyKeyword             = errors.New("keywords must not be empty")
	ErrMissingEndpoint          = errors.New("search.endpoint is required")
	ErrInvalidEndpoint          = errors.New("search.endpoint must be an http(s) URL")
	ErrInvalidDisplay           = errors.New("search.display must be between 1 and 100")
	ErrInvalidStart             = errors.New("search.start must be between 1 and 1000")
	ErrInvalidSort              = errors.New("search.sort must be 'date' or 'sim'")
	ErrInvalidRate              = errors.New("search.requests_per_second must be positive")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("retry.timeout_sec must be at least 1")
	ErrInvalidStartHour         = errors.New("window.start_hour must be between 0 and 23")
	ErrInvalidDaysBack          = errors.New("window.days_back must be non-negative")
	ErrInvalidTimezone          = errors.New("window.timezone is not a known location")
	ErrInvalidThreshold         = errors.New("dedupe.threshold must be between 0 and 1")
	ErrInvalidDescriptionLimit  = errors.New("dedupe.description_limit must be at least 1")
	ErrMissingFilePrefix        = errors.New("output.file_prefix is required")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrMissingTracingEndpoint   = errors.New("tracing.endpoint is required when tracing is enabled")
)

// Config represents the complete clipper configuration.
type Config struct {
	Search     SearchConfig     `yaml:"search"`
	Retry      RetryPolicy      `yaml:"retry"`
	Categories []CategoryConfig `yaml:"categories"`
	Window     WindowConfig     `yaml:"window"`
	Dedupe     DedupeConfig     `yaml:"dedupe"`
	Output     OutputConfig     `yaml:"output"`
	Page       PageConfig       `yaml:"page"`
	Logging    LoggingConfig    `yaml:"logging"`
	Tracing    TracingConfig    `yaml:"tracing"`
}

// SearchConfig describes the news search API.
type SearchConfig struct {
	Endpoint          string  `yaml:"endpoint"`
	Sort              string  `yaml:"sort"`
	UserAgent         string  `yaml:"user_agent"`
	Start             int     `yaml:"start"`
	Display           int     `yaml:"display"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// CategoryConfig groups the keywords reported under one heading.
type CategoryConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// RetryPolicy defines retry behavior.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec"`
}

// WindowConfig defines the publication-time acceptance window.
type WindowConfig struct {
	Timezone  string `yaml:"timezone"`
	StartHour int    `yaml:"start_hour"`
	DaysBack  int    `yaml:"days_back"`
}

// DedupeConfig tunes the near-duplicate check.
type DedupeConfig struct {
	Threshold        float64 `yaml:"threshold"`
	DescriptionLimit int     `yaml:"description_limit"`
}

// OutputConfig defines where reports and the run log go.
type OutputConfig struct {
	Dir        string `yaml:"dir"`
	RunLog     string `yaml:"run_log"`
	FilePrefix string `yaml:"file_prefix"`
	Markdown   bool   `yaml:"markdown"`
}

// PageConfig holds the HTML head metadata of the report.
type PageConfig struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Author      string   `yaml:"author"`
	Keywords    []string `yaml:"keywords"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// TracingConfig enables OTLP trace export.
type TracingConfig struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
	Enabled     bool   `yaml:"enabled"`
}

// DefaultConfigYAML returns the embedded default configuration file.
func DefaultConfigYAML() []byte {
	return bytes.Clone(defaultConfigYAML)
}

// Default returns the embedded default configuration.
func Default() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse embedded config: %w", err)
	}

	return &cfg, nil
}

// DefaultConfigPath returns the per-user config file location.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// LoadConfig loads configuration from a YAML file on top of the defaults.
func LoadConfig(filepath string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Categories replace the defaults instead of merging element-wise.
	cfg.Categories = nil

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// WriteDefault writes the embedded default configuration to path,
// refusing to overwrite an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, defaultConfigYAML, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.validateCategories(); err != nil {
		return err
	}

	if err := c.Search.validate(); err != nil {
		return err
	}

	if err := c.Retry.validate(); err != nil {
		return err
	}

	if c.Window.StartHour < 0 || c.Window.StartHour > 23 {
		return ErrInvalidStartHour
	}

	if c.Window.DaysBack < 0 {
		return ErrInvalidDaysBack
	}

	if c.Window.Timezone != "" {
		if _, err := time.LoadLocation(c.Window.Timezone); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidTimezone, c.Window.Timezone)
		}
	}

	if c.Dedupe.Threshold < 0 || c.Dedupe.Threshold > 1 {
		return ErrInvalidThreshold
	}

	if c.Dedupe.DescriptionLimit < 1 {
		return ErrInvalidDescriptionLimit
	}

	if c.Output.FilePrefix == "" {
		return ErrMissingFilePrefix
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return ErrMissingTracingEndpoint
	}

	return nil
}

func (c *Config) validateCategories() error {
	if len(c.Categories) == 0 {
		return ErrNoCategories
	}

	names := make(map[string]bool, len(c.Categories))

	for i, cat := range c.Categories {
		if strings.TrimSpace(cat.Name) == "" {
			return fmt.Errorf("%w: categories[%d]", ErrCategoryMissingName, i)
		}

		if names[cat.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateCategory, cat.Name)
		}

		names[cat.Name] = true

		if len(cat.Keywords) == 0 {
			return fmt.Errorf("%w: %q", ErrCategoryNoKeywords, cat.Name)
		}

		for j, kw := range cat.Keywords {
			if strings.TrimSpace(kw) == "" {
				return fmt.Errorf("%w: %q keywords[%d]", ErrEmptyKeyword, cat.Name, j)
			}
		}
	}

	return nil
}

func (s *SearchConfig) validate() error {
	if s.Endpoint == "" {
		return ErrMissingEndpoint
	}

	if !utils.NewHTTPHelper(s.UserAgent).IsValidURL(s.Endpoint) {
		return fmt.Errorf("%w: %q", ErrInvalidEndpoint, s.Endpoint)
	}

	if s.Display < 1 || s.Display > 100 {
		return ErrInvalidDisplay
	}

	if s.Start < 1 || s.Start > 1000 {
		return ErrInvalidStart
	}

	if s.Sort != "date" && s.Sort != "sim" {
		return ErrInvalidSort
	}

	if s.RequestsPerSecond <= 0 {
		return ErrInvalidRate
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
// The first attempt has no delay.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 2; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	// Cap at max delay
	if rp.MaxDelayMs > 0 && int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the per-request timeout.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// Location resolves the configured timezone. An unknown or empty zone
// falls back to a fixed +09:00 offset.
func (w *WindowConfig) Location() *time.Location {
	if w.Timezone != "" {
		if loc, err := time.LoadLocation(w.Timezone); err == nil {
			return loc
		}
	}

	return time.FixedZone("KST", 9*60*60)
}

// Bounds returns the acceptance window for a run started at now:
// from StartHour:00 of the day DaysBack days before now, up to now.
func (w *WindowConfig) Bounds(now time.Time) (time.Time, time.Time) {
	local := now.In(w.Location())
	start := time.Date(local.Year(), local.Month(), local.Day(), w.StartHour, 0, 0, 0, local.Location())

	return start.AddDate(0, 0, -w.DaysBack), now
}

// OutputDir returns the report directory, defaulting under the XDG data home.
func (o *OutputConfig) OutputDir() string {
	if o.Dir != "" {
		return o.Dir
	}

	return filepath.Join(xdg.DataHome, AppName, "news_clipping")
}

// RunLogPath returns the run log file, defaulting under the XDG state home.
func (o *OutputConfig) RunLogPath() string {
	if o.RunLog != "" {
		return o.RunLog
	}

	return filepath.Join(xdg.StateHome, AppName, "news_clipping_log.txt")
}

// KeywordCount returns the number of keywords across all categories.
func (c *Config) KeywordCount() int {
	total := 0
	for _, cat := range c.Categories {
		total += len(cat.Keywords)
	}

	return total
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Categories: %d, Keywords: %d, MaxAttempts: %d, Output: %s}",
		len(c.Categories),
		c.KeywordCount(),
		c.Retry.MaxAttempts,
		c.Output.OutputDir(),
	)
}
