package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/renpy-helper/renpy-helper/internal/logging"
)

// Source represents where a configuration value came from.
type Source string

const (
	SourceDefault  Source = "default"
	SourceUserFile Source = "user file"
	SourceProjFile Source = "project file"
	SourceEnv      Source = "environment"
	SourceFlag     Source = "flag"
)

// Default values.
const (
	DefaultRembgBinary  = "rembg"
	DefaultOutputSuffix = "_clean"
	DefaultPageSize     = 15
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

// DefaultImageExtensions returns the file extensions treated as images.
func DefaultImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp"}
}

// Config holds the helper configuration.
type Config struct {
	// External tool
	RembgBinary    string `toml:"rembg_binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`

	// Processing
	OutputSuffix    string   `toml:"output_suffix"`
	ImageExtensions []string `toml:"image_extensions"`

	// Prompts
	PageSize int `toml:"page_size"`

	// Logging
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	// WorkDir is the directory the helper runs in. It holds the settings file.
	WorkDir string `toml:"-"`

	// Files lists the config files that were loaded, lowest priority first.
	Files []string `toml:"-"`

	// Sources maps each field key to where its value came from.
	Sources map[string]Source `toml:"-"`

	// Warnings collects non-fatal problems found while loading, such as
	// unknown keys in a config file.
	Warnings []string `toml:"-"`
}

// Keys returns the configurable field keys in display order.
func Keys() []string {
	return []string{
		"rembg_binary",
		"timeout_seconds",
		"output_suffix",
		"image_extensions",
		"page_size",
		"log_level",
		"log_format",
	}
}

// Timeout returns the rembg timeout, zero meaning no limit.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Value returns the display form of the field named key.
func (c *Config) Value(key string) string {
	switch key {
	case "rembg_binary":
		return c.RembgBinary
	case "timeout_seconds":
		return fmt.Sprintf("%d", c.TimeoutSeconds)
	case "output_suffix":
		return c.OutputSuffix
	case "image_extensions":
		return strings.Join(c.ImageExtensions, ",")
	case "page_size":
		return fmt.Sprintf("%d", c.PageSize)
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	}
	return ""
}

// Source returns where the field named key came from.
func (c *Config) Source(key string) Source {
	if s, ok := c.Sources[key]; ok {
		return s
	}
	return SourceDefault
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []string
	if strings.TrimSpace(c.RembgBinary) == "" {
		errs = append(errs, "rembg_binary is empty")
	}
	if c.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Sprintf("timeout_seconds must not be negative, got %d", c.TimeoutSeconds))
	}
	if strings.ContainsAny(c.OutputSuffix, `/\`) {
		errs = append(errs, fmt.Sprintf("output_suffix must not contain path separators, got %q", c.OutputSuffix))
	}
	if len(c.ImageExtensions) == 0 {
		errs = append(errs, "image_extensions is empty")
	}
	if c.PageSize < 1 {
		errs = append(errs, fmt.Sprintf("page_size must be at least 1, got %d", c.PageSize))
	}
	if !logging.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Sprintf("invalid log_level %q (expected debug|info|warn|error|fatal)", c.LogLevel))
	}
	if !logging.ValidFormat(c.LogFormat) {
		errs = append(errs, fmt.Sprintf("invalid log_format %q (expected text|json|logfmt)", c.LogFormat))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.RembgBinary = DefaultRembgBinary
	cfg.TimeoutSeconds = 0
	cfg.OutputSuffix = DefaultOutputSuffix
	cfg.ImageExtensions = DefaultImageExtensions()
	cfg.PageSize = DefaultPageSize
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.Sources = make(map[string]Source)
	for _, key := range Keys() {
		cfg.Sources[key] = SourceDefault
	}
}
