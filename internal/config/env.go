package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/renpy-helper/renpy-helper/internal/utils"
)

// Environment variable names.
const (
	EnvRembgBinary     = "RENPY_HELPER_REMBG_BINARY"
	EnvTimeout         = "RENPY_HELPER_TIMEOUT"
	EnvOutputSuffix    = "RENPY_HELPER_OUTPUT_SUFFIX"
	EnvImageExtensions = "RENPY_HELPER_IMAGE_EXTENSIONS"
	EnvPageSize        = "RENPY_HELPER_PAGE_SIZE"
	EnvLogLevel        = "RENPY_HELPER_LOG_LEVEL"
	EnvLogFormat       = "RENPY_HELPER_LOG_FORMAT"
)

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) error {
	if v := os.Getenv(EnvRembgBinary); v != "" {
		cfg.RembgBinary = v
		cfg.Sources["rembg_binary"] = SourceEnv
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.TimeoutSeconds = n
		cfg.Sources["timeout_seconds"] = SourceEnv
	}
	// An empty suffix is meaningful, so presence is what counts here.
	if v, ok := os.LookupEnv(EnvOutputSuffix); ok {
		cfg.OutputSuffix = v
		cfg.Sources["output_suffix"] = SourceEnv
	}
	if v := os.Getenv(EnvImageExtensions); v != "" {
		cfg.ImageExtensions = utils.SplitAndTrim(v, ",")
		cfg.Sources["image_extensions"] = SourceEnv
	}
	if v := os.Getenv(EnvPageSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPageSize, err)
		}
		cfg.PageSize = n
		cfg.Sources["page_size"] = SourceEnv
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
		cfg.Sources["log_level"] = SourceEnv
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
		cfg.Sources["log_format"] = SourceEnv
	}
	return nil
}
