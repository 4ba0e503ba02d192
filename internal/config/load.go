package config

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/renpy-helper/renpy-helper/internal/utils"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file
// 3. Project config file in the working directory
// 4. Environment variables
// 5. CLI flags, parsed from args into fs
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}

	// 1. Set defaults
	setDefaults(cfg)

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	cfg.WorkDir = wd

	// 2. User config file
	if path := findUserConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
	}

	// 3. Project config file (overrides user config)
	if path := findProjectConfigFile(cfg.WorkDir); path != "" {
		if err := loadConfigFile(cfg, path, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
	}

	// 4. Environment
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	// 5. CLI flags
	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, err
	}

	// 6. Derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return cfg, nil
}

// loadConfigFile overlays the keys defined in the TOML file at path onto cfg.
// Keys missing from the file keep their current value.
func loadConfigFile(cfg *Config, path string, source Source) error {
	var fileCfg Config
	md, err := toml.DecodeFile(path, &fileCfg)
	if err != nil {
		return err
	}

	if md.IsDefined("rembg_binary") {
		cfg.RembgBinary = fileCfg.RembgBinary
		cfg.Sources["rembg_binary"] = source
	}
	if md.IsDefined("timeout_seconds") {
		cfg.TimeoutSeconds = fileCfg.TimeoutSeconds
		cfg.Sources["timeout_seconds"] = source
	}
	if md.IsDefined("output_suffix") {
		cfg.OutputSuffix = fileCfg.OutputSuffix
		cfg.Sources["output_suffix"] = source
	}
	if md.IsDefined("image_extensions") {
		cfg.ImageExtensions = fileCfg.ImageExtensions
		cfg.Sources["image_extensions"] = source
	}
	if md.IsDefined("page_size") {
		cfg.PageSize = fileCfg.PageSize
		cfg.Sources["page_size"] = source
	}
	if md.IsDefined("log_level") {
		cfg.LogLevel = fileCfg.LogLevel
		cfg.Sources["log_level"] = source
	}
	if md.IsDefined("log_format") {
		cfg.LogFormat = fileCfg.LogFormat
		cfg.Sources["log_format"] = source
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("%s: unknown keys: %s", path, strings.Join(keys, ", ")))
	}

	cfg.Files = append(cfg.Files, path)
	return nil
}

// finalizeConfig normalizes values and validates the result.
func finalizeConfig(cfg *Config) error {
	cfg.RembgBinary = expandPath(strings.TrimSpace(cfg.RembgBinary))
	cfg.ImageExtensions = utils.NormalizeExtensions(cfg.ImageExtensions)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	return cfg.Validate()
}
