package config

import (
	"flag"
)

// flagKeys maps global flag names to config keys for source tracking.
var flagKeys = map[string]string{
	"rembg-binary": "rembg_binary",
	"timeout":      "timeout_seconds",
	"page-size":    "page_size",
	"log-level":    "log_level",
	"log-format":   "log_format",
}

// parseFlags defines the global flags on fs and parses args.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	if fs == nil {
		fs = flag.NewFlagSet("renpy-helper", flag.ContinueOnError)
	}

	fs.StringVar(&cfg.RembgBinary, "rembg-binary", cfg.RembgBinary, "rembg executable name or path")
	fs.IntVar(&cfg.TimeoutSeconds, "timeout", cfg.TimeoutSeconds, "rembg timeout in seconds (0 = none)")
	fs.IntVar(&cfg.PageSize, "page-size", cfg.PageSize, "Entries shown per page in pickers")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			cfg.Sources[key] = SourceFlag
		}
	})
	return nil
}
