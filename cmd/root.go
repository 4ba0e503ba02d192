// Package cmd implements the CLI command structure for renpy-helper.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/renpy-helper/renpy-helper/internal/config"
	"github.com/renpy-helper/renpy-helper/internal/logging"
	"github.com/renpy-helper/renpy-helper/internal/settings"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Output streams, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Run executes the renpy-helper CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("renpy-helper", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	logger := newLogger(cfg)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	remainingArgs := fs.Args()
	if len(remainingArgs) == 0 {
		printUsage(fs, stdout)
		return nil
	}
	subcommand := remainingArgs[0]
	remainingArgs = remainingArgs[1:]

	switch subcommand {
	case "rembg":
		return rembgCommand(ctx, cfg, logger, remainingArgs)
	case "settings":
		return settingsCommand(ctx, cfg, logger, remainingArgs)
	case "doctor":
		return doctorCommand(ctx, cfg, logger, remainingArgs)
	case "config":
		return configCommand(cfg, remainingArgs)
	case "version", "--version", "-v":
		return versionCommand()
	case "help", "--help", "-h":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

func newLogger(cfg *config.Config) *log.Logger {
	return logging.New(stderr, cfg.LogLevel, cfg.LogFormat)
}

func newStore(cfg *config.Config, logger *log.Logger) *settings.Store {
	return settings.NewStore(settings.WithWorkDir(cfg.WorkDir), settings.WithLogger(logger))
}

// configCommand prints the example config file, or the resolved values
// with -resolved.
func configCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("renpy-helper config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	resolved := fs.Bool("resolved", false, "Print the effective configuration instead of the example")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if !*resolved {
		fmt.Fprint(stdout, config.ExampleConfig())
		return nil
	}
	for _, path := range cfg.Files {
		fmt.Fprintf(stdout, "# loaded %s\n", path)
	}
	return toml.NewEncoder(stdout).Encode(cfg)
}

func versionCommand() error {
	fmt.Fprintf(stdout, "renpy-helper version %s\n", Version)
	return nil
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "renpy-helper - helpful utilities for developing visual novels using Ren'Py")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  renpy-helper [options] <command> [command options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  rembg [image]     Remove the background from an image using rembg")
	fmt.Fprintln(w, "  settings          Update the rembg settings interactively")
	fmt.Fprintln(w, "  settings show     Print the current settings")
	fmt.Fprintln(w, "  settings set      Update settings without prompts")
	fmt.Fprintln(w, "  settings reset    Restore the default settings")
	fmt.Fprintln(w, "  doctor            Check rembg, the settings file and the config")
	fmt.Fprintln(w, "  config            Print an example config file")
	fmt.Fprintln(w, "  version           Show version information")
	fmt.Fprintln(w, "  help              Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rembg Options (use with 'rembg' command):")
	fmt.Fprintln(w, "  -output-dir string")
	fmt.Fprintln(w, "        Output directory for this run (default: saved setting)")
	fmt.Fprintln(w, "  -all  Process every image in the input directory")
	fmt.Fprintln(w, "  -jobs int")
	fmt.Fprintln(w, "        Images processed concurrently with -all (default 1)")
	fmt.Fprintln(w, "  -fail-fast")
	fmt.Fprintln(w, "        Stop at the first failure with -all")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Settings Set Options (use with 'settings set'):")
	fmt.Fprintln(w, "  -flags string")
	fmt.Fprintln(w, "        rembg flags, shell quoted (e.g. \"-a -m isnet-general-use\")")
	fmt.Fprintln(w, "  -input-dir string")
	fmt.Fprintln(w, "        Input directory")
	fmt.Fprintln(w, "  -output-dir string")
	fmt.Fprintln(w, "        Output directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Doctor Options (use with 'doctor' command):")
	fmt.Fprintln(w, "  -v    Show more details")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Settings are stored in %s in the current directory.\n", settings.FileName)
	fmt.Fprintf(w, "Config files: ~/.renpy-helper/%s or ./%s\n", config.ConfigFileName, strings.Join(config.ProjectConfigNames, ", ./"))
}
