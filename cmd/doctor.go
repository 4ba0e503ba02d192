package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/renpy-helper/renpy-helper/internal/config"
	"github.com/renpy-helper/renpy-helper/internal/rembg"
	"github.com/renpy-helper/renpy-helper/internal/settings"
)

// doctorCommand checks that rembg runs, that the settings file is valid and
// reports where each config value came from.
func doctorCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("renpy-helper doctor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	fmt.Fprintln(stdout, "renpy-helper Doctor")
	fmt.Fprintln(stdout, "===================")
	fmt.Fprintln(stdout)

	allOK := true

	// Check rembg
	fmt.Fprintf(stdout, "rembg: %s\n", cfg.RembgBinary)
	runner := rembg.NewRunner(cfg.RembgBinary, cfg.Timeout(), logger)
	if path, err := runner.Check(ctx); err != nil {
		fmt.Fprintf(stdout, "  ❌ %v\n", err)
		fmt.Fprintf(stdout, "     Install it with: %s\n", rembg.InstallHint)
		allOK = false
	} else {
		fmt.Fprintf(stdout, "  ✅ OK (%s)\n", path)
	}
	fmt.Fprintln(stdout)

	// Check settings file
	settingsPath := settings.FilePath(cfg.WorkDir)
	fmt.Fprintf(stdout, "Settings file: %s\n", settingsPath)
	if !checkSettingsFile(settingsPath, *verbose) {
		allOK = false
	}
	fmt.Fprintln(stdout)

	// Check directories
	res := settings.Load(settingsPath)
	fmt.Fprintln(stdout, "Directories:")
	checkDirectory("Input", cfg.WorkDir, res.Settings.Rembg.InputDirectory)
	checkDirectory("Output", cfg.WorkDir, res.Settings.Rembg.OutputDirectory)
	fmt.Fprintln(stdout)

	// Config
	fmt.Fprintln(stdout, "Config:")
	if len(cfg.Files) == 0 {
		fmt.Fprintln(stdout, "  Files: (none, using defaults)")
	}
	for _, path := range cfg.Files {
		fmt.Fprintf(stdout, "  File: %s\n", path)
	}
	for _, w := range cfg.Warnings {
		fmt.Fprintf(stdout, "  ⚠️  %s\n", w)
	}
	if *verbose {
		for _, key := range config.Keys() {
			fmt.Fprintf(stdout, "  %s = %s (%s)\n", key, cfg.Value(key), cfg.Source(key))
		}
	}
	fmt.Fprintln(stdout)

	if allOK {
		fmt.Fprintln(stdout, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(stdout, "⚠️  Some checks failed. renpy-helper may not function correctly.")
	return fmt.Errorf("doctor checks failed")
}

// checkSettingsFile reports on the settings file and returns false when it
// exists but cannot be used.
func checkSettingsFile(path string, verbose bool) bool {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(stdout, "  ⚠️  Not found (defaults in use, created on first save)")
			return true
		}
		fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
		return false
	}
	if info.IsDir() {
		fmt.Fprintln(stdout, "  ❌ Error: path is a directory")
		return false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
		return false
	}
	if err := settings.Validate(data); err != nil {
		fmt.Fprintf(stdout, "  ❌ Invalid: %v\n", err)
		fmt.Fprintln(stdout, "     Defaults are used until the file is fixed or rewritten.")
		return false
	}
	fmt.Fprintln(stdout, "  ✅ Valid")
	if verbose {
		fmt.Fprintf(stdout, "  Size: %s, modified %s\n", humanize.Bytes(uint64(info.Size())), humanize.Time(info.ModTime()))
		res := settings.Load(path)
		printRembgSettings(res.Settings.Rembg)
	}
	return true
}

func checkDirectory(label, workDir, dir string) {
	path := dir
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}
	info, err := os.Stat(path)
	switch {
	case err != nil && errors.Is(err, os.ErrNotExist):
		fmt.Fprintf(stdout, "  ⚠️  %s: %s (not found, created when needed)\n", label, dir)
	case err != nil:
		fmt.Fprintf(stdout, "  ⚠️  %s: %s (%v)\n", label, dir, err)
	case !info.IsDir():
		fmt.Fprintf(stdout, "  ⚠️  %s: %s (not a directory)\n", label, dir)
	default:
		fmt.Fprintf(stdout, "  ✅ %s: %s\n", label, dir)
	}
}
