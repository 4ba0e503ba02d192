package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/renpy-helper/renpy-helper/internal/config"
	"github.com/renpy-helper/renpy-helper/internal/settings"
	"github.com/renpy-helper/renpy-helper/internal/ui"
)

// settingsCommand dispatches the settings subcommands. Without one it runs
// the interactive editor.
func settingsCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string) error {
	action := ""
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		action = args[0]
		args = args[1:]
	}

	store := newStore(cfg, logger)
	switch action {
	case "":
		if len(args) > 0 {
			return fmt.Errorf("unexpected arguments: %v", args)
		}
		return settingsInteractive(ctx, cfg, store)
	case "show":
		return settingsShow(store, args)
	case "set":
		return settingsSet(store, args)
	case "reset":
		return settingsReset(store, args)
	default:
		return fmt.Errorf("unknown settings command: %s (expected show|set|reset)", action)
	}
}

func settingsShow(store *settings.Store, args []string) error {
	fs := flag.NewFlagSet("renpy-helper settings show", flag.ContinueOnError)
	fs.SetOutput(stderr)
	showPath := fs.Bool("path", false, "Print the settings file path instead")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *showPath {
		fmt.Fprintln(stdout, store.Path())
		return nil
	}
	data, err := settings.Encode(store.Settings())
	if err != nil {
		return err
	}
	_, err = stdout.Write(data)
	return err
}

func settingsSet(store *settings.Store, args []string) error {
	fs := flag.NewFlagSet("renpy-helper settings set", flag.ContinueOnError)
	fs.SetOutput(stderr)
	flagsArg := fs.String("flags", "", "rembg flags, shell quoted")
	inputDir := fs.String("input-dir", "", "Input directory")
	outputDir := fs.String("output-dir", "", "Output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	var patch settings.RembgPatch
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if len(set) == 0 {
		return fmt.Errorf("nothing to set: use -flags, -input-dir or -output-dir")
	}
	if set["flags"] {
		flags, err := ui.ParseFlags(*flagsArg)
		if err != nil {
			return err
		}
		patch.Flags = flags
	}
	patch.InputDirectory = strings.TrimSpace(*inputDir)
	patch.OutputDirectory = strings.TrimSpace(*outputDir)

	if err := store.UpdateRembg(patch); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Settings updated successfully!")
	return ensureDirectories(store)
}

func settingsReset(store *settings.Store, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	if err := store.Reset(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Settings reset to defaults in %s\n", store.Path())
	return nil
}

func settingsInteractive(ctx context.Context, cfg *config.Config, store *settings.Store) error {
	if err := ui.RequireTTY(); err != nil {
		return fmt.Errorf("%w: use 'settings set' instead", err)
	}

	current := store.Rembg()
	fmt.Fprintln(stdout, "\nCurrent rembg settings:")
	printRembgSettings(current)
	fmt.Fprintln(stdout)

	flags, err := ui.PromptFlags(ctx, current.Flags)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, "\nSelect input directory:")
	inputDir, err := ui.SelectDirectory(ctx, current.InputDirectory, "Select input directory:", cfg.PageSize)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, "\nSelect output directory:")
	outputDir, err := ui.SelectDirectory(ctx, current.OutputDirectory, "Select output directory:", cfg.PageSize)
	if err != nil {
		return err
	}

	err = store.UpdateRembg(settings.RembgPatch{
		Flags:           flags,
		InputDirectory:  inputDir,
		OutputDirectory: outputDir,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, "\nSettings updated successfully!")
	return ensureDirectories(store)
}

// ensureDirectories creates the configured directories and reports them.
func ensureDirectories(store *settings.Store) error {
	inputDir, err := store.EnsureInputDirectory("")
	if err != nil {
		return err
	}
	outputDir, err := store.EnsureOutputDirectory("")
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Input directory \"%s\" is ready.\n", inputDir)
	fmt.Fprintf(stdout, "Output directory \"%s\" is ready.\n", outputDir)
	return nil
}

func printRembgSettings(r settings.RembgSettings) {
	fmt.Fprintf(stdout, "Flags: %s\n", ui.JoinFlags(r.Flags))
	fmt.Fprintf(stdout, "Input directory: %s\n", r.InputDirectory)
	fmt.Fprintf(stdout, "Output directory: %s\n", r.OutputDirectory)
}
