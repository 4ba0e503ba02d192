package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/renpy-helper/renpy-helper/internal/browse"
	"github.com/renpy-helper/renpy-helper/internal/config"
	"github.com/renpy-helper/renpy-helper/internal/parallel"
	"github.com/renpy-helper/renpy-helper/internal/rembg"
	"github.com/renpy-helper/renpy-helper/internal/settings"
	"github.com/renpy-helper/renpy-helper/internal/ui"
)

// rembgCommand removes the background of one image.
func rembgCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("renpy-helper rembg", flag.ContinueOnError)
	fs.SetOutput(stderr)
	outputDir := fs.String("output-dir", "", "Output directory for this run (default: saved setting)")
	all := fs.Bool("all", false, "Process every image in the input directory")
	jobs := fs.Int("jobs", 1, "Images processed concurrently with -all")
	failFast := fs.Bool("fail-fast", false, "Stop at the first failure with -all")
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}
	if *all && len(remaining) > 0 {
		return fmt.Errorf("-all does not take an image argument")
	}
	if *jobs < 1 {
		return fmt.Errorf("-jobs must be at least 1, got %d", *jobs)
	}

	store := newStore(cfg, logger)
	current := store.Rembg()

	runner := rembg.NewRunner(cfg.RembgBinary, cfg.Timeout(), logger)
	if _, err := runner.Check(ctx); err != nil {
		if errors.Is(err, rembg.ErrNotInstalled) {
			fmt.Fprintln(stderr, "Error: rembg tool is not installed or not in PATH.")
			fmt.Fprintf(stderr, "Please install rembg using: %s\n", rembg.InstallHint)
		}
		return err
	}

	if *all {
		outDir, err := store.EnsureOutputDirectory(*outputDir)
		if err != nil {
			return err
		}
		return rembgBatch(ctx, cfg, runner, current, outDir, *jobs, *failFast)
	}

	var input string
	if len(remaining) == 1 {
		input = remaining[0]
		if err := browse.ValidateImage(input, cfg.ImageExtensions); err != nil {
			return fmt.Errorf("%s: %w", input, err)
		}
	} else {
		if err := ui.RequireTTY(); err != nil {
			return fmt.Errorf("%w: pass the image path as an argument", err)
		}
		selected, err := ui.SelectImage(ctx, "Enter the path to the image file:",
			imageSearchStart(current.InputDirectory), cfg.ImageExtensions, cfg.PageSize)
		if err != nil {
			return err
		}
		input = selected
	}

	outDir, err := store.EnsureOutputDirectory(*outputDir)
	if err != nil {
		return err
	}
	output := rembg.OutputPath(input, outDir, cfg.OutputSuffix)

	fmt.Fprintf(stdout, "Processing %s...\n", input)
	fmt.Fprintf(stdout, "Output will be saved as %s\n", output)

	start := time.Now()
	if err := runner.Remove(ctx, current.Flags, input, output); err != nil {
		return err
	}
	logger.Debug("background removed", "input", input, "elapsed", time.Since(start).Round(time.Millisecond))

	if info, err := os.Stat(output); err == nil {
		fmt.Fprintf(stdout, "Background removed successfully! Output saved to: %s (%s)\n", output, humanize.Bytes(uint64(info.Size())))
		return nil
	}
	fmt.Fprintf(stdout, "Background removed successfully! Output saved to: %s\n", output)
	return nil
}

// rembgBatch removes the background of every image in the input directory.
func rembgBatch(ctx context.Context, cfg *config.Config, runner *rembg.Runner, current settings.RembgSettings, outDir string, jobs int, failFast bool) error {
	inputDir := current.InputDirectory
	images, err := browse.ListImages(inputDir, cfg.ImageExtensions)
	if err != nil {
		return err
	}
	if len(images) == 0 {
		fmt.Fprintf(stdout, "No images found in %s\n", inputDir)
		return nil
	}
	fmt.Fprintf(stdout, "Processing %d images from %s with %d workers...\n", len(images), inputDir, jobs)

	pool := parallel.NewWorkerPool(ctx, jobs, failFast)
	for _, input := range images {
		input := input
		output := rembg.OutputPath(input, outDir, cfg.OutputSuffix)
		pool.Submit(input, func(ctx context.Context) (string, error) {
			return output, runner.Remove(ctx, current.Flags, input, output)
		})
	}
	results, errs := pool.Wait()

	for _, res := range results {
		if res.Error != nil {
			fmt.Fprintf(stdout, "  ❌ %s: %v\n", res.ID, res.Error)
			continue
		}
		size := ""
		if info, err := os.Stat(res.Output); err == nil {
			size = " (" + humanize.Bytes(uint64(info.Size())) + ")"
		}
		fmt.Fprintf(stdout, "  ✅ %s -> %s%s in %s\n", res.ID, res.Output, size, res.Duration.Round(time.Millisecond))
	}
	if skipped := len(images) - len(results); skipped > 0 {
		fmt.Fprintf(stdout, "  ⚠️  %d skipped after a failure\n", skipped)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d images failed", len(errs), len(images))
	}
	fmt.Fprintf(stdout, "Background removed from %d images. Output saved to: %s\n", len(results), outDir)
	return nil
}

// imageSearchStart pre-fills the image picker with the input directory so
// suggestions start there.
func imageSearchStart(inputDir string) string {
	if inputDir == "" || filepath.Clean(inputDir) == "." {
		return ""
	}
	dir := filepath.Clean(inputDir)
	if strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir
	}
	return dir + string(filepath.Separator)
}
