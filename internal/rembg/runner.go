package rembg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/renpy-helper/renpy-helper/internal/logging"
	"github.com/renpy-helper/renpy-helper/internal/utils"
)

// DefaultBinary is the rembg executable looked up in PATH.
const DefaultBinary = "rembg"

// InstallHint tells the user how to get rembg.
const InstallHint = "pip install rembg"

// ErrNotInstalled is returned when the rembg binary cannot be found or run.
var ErrNotInstalled = errors.New("rembg tool is not installed or not in PATH")

// Runner invokes the rembg binary.
type Runner struct {
	// Binary is an executable name looked up in PATH, or a path.
	Binary string
	// Timeout bounds each invocation. Zero means no limit.
	Timeout time.Duration
	Logger  *log.Logger
}

// NewRunner returns a Runner for binary, falling back to DefaultBinary.
func NewRunner(binary string, timeout time.Duration, logger *log.Logger) *Runner {
	return &Runner{Binary: binary, Timeout: timeout, Logger: logger}
}

func (r *Runner) binary() string {
	if r.Binary == "" {
		return DefaultBinary
	}
	return r.Binary
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return logging.Discard()
	}
	return r.Logger
}

// Check verifies that rembg can be started by running "<binary> --help".
// It returns the resolved binary path.
func (r *Runner) Check(ctx context.Context) (string, error) {
	path, err := utils.ResolveExecutable(r.binary())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotInstalled, err)
	}

	ctx, cancel := applyTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, "--help")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return path, ctxErr
		}
		r.logger().Debug("rembg --help failed", "path", path, "err", err, "stderr", strings.TrimSpace(stderr.String()))
		return path, fmt.Errorf("%w: %s --help: %v", ErrNotInstalled, path, err)
	}
	return path, nil
}

// Args returns the argument vector passed to rembg.
func Args(flags []string, input, output string) []string {
	args := make([]string, 0, len(flags)+2)
	args = append(args, flags...)
	return append(args, input, output)
}

// Remove runs "<binary> <flags...> <input> <output>". A non-zero exit is an
// error carrying rembg's stderr. Output on stderr from a successful run is
// logged as a warning.
func (r *Runner) Remove(ctx context.Context, flags []string, input, output string) error {
	ctx, cancel := applyTimeout(ctx, r.Timeout)
	defer cancel()

	args := Args(flags, input, output)
	cmd := exec.CommandContext(ctx, r.binary(), args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger := r.logger()
	logger.Debug("running rembg", "binary", r.binary(), "args", args)

	start := time.Now()
	runErr := cmd.Run()
	errText := strings.TrimSpace(stderr.String())
	logger.Debug("rembg finished",
		"exit", exitCodeFromError(runErr),
		"elapsed", time.Since(start).Round(time.Millisecond),
		"stdout", strings.TrimSpace(stdout.String()),
	)

	if runErr != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("rembg timeout after %s", r.Timeout)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Anything but an exit status means the process never started.
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return fmt.Errorf("%w: %v", ErrNotInstalled, runErr)
		}
		if errText != "" {
			return fmt.Errorf("rembg failed: %w: %s", runErr, errText)
		}
		return fmt.Errorf("rembg failed: %w", runErr)
	}

	if errText != "" {
		logger.Warn("rembg wrote to stderr", "stderr", errText)
	}
	return nil
}

func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func applyTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
