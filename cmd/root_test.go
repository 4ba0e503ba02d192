// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/renpy-helper/renpy-helper/internal/config"
	"github.com/renpy-helper/renpy-helper/internal/settings"
	"github.com/renpy-helper/renpy-helper/internal/ui"
)

// setupProject isolates the CLI from the user's config and environment,
// switches to a fresh working directory and captures the output streams.
func setupProject(t *testing.T) (dir string, out, errOut *bytes.Buffer) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	t.Setenv("APPDATA", filepath.Join(home, "appdata"))
	for _, key := range []string{config.EnvRembgBinary, config.EnvTimeout, config.EnvOutputSuffix,
		config.EnvImageExtensions, config.EnvPageSize, config.EnvLogLevel, config.EnvLogFormat} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	dir = t.TempDir()
	chdir(t, dir)
	dir, _ = os.Getwd()

	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
	oldOut, oldErr := stdout, stderr
	stdout, stderr = out, errOut
	t.Cleanup(func() { stdout, stderr = oldOut, oldErr })
	return dir, out, errOut
}

// stubRembg writes a fake rembg that answers --help and copies the input
// image to the output path.
func stubRembg(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stubs are not supported on windows")
	}
	script := `#!/bin/sh
[ "$1" = "--help" ] && exit 0
for arg; do prev=$last; last=$arg; done
cp "$prev" "$last"
`
	path := filepath.Join(t.TempDir(), "rembg")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("Failed to create stub script: %v", err)
	}
	return path
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// TestRun tests the main Run function.
func TestRun(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantOut string
	}{
		{"no arguments shows help", nil, "Commands:"},
		{"help flag", []string{"--help"}, "Global Options:"},
		{"short help flag", []string{"-h"}, "Global Options:"},
		{"help command", []string{"help"}, "settings reset"},
		{"version flag", []string{"--version"}, "renpy-helper version dev"},
		{"version command", []string{"version"}, "renpy-helper version dev"},
		{"config command", []string{"config"}, "rembg_binary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, _ := setupProject(t)
			if err := Run(context.Background(), tt.args); err != nil {
				t.Fatalf("Run(%v): %v", tt.args, err)
			}
			if !strings.Contains(out.String(), tt.wantOut) {
				t.Errorf("output missing %q:\n%s", tt.wantOut, out.String())
			}
		})
	}
}

func TestRunUnknownCommand(t *testing.T) {
	_, _, errOut := setupProject(t)
	err := Run(context.Background(), []string{"unknown-command"})
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("expected 'unknown command' error, got %v", err)
	}
	if !strings.Contains(errOut.String(), "Unknown command: unknown-command") {
		t.Errorf("stderr: %s", errOut.String())
	}
}

func TestRunInvalidConfig(t *testing.T) {
	setupProject(t)
	err := Run(context.Background(), []string{"-page-size", "0", "version"})
	if err == nil || !strings.Contains(err.Error(), "page_size") {
		t.Errorf("expected page_size error, got %v", err)
	}
}

func TestConfigResolved(t *testing.T) {
	dir, out, _ := setupProject(t)
	writeFile(t, filepath.Join(dir, "renpy-helper.toml"), "output_suffix = \"_nobg\"\nbogus = 1\n")

	if err := Run(context.Background(), []string{"config", "-resolved"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := out.String()
	for _, want := range []string{"# loaded ", `output_suffix = "_nobg"`, "page_size = 15"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestConfigWarningsAreLogged(t *testing.T) {
	dir, _, errOut := setupProject(t)
	writeFile(t, filepath.Join(dir, "renpy-helper.toml"), "bogus = 1\n")

	if err := Run(context.Background(), []string{"version"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := Run(context.Background(), []string{"settings", "show"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(errOut.String(), "unknown keys: bogus") {
		t.Errorf("expected warning about unknown key, got: %s", errOut.String())
	}
}

func TestSettingsShowDefaults(t *testing.T) {
	dir, out, _ := setupProject(t)

	if err := Run(context.Background(), []string{"settings", "show"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want, _ := settings.Encode(settings.Default())
	if diff := cmp.Diff(string(want), out.String()); diff != "" {
		t.Errorf("settings show mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(filepath.Join(dir, settings.FileName)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("show must not create the settings file, stat err = %v", err)
	}
}

func TestSettingsShowPath(t *testing.T) {
	dir, out, _ := setupProject(t)
	if err := Run(context.Background(), []string{"settings", "show", "-path"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got, want := strings.TrimSpace(out.String()), filepath.Join(dir, settings.FileName); got != want {
		t.Errorf("path: got %q, want %q", got, want)
	}
}

func TestSettingsShowMalformedFile(t *testing.T) {
	dir, out, errOut := setupProject(t)
	writeFile(t, filepath.Join(dir, settings.FileName), "not valid json")

	if err := Run(context.Background(), []string{"settings", "show"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want, _ := settings.Encode(settings.Default())
	if out.String() != string(want) {
		t.Errorf("expected defaults, got:\n%s", out.String())
	}
	if !strings.Contains(errOut.String(), "Error loading settings") {
		t.Errorf("expected load error to be logged, got: %s", errOut.String())
	}
}

func TestSettingsSet(t *testing.T) {
	dir, out, _ := setupProject(t)

	err := Run(context.Background(), []string{"settings", "set", "-flags", `-m "u2net human seg"`, "-output-dir", "cleaned"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	res := settings.Load(filepath.Join(dir, settings.FileName))
	if res.Source != settings.SourceFile {
		t.Fatalf("Source: got %q, err %v", res.Source, res.Err)
	}
	want := settings.RembgSettings{
		Flags:           []string{"-m", "u2net human seg"},
		InputDirectory:  ".",
		OutputDirectory: "cleaned",
	}
	if diff := cmp.Diff(want, res.Settings.Rembg); diff != "" {
		t.Errorf("saved settings mismatch (-want +got):\n%s", diff)
	}

	if info, err := os.Stat(filepath.Join(dir, "cleaned")); err != nil || !info.IsDir() {
		t.Errorf("output directory not created: %v", err)
	}
	for _, line := range []string{"Settings updated successfully!", `Input directory "." is ready.`, `Output directory "cleaned" is ready.`} {
		if !strings.Contains(out.String(), line) {
			t.Errorf("output missing %q:\n%s", line, out.String())
		}
	}
}

func TestSettingsSetKeepsOtherFields(t *testing.T) {
	dir, _, _ := setupProject(t)
	ctx := context.Background()

	if err := Run(ctx, []string{"settings", "set", "-input-dir", "art"}); err != nil {
		t.Fatalf("first set: %v", err)
	}
	if err := Run(ctx, []string{"settings", "set", "-output-dir", "out"}); err != nil {
		t.Fatalf("second set: %v", err)
	}

	res := settings.Load(filepath.Join(dir, settings.FileName))
	want := settings.RembgSettings{
		Flags:           settings.DefaultFlags(),
		InputDirectory:  "art",
		OutputDirectory: "out",
	}
	if diff := cmp.Diff(want, res.Settings.Rembg); diff != "" {
		t.Errorf("saved settings mismatch (-want +got):\n%s", diff)
	}
}

func TestSettingsSetErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"nothing to set", []string{"settings", "set"}, "nothing to set"},
		{"blank flags", []string{"settings", "set", "-flags", "  "}, "at least one flag"},
		{"unbalanced quote", []string{"settings", "set", "-flags", `-m "x`}, "parsing flags"},
		{"shell expansion", []string{"settings", "set", "-flags", "-m $MODEL"}, "shell expansions are not supported"},
		{"positional argument", []string{"settings", "set", "extra"}, "unexpected arguments"},
		{"unknown action", []string{"settings", "frobnicate"}, "unknown settings command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, _, _ := setupProject(t)
			err := Run(context.Background(), tt.args)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("got %v, want error containing %q", err, tt.wantErr)
			}
			if _, err := os.Stat(filepath.Join(dir, settings.FileName)); !errors.Is(err, os.ErrNotExist) {
				t.Errorf("settings file should not be written, stat err = %v", err)
			}
		})
	}
}

func TestSettingsReset(t *testing.T) {
	dir, out, _ := setupProject(t)
	path := filepath.Join(dir, settings.FileName)
	writeFile(t, path, `{"rembg":{"flags":["-x"],"inputDirectory":"a","outputDirectory":"b"}}`)

	if err := Run(context.Background(), []string{"settings", "reset"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := settings.Encode(settings.Default())
	if diff := cmp.Diff(string(want), string(data)); diff != "" {
		t.Errorf("reset file mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(out.String(), "Settings reset to defaults") {
		t.Errorf("output: %s", out.String())
	}
}

func TestSettingsInteractiveRequiresTTY(t *testing.T) {
	setupProject(t)
	if ui.RequireTTY() == nil {
		t.Skip("running attached to a terminal")
	}
	err := Run(context.Background(), []string{"settings"})
	if !errors.Is(err, ui.ErrNoTTY) {
		t.Errorf("got %v, want ErrNoTTY", err)
	}
}

func TestRembgCommand(t *testing.T) {
	dir, out, _ := setupProject(t)
	bin := stubRembg(t)
	writeFile(t, filepath.Join(dir, "art", "eileen happy.png"), "PNGDATA")

	err := Run(context.Background(), []string{"-rembg-binary", bin, "rembg", filepath.Join("art", "eileen happy.png")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	output := filepath.Join("output", "eileen happy_clean.png")
	data, err := os.ReadFile(filepath.Join(dir, output))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if string(data) != "PNGDATA" {
		t.Errorf("output content: got %q", data)
	}
	for _, want := range []string{"Processing ", "Output will be saved as " + output, "Background removed successfully!", "(7 B)"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRembgCommandUsesSavedSettings(t *testing.T) {
	dir, _, _ := setupProject(t)
	bin := stubRembg(t)
	writeFile(t, filepath.Join(dir, "sprite.webp"), "WEBP")
	writeFile(t, filepath.Join(dir, settings.FileName), `{"rembg":{"outputDirectory":"clean"}}`)
	writeFile(t, filepath.Join(dir, "renpy-helper.toml"), "output_suffix = \"_nobg\"\n")

	if err := Run(context.Background(), []string{"-rembg-binary", bin, "rembg", "sprite.webp"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "clean", "sprite_nobg.webp")); err != nil {
		t.Errorf("expected output in saved directory: %v", err)
	}
}

func TestRembgCommandErrors(t *testing.T) {
	t.Run("not installed", func(t *testing.T) {
		dir, _, errOut := setupProject(t)
		writeFile(t, filepath.Join(dir, "a.png"), "x")
		err := Run(context.Background(), []string{"-rembg-binary", filepath.Join(dir, "missing-rembg"), "rembg", "a.png"})
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(errOut.String(), "pip install rembg") {
			t.Errorf("expected install hint, got: %s", errOut.String())
		}
	})

	t.Run("not an image", func(t *testing.T) {
		dir, _, _ := setupProject(t)
		bin := stubRembg(t)
		writeFile(t, filepath.Join(dir, "notes.txt"), "x")
		err := Run(context.Background(), []string{"-rembg-binary", bin, "rembg", "notes.txt"})
		if err == nil || !strings.Contains(err.Error(), "Please select an image file") {
			t.Errorf("got %v", err)
		}
	})

	t.Run("too many arguments", func(t *testing.T) {
		setupProject(t)
		err := Run(context.Background(), []string{"rembg", "a.png", "b.png"})
		if err == nil || !strings.Contains(err.Error(), "unexpected arguments") {
			t.Errorf("got %v", err)
		}
	})
}

func TestImageSearchStart(t *testing.T) {
	sep := string(filepath.Separator)
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{".", ""},
		{"./", ""},
		{"./art", "art" + sep},
		{"art/", "art" + sep},
	}
	if runtime.GOOS != "windows" {
		tests = append(tests, struct{ in, want string }{"/", "/"}, struct{ in, want string }{"//", "/"})
	}
	for _, tt := range tests {
		if got := imageSearchStart(tt.in); got != tt.want {
			t.Errorf("imageSearchStart(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDoctor(t *testing.T) {
	t.Run("healthy project", func(t *testing.T) {
		_, out, _ := setupProject(t)
		bin := stubRembg(t)
		if err := Run(context.Background(), []string{"-rembg-binary", bin, "doctor", "-v"}); err != nil {
			t.Fatalf("doctor failed: %v\n%s", err, out.String())
		}
		for _, want := range []string{"✅ OK", "Not found (defaults in use", "rembg_binary = " + bin + " (flag)", "All checks passed"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("output missing %q:\n%s", want, out.String())
			}
		}
	})

	t.Run("invalid settings file", func(t *testing.T) {
		dir, out, _ := setupProject(t)
		bin := stubRembg(t)
		writeFile(t, filepath.Join(dir, settings.FileName), `{"rembg":{"flags":"-a"}}`)
		err := Run(context.Background(), []string{"-rembg-binary", bin, "doctor"})
		if err == nil || !strings.Contains(err.Error(), "doctor checks failed") {
			t.Fatalf("got %v", err)
		}
		if !strings.Contains(out.String(), "rembg.flags") {
			t.Errorf("expected the failing path in output:\n%s", out.String())
		}
	})

	t.Run("missing rembg", func(t *testing.T) {
		dir, out, _ := setupProject(t)
		err := Run(context.Background(), []string{"-rembg-binary", filepath.Join(dir, "nope"), "doctor"})
		if err == nil {
			t.Fatal("expected doctor to fail")
		}
		if !strings.Contains(out.String(), "pip install rembg") {
			t.Errorf("expected install hint:\n%s", out.String())
		}
	})
}

func TestRembgBatch(t *testing.T) {
	dir, out, _ := setupProject(t)
	bin := stubRembg(t)
	for _, name := range []string{"a.png", "b.jpg", "notes.txt"} {
		writeFile(t, filepath.Join(dir, "art", name), "IMG")
	}
	writeFile(t, filepath.Join(dir, settings.FileName), `{"rembg":{"inputDirectory":"art"}}`)

	err := Run(context.Background(), []string{"-rembg-binary", bin, "rembg", "-all", "-jobs", "2"})
	if err != nil {
		t.Fatalf("Run: %v\n%s", err, out.String())
	}
	for _, name := range []string{"a_clean.png", "b_clean.jpg"} {
		if _, err := os.Stat(filepath.Join(dir, "output", name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "output", "notes_clean.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("non-image should not be processed, stat err = %v", err)
	}
	if !strings.Contains(out.String(), "Background removed from 2 images") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestRembgBatchFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stubs are not supported on windows")
	}
	dir, out, _ := setupProject(t)
	script := `#!/bin/sh
[ "$1" = "--help" ] && exit 0
for arg; do prev=$last; last=$arg; done
case "$prev" in *bad*) echo "cannot identify image file" >&2; exit 1;; esac
cp "$prev" "$last"
`
	bin := filepath.Join(t.TempDir(), "rembg")
	writeFile(t, bin, script)
	if err := os.Chmod(bin, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "bad.png"), "x")
	writeFile(t, filepath.Join(dir, "good.png"), "x")

	err := Run(context.Background(), []string{"-rembg-binary", bin, "rembg", "-all"})
	if err == nil || !strings.Contains(err.Error(), "1 of 2 images failed") {
		t.Fatalf("got %v", err)
	}
	if !strings.Contains(out.String(), "cannot identify image file") {
		t.Errorf("expected rembg stderr in output:\n%s", out.String())
	}
}

func TestRembgBatchArguments(t *testing.T) {
	setupProject(t)
	if err := Run(context.Background(), []string{"rembg", "-all", "a.png"}); err == nil {
		t.Error("expected error combining -all with an image")
	}
	if err := Run(context.Background(), []string{"rembg", "-all", "-jobs", "0"}); err == nil {
		t.Error("expected error for -jobs 0")
	}
}
