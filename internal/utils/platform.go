package utils

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	// ErrIsDirectory is returned when an executable path names a directory.
	ErrIsDirectory = errors.New("path is a directory")
	// ErrNotExecutable is returned when a file lacks execute permission.
	ErrNotExecutable = errors.New("not executable")
)

// WindowsExecutableExtensions returns a map of lowercase Windows executable
// extensions (with leading dot) to true, parsed from the PATHEXT environment
// variable. Returns a default set if PATHEXT is unset.
func WindowsExecutableExtensions() map[string]bool {
	pathext := os.Getenv("PATHEXT")
	if pathext == "" {
		pathext = ".COM;.EXE;.BAT;.CMD"
	}
	exts := map[string]bool{}
	for _, ext := range NormalizeExtensions(strings.Split(pathext, ";")) {
		exts[ext] = true
	}
	return exts
}

// IsWindowsExecutable returns true if the given file path has a Windows
// executable extension according to the PATHEXT environment variable.
func IsWindowsExecutable(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	return WindowsExecutableExtensions()[ext]
}

// ResolveExecutable resolves binary either as a path or through PATH and
// checks that it is a runnable file. It returns the resolved path.
func ResolveExecutable(binary string) (string, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return "", errors.New("no binary configured")
	}

	resolved := binary
	if !strings.ContainsRune(binary, os.PathSeparator) && !strings.Contains(binary, "/") {
		path, err := exec.LookPath(binary)
		if err != nil {
			return "", err
		}
		resolved = path
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return resolved, fmt.Errorf("%s: %w", resolved, ErrIsDirectory)
	}
	if !isExecutable(resolved, info) {
		return resolved, fmt.Errorf("%s: %w", resolved, ErrNotExecutable)
	}
	return resolved, nil
}

func isExecutable(path string, info os.FileInfo) bool {
	if runtime.GOOS == "windows" {
		return IsWindowsExecutable(path)
	}
	return info.Mode().Perm()&0111 != 0
}
