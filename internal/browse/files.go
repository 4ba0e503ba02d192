package browse

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/renpy-helper/renpy-helper/internal/rembg"
)

// Errors returned by ValidateImage. Their text is shown to the user as is.
var (
	ErrEmptyPath   = errors.New("Please enter a valid file path")
	ErrNoSuchFile  = errors.New("File does not exist")
	ErrIsDirectory = errors.New("Please select a file, not a directory")
	ErrNotImage    = errors.New("Please select an image file")
)

// SearchFiles suggests completions for a partially typed path. It lists the
// directory part of input and keeps entries whose name contains the base
// part, ignoring case. Directories are kept with a trailing separator, files
// only when they have one of exts. Directories sort before files.
// A missing or unreadable directory yields nil.
func SearchFiles(input string, exts []string) []string {
	dir, base := splitInput(input)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	needle := strings.ToLower(base)
	var dirs, files []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.Contains(strings.ToLower(name), needle) {
			continue
		}
		path := filepath.Join(dir, name)
		if entry.IsDir() {
			dirs = append(dirs, path+string(filepath.Separator))
			continue
		}
		if rembg.IsImageFile(name, exts) {
			files = append(files, path)
		}
	}
	sort.Strings(dirs)
	sort.Strings(files)
	return append(dirs, files...)
}

// splitInput returns the directory to list and the name fragment to match.
func splitInput(input string) (dir, base string) {
	switch {
	case input == "" || input == ".":
		return ".", ""
	case strings.HasSuffix(input, string(filepath.Separator)) || strings.HasSuffix(input, "/"):
		return input, ""
	default:
		return filepath.Dir(input), filepath.Base(input)
	}
}

// ValidateImage checks that path names an existing image file.
func ValidateImage(path string, exts []string) error {
	if strings.TrimSpace(path) == "" {
		return ErrEmptyPath
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNoSuchFile
		}
		return err
	}
	if info.IsDir() {
		return ErrIsDirectory
	}
	if !rembg.IsImageFile(path, exts) {
		return ErrNotImage
	}
	return nil
}

// ListImages returns the image files directly inside dir, sorted by name.
func ListImages(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var images []string
	for _, entry := range entries {
		if entry.IsDir() || !rembg.IsImageFile(entry.Name(), exts) {
			continue
		}
		images = append(images, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(images)
	return images, nil
}
