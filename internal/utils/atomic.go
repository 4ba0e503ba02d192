package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// AtomicWriteFile writes data to a temporary file in the target's directory,
// syncs it and renames it over path. On any failure the existing file at path
// is left as it was.
//
// A symlinked path is written through to the file it points at. An existing
// file keeps its permission bits, and one the caller may not write is not
// replaced. perm applies only when the file is created.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	target, err := writeTarget(path)
	if err != nil {
		return err
	}

	mode := perm
	info, err := os.Stat(target)
	switch {
	case err == nil:
		if !info.Mode().IsRegular() {
			return fmt.Errorf("%s is not a regular file", target)
		}
		mode = info.Mode().Perm()
		existing, err := os.OpenFile(target, os.O_WRONLY, 0)
		if err != nil {
			return fmt.Errorf("open for writing: %w", err)
		}
		existing.Close()
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("stat %s: %w", target, err)
	}

	f, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := f.Name()

	success := false
	defer func() {
		if !success {
			f.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Chmod(mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tempPath, target); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	success = true
	return nil
}

// writeTarget returns the absolute path that should receive the data,
// following symlinks. A dangling link resolves to the file it names.
func writeTarget(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	for i := 0; i < 40; i++ {
		info, err := os.Lstat(absPath)
		if errors.Is(err, fs.ErrNotExist) {
			return absPath, nil
		}
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", absPath, err)
		}
		if info.Mode()&os.ModeSymlink == 0 {
			return absPath, nil
		}
		link, err := os.Readlink(absPath)
		if err != nil {
			return "", fmt.Errorf("read link %s: %w", absPath, err)
		}
		if !filepath.IsAbs(link) {
			link = filepath.Join(filepath.Dir(absPath), link)
		}
		absPath = link
	}
	return "", fmt.Errorf("resolve %s: too many levels of symbolic links", path)
}
