package rembg

import (
	"path/filepath"
	"strings"

	"github.com/renpy-helper/renpy-helper/internal/utils"
)

// OutputPath returns where the cleaned copy of input is written:
// <outputDir>/<name><suffix><ext>.
func OutputPath(input, outputDir, suffix string) string {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	return filepath.Join(outputDir, name+suffix+ext)
}

// IsImageFile reports whether path has one of exts, ignoring case.
func IsImageFile(path string, exts []string) bool {
	ext := utils.NormalizeExtension(filepath.Ext(path))
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if utils.NormalizeExtension(e) == ext {
			return true
		}
	}
	return false
}
