package browse

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Kind identifies what selecting a Choice does.
type Kind int

const (
	// KindParent moves to the parent directory.
	KindParent Kind = iota
	// KindSelect picks the current directory.
	KindSelect
	// KindDir moves into a subdirectory.
	KindDir
)

// Choice values for the fixed entries.
const (
	ParentValue = ".."
	SelectValue = "."
)

const (
	parentLabel = "../ (Go up one directory)"
	selectLabel = "./ (Select current directory)"
)

// Choice is one entry of the directory picker.
type Choice struct {
	Label string
	Value string
	Kind  Kind
}

// DirectoryChoices lists the picker entries for dir: the parent entry
// (omitted at the filesystem root), the select entry, then every
// non-hidden subdirectory sorted by label.
func DirectoryChoices(dir string) ([]Choice, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var choices []Choice
	if !IsRoot(dir) {
		choices = append(choices, Choice{Label: parentLabel, Value: ParentValue, Kind: KindParent})
	}
	choices = append(choices, Choice{Label: selectLabel, Value: SelectValue, Kind: KindSelect})

	var subdirs []Choice
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !entry.IsDir() {
			continue
		}
		subdirs = append(subdirs, Choice{Label: name + "/", Value: name, Kind: KindDir})
	}
	sort.Slice(subdirs, func(i, j int) bool { return subdirs[i].Label < subdirs[j].Label })

	return append(choices, subdirs...), nil
}

// HasSubdirectories reports whether choices contains any subdirectory entry.
func HasSubdirectories(choices []Choice) bool {
	for _, c := range choices {
		if c.Kind == KindDir {
			return true
		}
	}
	return false
}

// IsRoot reports whether dir is a filesystem root.
func IsRoot(dir string) bool {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	return filepath.Dir(abs) == abs
}

// Navigator tracks the directory being browsed.
type Navigator struct {
	// Current is always an absolute, clean path.
	Current string
}

// NewNavigator starts browsing at start, resolved against the process
// working directory.
func NewNavigator(start string) (*Navigator, error) {
	if start == "" {
		start = "."
	}
	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", start, err)
	}
	return &Navigator{Current: abs}, nil
}

// Choices lists the entries for the current directory.
func (n *Navigator) Choices() ([]Choice, error) {
	return DirectoryChoices(n.Current)
}

// Choose applies a picked value. It returns the selected directory and true
// when value selects the current directory; otherwise it moves and returns
// false.
func (n *Navigator) Choose(value string) (string, bool) {
	switch value {
	case SelectValue:
		return n.Current, true
	case ParentValue:
		n.Current = filepath.Dir(n.Current)
	default:
		n.Current = filepath.Join(n.Current, value)
	}
	return "", false
}

// Recover moves to the parent after the current directory could not be
// read. At the root it stays put.
func (n *Navigator) Recover() {
	n.Current = filepath.Dir(n.Current)
}
