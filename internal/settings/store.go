package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/renpy-helper/renpy-helper/internal/logging"
	"github.com/renpy-helper/renpy-helper/internal/utils"
)

// Source describes where loaded settings came from.
type Source string

const (
	// SourceDefaults means no settings file existed.
	SourceDefaults Source = "defaults"
	// SourceFile means the settings file was parsed and merged onto the defaults.
	SourceFile Source = "file"
	// SourceDegraded means the settings file could not be read or parsed and
	// the defaults were used instead.
	SourceDegraded Source = "degraded"
)

// LoadResult is the outcome of Load. Settings is always fully populated.
type LoadResult struct {
	Settings Settings
	Source   Source
	// Err is set when Source is SourceDegraded.
	Err error
}

// Load reads the settings file at path and merges it onto the defaults.
func Load(path string) LoadResult {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return LoadResult{Settings: Default(), Source: SourceDefaults}
		}
		return LoadResult{Settings: Default(), Source: SourceDegraded, Err: fmt.Errorf("read settings: %w", err)}
	}

	var patch Patch
	if err := json.Unmarshal(data, &patch); err != nil {
		return LoadResult{Settings: Default(), Source: SourceDegraded, Err: fmt.Errorf("parse settings %s: %w", path, err)}
	}
	return LoadResult{Settings: Merge(Default(), patch), Source: SourceFile}
}

// Option configures a Store.
type Option func(*Store)

// WithWorkDir sets the directory holding the settings file.
func WithWorkDir(dir string) Option {
	return func(s *Store) {
		s.workDir = dir
	}
}

// WithLogger sets the logger used to report recovered errors.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store holds the settings of one invocation and persists every change.
// A Store is not safe for concurrent use.
type Store struct {
	workDir  string
	path     string
	logger   *log.Logger
	settings Settings
	loaded   LoadResult
}

// NewStore loads the settings file from the working directory, falling back
// to the defaults when it is missing or malformed.
func NewStore(opts ...Option) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}
	if s.workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			s.logger.Error("Error resolving working directory", "err", err)
			wd = "."
		}
		s.workDir = wd
	}
	s.path = FilePath(s.workDir)

	s.loaded = Load(s.path)
	if s.loaded.Err != nil {
		s.logger.Error("Error loading settings", "path", s.path, "err", s.loaded.Err)
	}
	s.settings = s.loaded.Settings.Clone()
	return s
}

// Path returns the settings file path.
func (s *Store) Path() string {
	return s.path
}

// LoadResult reports how the store's settings were loaded.
func (s *Store) LoadResult() LoadResult {
	res := s.loaded
	res.Settings = res.Settings.Clone()
	return res
}

// Settings returns a copy of the current settings.
func (s *Store) Settings() Settings {
	return s.settings.Clone()
}

// Rembg returns a copy of the current rembg settings.
func (s *Store) Rembg() RembgSettings {
	return s.settings.Rembg.Clone()
}

// Update merges patch onto the current settings and saves them. The
// in-memory settings are updated even if saving fails; the returned error
// only reports the failed write.
func (s *Store) Update(patch Patch) error {
	s.settings = Merge(s.settings, patch)
	return s.Save()
}

// UpdateRembg merges patch onto the current rembg settings and saves them,
// with the same semantics as Update.
func (s *Store) UpdateRembg(patch RembgPatch) error {
	return s.Update(Patch{Rembg: &patch})
}

// Reset restores the default settings and saves them.
func (s *Store) Reset() error {
	s.settings = Default()
	return s.Save()
}

// Save writes the current settings as indented JSON. A failure is logged and
// returned; the file on disk is left unchanged.
func (s *Store) Save() error {
	data, err := Encode(s.settings)
	if err != nil {
		s.logger.Error("Error saving settings", "path", s.path, "err", err)
		return err
	}
	if err := utils.AtomicWriteFile(s.path, data, 0644); err != nil {
		err = fmt.Errorf("save settings %s: %w", s.path, err)
		s.logger.Error("Error saving settings", "path", s.path, "err", err)
		return err
	}
	return nil
}

// EnsureOutputDirectory creates dir, or the configured output directory when
// dir is empty, if it does not exist yet. Relative paths are resolved against
// the store's working directory. It returns dir as given.
func (s *Store) EnsureOutputDirectory(dir string) (string, error) {
	if dir == "" {
		dir = s.settings.Rembg.OutputDirectory
	}
	return dir, ensureDir(s.resolve(dir))
}

// EnsureInputDirectory is EnsureOutputDirectory for the input directory.
func (s *Store) EnsureInputDirectory(dir string) (string, error) {
	if dir == "" {
		dir = s.settings.Rembg.InputDirectory
	}
	return dir, ensureDir(s.resolve(dir))
}

func (s *Store) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(s.workDir, dir)
}

// Encode renders settings the way they are stored on disk.
func Encode(settings Settings) ([]byte, error) {
	if settings.Rembg.Flags == nil {
		settings.Rembg.Flags = []string{}
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return append(data, '\n'), nil
}

func ensureDir(dir string) error {
	if info, err := os.Stat(dir); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s exists and is not a directory", dir)
		}
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}
