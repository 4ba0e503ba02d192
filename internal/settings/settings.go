package settings

import (
	"path/filepath"
	"slices"
)

// FileName is the settings file name, relative to the working directory.
const FileName = ".renpy-helper-settings.json"

// Default values.
const (
	DefaultInputDirectory  = "."
	DefaultOutputDirectory = "./output"
)

// DefaultFlags returns the flags passed to rembg when none are configured.
func DefaultFlags() []string {
	return []string{"-a", "-m", "isnet-general-use"}
}

// Settings is the persisted settings document.
type Settings struct {
	Rembg RembgSettings `json:"rembg"`
}

// RembgSettings configures invocations of the rembg tool.
type RembgSettings struct {
	// Flags are passed verbatim to rembg, before the input and output paths.
	Flags []string `json:"flags"`
	// InputDirectory is where image browsing starts.
	InputDirectory string `json:"inputDirectory"`
	// OutputDirectory receives processed images.
	OutputDirectory string `json:"outputDirectory"`
}

// Patch is a possibly partial Settings. A nil group or a zero field means
// the value is absent.
type Patch struct {
	Rembg *RembgPatch `json:"rembg,omitempty"`
}

// RembgPatch is a possibly partial RembgSettings.
type RembgPatch struct {
	Flags           []string `json:"flags,omitempty"`
	InputDirectory  string   `json:"inputDirectory,omitempty"`
	OutputDirectory string   `json:"outputDirectory,omitempty"`
}

// Default returns a fresh copy of the built-in settings.
func Default() Settings {
	return Settings{
		Rembg: RembgSettings{
			Flags:           DefaultFlags(),
			InputDirectory:  DefaultInputDirectory,
			OutputDirectory: DefaultOutputDirectory,
		},
	}
}

// FilePath returns the settings file path within workDir.
func FilePath(workDir string) string {
	if workDir == "" {
		workDir = "."
	}
	return filepath.Join(workDir, FileName)
}

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	return Settings{Rembg: s.Rembg.Clone()}
}

// Clone returns a deep copy of r.
func (r RembgSettings) Clone() RembgSettings {
	r.Flags = slices.Clone(r.Flags)
	return r
}

// Merge overrides base field by field with the present, non-empty values of
// patch. It is a shallow merge: a patched flags list replaces the base list.
// The result shares no memory with either argument.
func Merge(base Settings, patch Patch) Settings {
	merged := base.Clone()
	if patch.Rembg != nil {
		merged.Rembg = MergeRembg(merged.Rembg, *patch.Rembg)
	}
	return merged
}

// MergeRembg is Merge for the rembg group.
func MergeRembg(base RembgSettings, patch RembgPatch) RembgSettings {
	merged := base.Clone()
	if len(patch.Flags) > 0 {
		merged.Flags = slices.Clone(patch.Flags)
	}
	if patch.InputDirectory != "" {
		merged.InputDirectory = patch.InputDirectory
	}
	if patch.OutputDirectory != "" {
		merged.OutputDirectory = patch.OutputDirectory
	}
	return merged
}
