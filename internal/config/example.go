package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# renpy-helper configuration file
# Save as ~/.renpy-helper/config.toml or ./renpy-helper.toml.
# Values can be overridden by RENPY_HELPER_* environment variables or CLI flags.
#
# The rembg flags and input/output directories are not configured here:
# run "renpy-helper settings" to edit .renpy-helper-settings.json instead.

# rembg executable, a name looked up in PATH or a path (supports ~ expansion)
rembg_binary = "rembg"

# Abort rembg after this many seconds (0 = no limit)
timeout_seconds = 0

# Appended to the input file name: sprite.png -> sprite_clean.png
output_suffix = "_clean"

# Files offered by the image picker
image_extensions = [".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp"]

# Entries shown per page in the directory and image pickers
page_size = 15

# Logging: debug, info, warn, error / text, json, logfmt
log_level = "info"
log_format = "text"
`
}
