// Package config handles configuration of the helper itself.
//
// This is separate from the rembg settings file (see package settings): it
// controls how the helper runs, not what it passes to rembg.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.renpy-helper/config.toml or OS-specific config directory)
// 3. Project config file (renpy-helper.toml or .renpy-helper.toml in the working directory)
// 4. Environment variables (RENPY_HELPER_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.renpy-helper/config.toml (preferred)
// - Windows: %APPDATA%\renpy-helper\config.toml
// - macOS: ~/Library/Application Support/renpy-helper/config.toml
// - Linux/BSD: $XDG_CONFIG_HOME/renpy-helper/config.toml or ~/.config/renpy-helper/config.toml
package config
