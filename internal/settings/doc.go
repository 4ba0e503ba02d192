// Package settings persists the helper's rembg configuration.
//
// Settings live in a single JSON file, .renpy-helper-settings.json, in the
// directory the helper is invoked from. The file may be missing, partial or
// malformed:
//
//   - missing: the built-in defaults are used
//   - partial: each present, non-empty field overrides the default
//   - malformed: the error is logged, the defaults are used and the file is
//     left untouched
//
// Every mutating call on a Store writes the file immediately. A failed write
// is logged and reported, but the in-memory update is kept.
package settings
