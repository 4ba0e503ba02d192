// Package browse lists directories and image files for the interactive
// pickers. It only reads the filesystem; rendering lives in the ui package.
package browse
