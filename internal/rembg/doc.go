// Package rembg runs the external rembg background removal tool.
//
// The tool is invoked with an argument vector, never through a shell, so
// image paths containing spaces or quotes reach rembg unchanged.
package rembg
