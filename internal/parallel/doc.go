// Package parallel runs independent jobs, such as one rembg invocation per
// image, with bounded concurrency.
package parallel
