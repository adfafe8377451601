// Package watch re-runs full builds when the source tree changes and,
// optionally, on a fixed interval. Builds are never incremental: every
// trigger performs the same clean build the build command does.
package watch
