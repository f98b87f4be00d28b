// Package profile wraps [github.com/pkg/profile] behind a build tag so
// that profiling support costs nothing in ordinary builds.
//
// Build with the pprof tag to enable it:
//
//	go build -tags pprof ./...
//
// Without the tag every Start call returns a no-op stopper, and the flag
// surface in the CLI collapses to nothing.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
