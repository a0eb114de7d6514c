// Package version provides build-time version information for kodebuild itself.
// Variables are set via -ldflags at build time.
package version

import "fmt"

var (
	// Version is the kodebuild release.
	// Set via: -X github.com/kodedot/kodebuild/internal/version.Version=$(git describe --tags --always --dirty)
	Version = "v0.1.0"

	// BuildTime is the UTC timestamp when the binary was built.
	// Set via: -X github.com/kodedot/kodebuild/internal/version.BuildTime=$(date -u '+%Y-%m-%dT%H:%M:%SZ')
	BuildTime = "unknown"

	// GitHash is the short git commit hash.
	// Set via: -X github.com/kodedot/kodebuild/internal/version.GitHash=$(git rev-parse --short HEAD)
	GitHash = "unknown"
)

// String renders the version line printed by "kodebuild version".
func String() string {
	return fmt.Sprintf("kodebuild %s (commit %s, built %s)", Version, GitHash, BuildTime)
}
