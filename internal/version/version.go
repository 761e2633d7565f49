// Package version holds build metadata set with -ldflags.
package version

import "fmt"

// Name is the binary name shown in version output.
const Name = "modelrun"

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// String returns the version line printed by --version.
func String() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s)", Name, Version, Commit, BuildDate)
}
