// Package version carries the build identity of the meerkat binary.
package version

import "fmt"

// Set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the full build identity.
func String() string {
	return fmt.Sprintf("meerkat %s (commit %s, built %s)", Version, Commit, Date)
}
