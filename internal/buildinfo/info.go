// Package buildinfo carries version details stamped in at link time.
package buildinfo

import "fmt"

// Set via -ldflags "-X github.com/cleared-dev/ledger/internal/buildinfo.Version=..." at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String formats the version for `ledger --version`.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
