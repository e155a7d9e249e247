// Package buildinfo exposes version metadata stamped at build time.
//
// Release builds override the variables with ldflags:
//
//	go build -ldflags "-X github.com/stanza-dev/stanza/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/stanza-dev/stanza/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/stanza-dev/stanza/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Unstamped builds report "dev".
package buildinfo

import "fmt"

var (
	// Version is the semantic version of this build.
	Version = "dev"

	// Commit is the git commit SHA this build was produced from.
	Commit = "none"

	// Date is the UTC build timestamp.
	Date = "unknown"
)

// String formats the build metadata for display.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
