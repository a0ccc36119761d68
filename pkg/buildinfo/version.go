// Package buildinfo holds the version stamped into release binaries.
//
// The variables are overridden with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/panotour/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/panotour/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/panotour/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/panotour
package buildinfo

import "fmt"

var (
	// Version is the release tag, "dev" for local builds.
	Version = "dev"
	// Commit is the git revision the binary was built from.
	Commit = "none"
	// Date is the UTC build time.
	Date = "unknown"
)

// String returns the build information, one field per line.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (%s, built %s)\n", Version, Commit, Date)
}
