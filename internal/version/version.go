// Package version holds build metadata.
package version

import "fmt"

// Set at build time with -ldflags, e.g.
// go build -ldflags "-X github.com/alexiusacademia/gotruss/internal/version.Version=1.0.0"
var (
	Version   = "0.3.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
	Author    = "Alexius Academia"
	Year      = "2025"
)

// String is the one-line version banner.
func String() string {
	s := "gotruss v" + Version
	if GitCommit != "unknown" || BuildTime != "unknown" {
		s += fmt.Sprintf(" (commit %s, built %s)", GitCommit, BuildTime)
	}
	return s
}
