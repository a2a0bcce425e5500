package config

import "fmt"

// Set with -ldflags at release time:
//
//	-X pushnotify/internal/config.version=1.2.3
//	-X pushnotify/internal/config.commit=$(git rev-parse --short HEAD)
//	-X pushnotify/internal/config.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// NewBuildInfo returns the metadata linked into the running binary.
func NewBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
	}
}

// String renders the metadata for --version output, e.g.
// "1.2.3 (commit abc123, built 2026-01-02T03:04:05Z)".
func (b BuildInfo) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", b.Version, b.Commit, b.BuildTime)
}
