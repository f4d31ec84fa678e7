package config

import "fmt"

// Linker-injected build metadata, for example:
//
//	go build -ldflags "-X bmitrack/internal/config.version=1.2.3 \
//	    -X bmitrack/internal/config.commit=$(git rev-parse --short HEAD)" ./cmd/bmi
//
// The defaults below identify a local development build.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// NewBuildInfo constructs a BuildInfo from the linker-injected variables.
func NewBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
	}
}

// String formats the build metadata for `bmi version`.
func (b BuildInfo) String() string {
	return fmt.Sprintf("bmi %s (commit %s, built %s)", b.Version, b.Commit, b.BuildTime)
}
