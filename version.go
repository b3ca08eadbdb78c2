package fmprobe

import "runtime"

// Version is the semantic version of the fmprobe module.
const Version = "0.1.0"

// VersionInfo describes the running build.
type VersionInfo struct {
	// Version is the semantic version (e.g., "0.1.0")
	Version string
	// GitCommit is the git commit hash (set via ldflags at build time)
	GitCommit string
	// BuildTime is the build timestamp (set via ldflags at build time)
	BuildTime string
	// GoVersion is the toolchain the binary was built with
	GoVersion string
}

// String renders the build as one line, as printed by fmprobe -version.
func (v VersionInfo) String() string {
	return "fmprobe " + v.Version + " (commit " + v.GitCommit + ", built " + v.BuildTime + ", " + v.GoVersion + ")"
}

// GetVersionInfo returns detailed version information.
//
// GitCommit and BuildTime are populated at build time via -ldflags and
// read "unknown" otherwise:
//
//	go build -ldflags="-X github.com/filemeta/fmprobe.gitCommit=$(git rev-parse HEAD) \
//	  -X github.com/filemeta/fmprobe.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/fmprobe
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GitCommit: gitCommit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
}

// Variables populated at build time via -ldflags.
var (
	gitCommit = "unknown"
	buildTime = "unknown"
)
