// Package version holds build information stamped at compile time.
package version

import (
	"fmt"
	"runtime"
)

// Set via ldflags, e.g.
// go build -ldflags "-X github.com/jackzampolin/rexseg/version.GitRelease=v0.1.0".
var (
	// GitRelease is the git tag the binary was built from.
	GitRelease = "dev"
	// GitCommit is the git commit hash the binary was built from.
	GitCommit = "unknown"
	// GitCommitDate is the date of that commit.
	GitCommitDate = "unknown"
)

// GoInfo describes the toolchain and platform used for the build.
var GoInfo = fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
