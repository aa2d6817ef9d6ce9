// Package version carries build metadata injected with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/S93RUM-06/ocr-pipeline/version.GitRelease=v1.2.0"
package version

import (
	"runtime"
	"runtime/debug"
)

var (
	// GitRelease is the release tag.
	GitRelease = "dev"

	// GitCommit is the commit hash the binary was built from.
	GitCommit = ""

	// GitCommitDate is the commit timestamp.
	GitCommitDate = ""

	// GoInfo is the Go toolchain and platform.
	GoInfo = runtime.Version() + " " + runtime.GOOS + "/" + runtime.GOARCH
)

func init() {
	if GitCommit != "" {
		return
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			GitCommit = s.Value
		case "vcs.time":
			GitCommitDate = s.Value
		}
	}
}
