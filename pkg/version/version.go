// Package version reports the running build's identity.
//
// The commit comes from, in order: an -ldflags override, the VCS revision
// embedded in debug.BuildInfo, or the literal "dev".
package version

import "runtime/debug"

// AppName is used in version strings and protocol handshakes.
const AppName = "tarsy"

// gitCommitOverride is injected with -ldflags for container builds that
// compile outside a git checkout.
var gitCommitOverride string

// GitCommit is the short commit hash, or "dev" when nothing is available
// (plain `go test`, tarball builds).
var GitCommit = initGitCommit()

func initGitCommit() string {
	if gitCommitOverride != "" {
		return shorten(gitCommitOverride)
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return shorten(s.Value)
			}
		}
	}
	return "dev"
}

func shorten(rev string) string {
	if len(rev) > 8 {
		return rev[:8]
	}
	return rev
}

// Full returns "tarsy/<commit>" for user-agent strings and log lines.
func Full() string {
	return AppName + "/" + GitCommit
}
