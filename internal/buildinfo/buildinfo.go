// Package buildinfo holds build-time metadata injected via -ldflags.
package buildinfo

// Version is the semantic version or tag for this build.
// Inject via: -X github.com/garyellow/vkbot-go/internal/buildinfo.Version=...
var Version = ""

// Commit is the git commit SHA for this build.
// Inject via: -X github.com/garyellow/vkbot-go/internal/buildinfo.Commit=...
var Commit = ""

// BuildDate is the RFC3339 build timestamp.
// Inject via: -X github.com/garyellow/vkbot-go/internal/buildinfo.BuildDate=...
var BuildDate = ""

// Release identifies the build for error reports: the version when set,
// otherwise the commit, otherwise "dev".
func Release() string {
	switch {
	case Version != "":
		return Version
	case Commit != "":
		return Commit
	default:
		return "dev"
	}
}
