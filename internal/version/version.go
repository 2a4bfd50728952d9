package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// Set at build time:
//
//	go build -ldflags="-X github.com/muurk/evlease/internal/version.Version=v0.3.0 \
//	                   -X github.com/muurk/evlease/internal/version.Commit=abc123"
//
// Anything left empty is filled from the VCS stamp in the binary's build info,
// then from a dev timestamp.
var (
	// Version is the semantic version of the application
	Version = ""
	// Commit is the git commit hash
	Commit = ""
	// BuiltAt is the commit time reported by the VCS stamp, if any
	BuiltAt = ""
)

func init() {
	if Version == "" || Commit == "" {
		fillFromBuildInfo(readSettings())
	}
	if Version == "" {
		Version = "dev-" + time.Now().Format("20060102-150405")
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

func readSettings() map[string]string {
	settings := map[string]string{}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return settings
	}
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}
	return settings
}

// fillFromBuildInfo derives Commit, BuiltAt and a dev Version from vcs.* keys.
func fillFromBuildInfo(settings map[string]string) {
	if rev := settings["vcs.revision"]; Commit == "" && rev != "" {
		if len(rev) > 7 {
			rev = rev[:7]
		}
		if settings["vcs.modified"] == "true" {
			rev += "-dirty"
		}
		Commit = rev
	}

	if t, err := time.Parse(time.RFC3339, settings["vcs.time"]); err == nil {
		BuiltAt = t.UTC().Format("2006-01-02")
		if Version == "" {
			Version = "dev-" + t.Format("20060102")
		}
	}
}

// Full returns the full version string including commit
func Full() string {
	if BuiltAt != "" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuiltAt)
	}
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// UserAgent is sent on outbound HTTP and WebSocket requests.
func UserAgent() string {
	return fmt.Sprintf("evlease/%s (%s/%s)", strings.TrimPrefix(Version, "v"), runtime.GOOS, runtime.GOARCH)
}
