package version

import (
	"strings"
	"testing"
)

func TestFillFromBuildInfo(t *testing.T) {
	origVersion, origCommit, origBuilt := Version, Commit, BuiltAt
	defer func() { Version, Commit, BuiltAt = origVersion, origCommit, origBuilt }()

	Version, Commit, BuiltAt = "", "", ""
	fillFromBuildInfo(map[string]string{
		"vcs.revision": "0123456789abcdef",
		"vcs.modified": "true",
		"vcs.time":     "2024-06-15T10:00:00Z",
	})

	if Commit != "0123456-dirty" {
		t.Errorf("Commit = %v, want 0123456-dirty", Commit)
	}
	if Version != "dev-20240615" {
		t.Errorf("Version = %v, want dev-20240615", Version)
	}
	if BuiltAt != "2024-06-15" {
		t.Errorf("BuiltAt = %v, want 2024-06-15", BuiltAt)
	}
}

func TestFillFromBuildInfoKeepsLdflags(t *testing.T) {
	origVersion, origCommit, origBuilt := Version, Commit, BuiltAt
	defer func() { Version, Commit, BuiltAt = origVersion, origCommit, origBuilt }()

	Version, Commit = "v1.0.0", "abc"
	fillFromBuildInfo(map[string]string{"vcs.revision": "ffffffffff"})

	if Version != "v1.0.0" || Commit != "abc" {
		t.Errorf("ldflags values overwritten: %v %v", Version, Commit)
	}
}

func TestUserAgent(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "v0.3.0"
	if ua := UserAgent(); !strings.HasPrefix(ua, "evlease/0.3.0 (") {
		t.Errorf("UserAgent() = %v", ua)
	}
}
