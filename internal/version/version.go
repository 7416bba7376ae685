// Package version provides application version and build info.
package version

import (
	"runtime/debug"
)

var (
	// Version is the current application version, overridable by ldflags.
	Version = "dev"
	// CommitHash is the git commit hash at build time, overridable by
	// ldflags. When unset it falls back to the embedded VCS revision.
	CommitHash = ""
)

// String returns the version, with the short commit hash when known.
func String() string {
	if CommitHash == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, setting := range info.Settings {
				if setting.Key == "vcs.revision" {
					CommitHash = setting.Value
				}
			}
		}
	}

	res := Version
	if CommitHash != "" {
		hash := CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		res += " (" + hash + ")"
	}
	return res
}
