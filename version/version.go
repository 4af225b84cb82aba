package version

import (
	"fmt"
	"io"
	"runtime/debug"
)

// Set with -ldflags -X; the build info of the binary fills in the rest.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info describes the running build. It is printed by `dedup version --json`.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Package string `json:"package"`
}

// GetVersion returns the release version. It is stored with every scan.
func GetVersion() string {
	if Version != "dev" && Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "development"
}

// buildSetting returns the VCS setting key recorded by the Go toolchain.
func buildSetting(key string) (string, bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value, true
		}
	}
	return "", false
}

func orSetting(injected, key string) string {
	if injected != "unknown" && injected != "" {
		return injected
	}
	if v, ok := buildSetting(key); ok {
		return v
	}
	return "unknown"
}

// GetInfo returns complete version information.
func GetInfo() Info {
	return Info{
		Version: GetVersion(),
		Commit:  orSetting(Commit, "vcs.revision"),
		Date:    orSetting(Date, "vcs.time"),
		Package: "file-dedup-tool",
	}
}

// GetFullVersion returns the version followed by the short commit and build
// date when they are known, e.g. "v1.2.0 (abc1234, built 2026-01-02)".
func GetFullVersion() string {
	info := GetInfo()
	if len(info.Commit) < 7 || info.Commit == "unknown" {
		return info.Version
	}
	if info.Date == "unknown" {
		return fmt.Sprintf("%s (%s)", info.Version, info.Commit[:7])
	}
	return fmt.Sprintf("%s (%s, built %s)", info.Version, info.Commit[:7], info.Date)
}

// PrintVersion writes version information for appName to w.
func PrintVersion(w io.Writer, appName string) {
	info := GetInfo()
	fmt.Fprintf(w, "%s %s\n", appName, GetFullVersion())
	fmt.Fprintf(w, "  commit: %s\n  built:  %s\n", info.Commit, info.Date)
}
