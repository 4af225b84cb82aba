// Package version provides version information and build metadata for dedup.
//
// Version, Commit and Date can be injected at build time:
//
//	-ldflags "-X github.com/passchm/file-dedup-tool/version.Version=v1.0.0 -X github.com/passchm/file-dedup-tool/version.Commit=abc123"
//
// Without them the values come from debug.ReadBuildInfo, falling back to
// development defaults. The version string is stored with every recorded scan
// so an inventory tells which build produced it.
package version
