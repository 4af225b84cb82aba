package util

import (
	"path/filepath"
	"strings"
)

// ArchiveFormat identifies which archive scanner handles a name.
type ArchiveFormat int

const (
	FormatNone ArchiveFormat = iota
	FormatZip
	FormatTar
)

func (f ArchiveFormat) String() string {
	switch f {
	case FormatZip:
		return "zip"
	case FormatTar:
		return "tar"
	default:
		return "none"
	}
}

// baseName returns the final element of a filesystem path or archive member
// name.
func baseName(name string) string {
	name = strings.TrimRight(name, "/")
	if i := strings.LastIndexAny(name, "/"+string(filepath.Separator)); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// Suffix returns the final dotted suffix of name's base, e.g. ".gz" for
// "a.tar.gz". Hidden names like ".zip" and names ending in a dot have none.
func Suffix(name string) string {
	base := baseName(name)
	i := strings.LastIndex(base, ".")
	if i > 0 && i < len(base)-1 {
		return base[i:]
	}
	return ""
}

// Suffixes returns every dotted suffix of name's base, e.g. [".tar", ".gz"]
// for "a.tar.gz". Leading dots of hidden names are not suffix separators.
func Suffixes(name string) []string {
	base := baseName(name)
	if strings.HasSuffix(base, ".") {
		return nil
	}
	parts := strings.Split(strings.TrimLeft(base, "."), ".")
	if len(parts) < 2 {
		return nil
	}
	out := make([]string, 0, len(parts)-1)
	for _, p := range parts[1:] {
		out = append(out, "."+p)
	}
	return out
}

// IsZipName reports whether name ends in a ".zip" suffix, case-insensitively.
func IsZipName(name string) bool {
	return strings.EqualFold(Suffix(name), ".zip")
}

// IsTarName reports whether any of name's suffixes is ".tar",
// case-insensitively. This covers ".tar", ".tar.gz", ".tar.bz2" and friends.
func IsTarName(name string) bool {
	for _, s := range Suffixes(name) {
		if strings.EqualFold(s, ".tar") {
			return true
		}
	}
	return false
}

// ArchiveFormatOf decides which scanner, if any, should expand name. Zip
// takes precedence.
func ArchiveFormatOf(name string) ArchiveFormat {
	switch {
	case IsZipName(name):
		return FormatZip
	case IsTarName(name):
		return FormatTar
	default:
		return FormatNone
	}
}
