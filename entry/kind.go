package entry

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned by ParseKind for codes outside the enumeration.
var ErrUnknownKind = errors.New("unknown entry kind")

// Kind identifies what an Entry represents.
type Kind int

const (
	File      Kind = 1
	Directory Kind = 2
	Symlink   Kind = 3

	ZipMemberFile      Kind = 11
	ZipMemberDirectory Kind = 12
	ZipMemberComponent Kind = 14

	TarMemberFile      Kind = 21
	TarMemberDirectory Kind = 22
	TarMemberSymlink   Kind = 23
	TarMemberComponent Kind = 24
)

// Container identifies the archive format an archive-internal Kind belongs to.
type Container int

const (
	ContainerNone Container = iota
	ContainerZip
	ContainerTar
)

func (c Container) String() string {
	switch c {
	case ContainerNone:
		return "filesystem"
	case ContainerZip:
		return "zip"
	case ContainerTar:
		return "tar"
	default:
		return "unknown"
	}
}

// Kinds lists every valid kind in code order.
func Kinds() []Kind {
	return []Kind{
		File, Directory, Symlink,
		ZipMemberFile, ZipMemberDirectory, ZipMemberComponent,
		TarMemberFile, TarMemberDirectory, TarMemberSymlink, TarMemberComponent,
	}
}

// ParseKind converts a stored integer code back into a Kind.
func ParseKind(code int) (Kind, error) {
	k := Kind(code)
	if !k.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownKind, code)
	}
	return k, nil
}

// Valid reports whether k is one of the enumerated kinds.
func (k Kind) Valid() bool {
	switch k {
	case File, Directory, Symlink,
		ZipMemberFile, ZipMemberDirectory, ZipMemberComponent,
		TarMemberFile, TarMemberDirectory, TarMemberSymlink, TarMemberComponent:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	switch k {
	case File:
		return "file"
	case Directory:
		return "directory"
	case Symlink:
		return "symlink"
	case ZipMemberFile:
		return "zip-member-file"
	case ZipMemberDirectory:
		return "zip-member-directory"
	case ZipMemberComponent:
		return "zip-component"
	case TarMemberFile:
		return "tar-member-file"
	case TarMemberDirectory:
		return "tar-member-directory"
	case TarMemberSymlink:
		return "tar-member-symlink"
	case TarMemberComponent:
		return "tar-component"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Container returns the archive format k lives in, or ContainerNone for
// filesystem kinds.
func (k Kind) Container() Container {
	switch k {
	case ZipMemberFile, ZipMemberDirectory, ZipMemberComponent:
		return ContainerZip
	case TarMemberFile, TarMemberDirectory, TarMemberSymlink, TarMemberComponent:
		return ContainerTar
	default:
		return ContainerNone
	}
}

// IsArchiveMember reports whether k describes a node inside an archive.
func (k Kind) IsArchiveMember() bool {
	return k.Container() != ContainerNone
}

// IsSynthetic reports whether k is a path component implied by an archive
// member list but not declared in it.
func (k Kind) IsSynthetic() bool {
	return k == ZipMemberComponent || k == TarMemberComponent
}

// IsDirectory reports whether k can own children in the inventory tree.
func (k Kind) IsDirectory() bool {
	switch k {
	case Directory, ZipMemberDirectory, ZipMemberComponent, TarMemberDirectory, TarMemberComponent:
		return true
	default:
		return false
	}
}

// CanHoldDigest reports whether entries of kind k may carry a checksum.
func (k Kind) CanHoldDigest() bool {
	switch k {
	case File, ZipMemberFile, TarMemberFile:
		return true
	default:
		return false
	}
}
