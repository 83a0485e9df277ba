package types

import (
	"io/fs"
)

// FS is the filesystem interface required for envmerge operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Rename(oldpath, newpath string) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Other operations
	Remove(name string) error
}

// Pather provides the locations envmerge reads from and writes to
type Pather interface {
	// ContributorsRoot returns the directory holding one subdirectory per contributor
	ContributorsRoot() string

	// ConfigDir returns the XDG config directory for envmerge
	ConfigDir() string

	// DataDir returns the XDG data directory for envmerge
	DataDir() string

	// StateDir returns the XDG state directory for envmerge
	StateDir() string
}
