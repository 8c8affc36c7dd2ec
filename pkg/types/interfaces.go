package types

import (
	"io"
	"io/fs"
)

// FS is the filesystem interface required for datadeps operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	Open(name string) (io.ReadCloser, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error

	// Realpath returns the symlink-resolved absolute form of name.
	// Implementations without symlink support may return a cleaned
	// absolute path instead.
	Realpath(name string) (string, error)
}
