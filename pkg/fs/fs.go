// Package fs provides the filesystem primitives used by the release manager.
package fs

import (
	"os"
)

//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=fs.go -destination=mocks/fs.gen.go -package=mocks

// FS interface provides file system operations for package metadata, build output and extensions.
type FS interface {
	// Exists checks if a file or directory exists at the given path.
	Exists(path string) (bool, error)

	// IsDir checks if the path exists and is a directory.
	IsDir(path string) (bool, error)

	// ReadFile reads the contents of a file.
	ReadFile(path string) ([]byte, error)

	// ReadDir reads the contents of a directory.
	ReadDir(path string) ([]os.DirEntry, error)

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string, perm os.FileMode) error

	// WriteFileAtomic writes data to a file through a temporary file and rename.
	WriteFileAtomic(filename string, data []byte, perm os.FileMode) error

	// IsNotExist checks if an error indicates that a file or directory doesn't exist.
	IsNotExist(err error) bool
}

type realFS struct{}

// NewFS creates a new FS instance.
func NewFS() FS {
	return &realFS{}
}

// ReadFile reads the contents of a file.
func (f *realFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// ReadDir reads the contents of a directory.
func (f *realFS) ReadDir(path string) ([]os.DirEntry, error) {
	return os.ReadDir(path)
}

// MkdirAll creates a directory and all parent directories.
func (f *realFS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// IsNotExist checks if an error indicates that a file or directory doesn't exist.
func (f *realFS) IsNotExist(err error) bool {
	return os.IsNotExist(err)
}
