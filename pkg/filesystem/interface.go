package filesystem

import (
	"os"
)

// FileSystem defines the file operations used to scan and rewrite vars files.
// This interface allows injecting failures in tests.
type FileSystem interface {
	// ReadFile reads a file.
	ReadFile(name string) ([]byte, error)

	// Stat returns file info.
	Stat(name string) (os.FileInfo, error)

	// WriteFileAtomic replaces a file with data via temp file + rename.
	WriteFileAtomic(name string, data []byte, perm os.FileMode) error
}

// OSFileSystem implements FileSystem on the host file system.
type OSFileSystem struct{}

// NewOSFileSystem returns the host file system.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// ReadFile reads a file.
func (OSFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// Stat returns file info.
func (OSFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

// WriteFileAtomic replaces a file atomically.
func (OSFileSystem) WriteFileAtomic(name string, data []byte, perm os.FileMode) error {
	return WriteFileAtomic(name, data, perm)
}
