// Package fsutil provides filesystem abstractions for testability.
package fsutil

import (
	"io"
	"os"
)

// FileSystem abstracts file creation so report writers can be exercised
// without touching disk.
type FileSystem interface {
	// Create creates or truncates the named file.
	Create(name string) (io.WriteCloser, error)
}

// OSFileSystem implements FileSystem using the os package.
type OSFileSystem struct{}

// Create creates the named file.
func (OSFileSystem) Create(name string) (io.WriteCloser, error) {
	return os.Create(name)
}
