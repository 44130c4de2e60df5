package filesystem

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// FileSystem is the subset of file operations the download core needs.
type FileSystem interface {
	EnsureDirectory(path string) error
	FileExists(path string) (bool, error)
	FileSize(path string) (int64, error)
	RemoveIfExists(path string) error
}

// OSFileSystem implements the FileSystem interface using OS file operations
type OSFileSystem struct{}

// NewOSFileSystem creates a new OS filesystem
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// EnsureDirectory ensures a directory exists
func (fs *OSFileSystem) EnsureDirectory(path string) error {
	return os.MkdirAll(path, 0o755)
}

// FileExists checks if a regular file exists
func (fs *OSFileSystem) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		return !info.IsDir(), nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	return false, err
}

// FileSize returns the size of the file at path in bytes.
func (fs *OSFileSystem) FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}

	return info.Size(), nil
}

// RemoveIfExists deletes path; a file that is already gone is not an error.
func (fs *OSFileSystem) RemoveIfExists(path string) error {
	err := os.Remove(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return err
}

// ToURI converts a local path into a file:// URI.
func ToURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

// PathFromURI returns the local path behind a file:// URI. Plain paths are
// returned unchanged.
func PathFromURI(uri string) string {
	if !strings.HasPrefix(uri, "file:") {
		return uri
	}

	u, err := url.Parse(uri)
	if err != nil {
		return strings.TrimPrefix(uri, "file://")
	}

	return filepath.FromSlash(u.Path)
}

// IsLocalURI reports whether uri points at the local filesystem.
func IsLocalURI(uri string) bool {
	return strings.HasPrefix(uri, "file:") || filepath.IsAbs(uri)
}
