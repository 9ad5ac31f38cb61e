package storage

import (
	"os"
	"time"
)

// BlobStore is the file system surface used by the template store and the
// synchronizer. Paths are slash-separated and relative to the store root.
type BlobStore interface {
	// Write saves data to a file path, creating parent directories.
	Write(path string, data []byte, mode os.FileMode) error

	// Read retrieves file contents. Missing files wrap os.ErrNotExist.
	Read(path string) ([]byte, error)

	// Delete removes a file. Deleting a missing file is not an error.
	Delete(path string) error

	// Exists checks if a file or directory exists.
	Exists(path string) (bool, error)

	// Stat returns file information without following symlinks.
	Stat(path string) (FileInfo, error)

	// EnsureDir creates a directory if it doesn't exist.
	EnsureDir(path string) error

	// ListDir returns directory contents sorted by name.
	ListDir(path string) ([]FileInfo, error)
}

// FileInfo contains file metadata.
type FileInfo struct {
	Path      string
	Name      string
	Size      int64
	Mode      os.FileMode
	ModTime   time.Time
	IsDir     bool
	IsSymlink bool
}

func newFileInfo(path string, info os.FileInfo) FileInfo {
	return FileInfo{
		Path:      path,
		Name:      info.Name(),
		Size:      info.Size(),
		Mode:      info.Mode(),
		ModTime:   info.ModTime(),
		IsDir:     info.IsDir(),
		IsSymlink: info.Mode()&os.ModeSymlink != 0,
	}
}
