package storage

import (
	"fmt"
	"os"
	"path"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/TheMichaelB/reposeed/internal/events"
)

// BillyStore implements BlobStore on any billy.Filesystem. With memfs it
// backs tests and dry runs without touching the disk.
type BillyStore struct {
	fs     billy.Filesystem
	logger *events.Logger
}

// NewBillyStore wraps fs.
func NewBillyStore(fs billy.Filesystem, logger *events.Logger) *BillyStore {
	return &BillyStore{
		fs:     fs,
		logger: logger.WithField("component", "billy_store"),
	}
}

// Filesystem exposes the wrapped file system.
func (s *BillyStore) Filesystem() billy.Filesystem {
	return s.fs
}

// Write saves data, creating parent directories.
func (s *BillyStore) Write(name string, data []byte, mode os.FileMode) error {
	name = cleanBillyPath(name)

	s.logger.WithFields(map[string]interface{}{
		"path": name,
		"size": len(data),
	}).Debug("Writing file")

	if dir := path.Dir(name); dir != "." && dir != "/" {
		if err := s.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create parent directory: %w", err)
		}
	}

	if err := util.WriteFile(s.fs, name, data, mode); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// Read retrieves file contents.
func (s *BillyStore) Read(name string) ([]byte, error) {
	name = cleanBillyPath(name)

	data, err := util.ReadFile(s.fs, name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s: %w", name, os.ErrNotExist)
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

// Delete removes a file.
func (s *BillyStore) Delete(name string) error {
	name = cleanBillyPath(name)

	if err := s.fs.Remove(name); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// Exists checks if a file or directory exists.
func (s *BillyStore) Exists(name string) (bool, error) {
	_, err := s.fs.Stat(cleanBillyPath(name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Stat returns file information.
func (s *BillyStore) Stat(name string) (FileInfo, error) {
	name = cleanBillyPath(name)

	info, err := s.fs.Lstat(name)
	if err != nil {
		return FileInfo{}, fmt.Errorf("stat file: %w", err)
	}
	return newFileInfo(name, info), nil
}

// EnsureDir creates a directory if it doesn't exist.
func (s *BillyStore) EnsureDir(name string) error {
	return s.fs.MkdirAll(cleanBillyPath(name), 0755)
}

// ListDir returns directory contents sorted by name.
func (s *BillyStore) ListDir(name string) ([]FileInfo, error) {
	name = cleanBillyPath(name)

	infos, err := s.fs.ReadDir(name)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	files := make([]FileInfo, 0, len(infos))
	for _, info := range infos {
		files = append(files, newFileInfo(joinPath(name, info.Name()), info))
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func cleanBillyPath(name string) string {
	if name == "" {
		return "."
	}
	return path.Clean(name)
}
