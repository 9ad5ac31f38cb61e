package sync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/encoding/unicode"

	"github.com/TheMichaelB/reposeed/internal/models"
)

// Scan walks root and captures every text file below it. Excluded entries,
// symlinks, binary files and unreadable files are skipped; only a missing
// or unreadable root fails the scan. File paths in the snapshot are relative
// to root and lists are sorted by name.
func (s *Synchronizer) Scan(ctx context.Context, root string) (*models.DirectoryStructure, error) {
	root = path.Clean(root)

	info, err := s.fs.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &models.NotFoundError{Kind: "source directory", Name: root, Err: err}
		}
		return nil, fmt.Errorf("stat source directory: %w", err)
	}
	if !info.IsDir {
		return nil, fmt.Errorf("source %s is not a directory", root)
	}

	s.logger.WithField("source", root).Info("Scanning structure")

	ds, err := s.scanDir(ctx, root, "", true)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"source": root,
		"files":  ds.FileCount(),
	}).Info("Scan complete")

	return ds, nil
}

func (s *Synchronizer) scanDir(ctx context.Context, dir, rel string, isRoot bool) (*models.DirectoryStructure, error) {
	entries, err := s.fs.ListDir(dir)
	if err != nil {
		if isRoot {
			return nil, fmt.Errorf("list source directory: %w", err)
		}
		s.logger.WithError(err).WithField("path", dir).Warn("Skipping unreadable directory")
		return nil, nil
	}

	ds := &models.DirectoryStructure{
		Name:    path.Base(dir),
		Path:    dir,
		Subdirs: []*models.DirectoryStructure{},
		Files:   []*models.FileTemplate{},
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		relPath := joinPath(rel, entry.Name)
		if s.excluded(entry.Name, relPath) {
			s.logger.WithField("path", relPath).Debug("Excluded")
			continue
		}

		if entry.IsSymlink {
			s.logger.WithField("path", relPath).Debug("Skipping symlink")
			continue
		}

		if entry.IsDir {
			sub, err := s.scanDir(ctx, entry.Path, relPath, false)
			if err != nil {
				return nil, err
			}
			if sub != nil {
				ds.Subdirs = append(ds.Subdirs, sub)
			}
			continue
		}

		file, ok := s.scanFile(entry.Path, relPath)
		if ok {
			ds.Files = append(ds.Files, file)
		}
	}

	ds.Metadata = map[string]any{
		"scanned_at":    time.Now().UTC().Format(time.RFC3339),
		"total_files":   len(ds.Files),
		"total_subdirs": len(ds.Subdirs),
	}

	return ds, nil
}

func (s *Synchronizer) scanFile(filePath, relPath string) (*models.FileTemplate, bool) {
	logger := s.logger.WithField("path", relPath)

	data, err := s.fs.Read(filePath)
	if err != nil {
		logger.WithError(err).Warn("Skipping unreadable file")
		return nil, false
	}

	content, ok := decodeText(relPath, data)
	if !ok {
		logger.Warn("Skipping binary file")
		return nil, false
	}

	return models.NewFileTemplate(relPath, content), true
}

// decodeText returns data as a string when it is UTF-8 text, without a
// leading byte order mark.
func decodeText(name string, data []byte) (string, bool) {
	if models.IsBinaryFile(name, data) || !utf8.Valid(data) {
		return "", false
	}

	decoded, err := unicode.UTF8BOM.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	return string(decoded), true
}

// excluded matches a name against the exclude patterns by substring, or as
// a glob against the name or the path relative to the scan root.
func (s *Synchronizer) excluded(name, relPath string) bool {
	for _, pattern := range s.rules.ExcludePatterns {
		if pattern == "" {
			continue
		}
		if strings.Contains(name, pattern) {
			return true
		}
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
	}
	return false
}
