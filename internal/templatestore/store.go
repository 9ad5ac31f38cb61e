// Package templatestore persists named directory snapshots.
package templatestore

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/TheMichaelB/reposeed/internal/config"
	"github.com/TheMichaelB/reposeed/internal/events"
	"github.com/TheMichaelB/reposeed/internal/models"
	"github.com/TheMichaelB/reposeed/internal/storage"
)

// Store manages named templates.
type Store interface {
	// Save persists a snapshot under name, replacing any previous one.
	Save(name string, ds *models.DirectoryStructure) error

	// Load retrieves a snapshot. Unknown names return a *models.NotFoundError.
	Load(name string) (*models.DirectoryStructure, error)

	// List returns all template names, sorted.
	List() ([]string, error)

	// Delete removes a template. Unknown names return a *models.NotFoundError.
	Delete(name string) error

	// Close releases resources.
	Close() error
}

// Errors
var (
	ErrInvalidName     = errors.New("invalid template name")
	ErrTemplateCorrupt = errors.New("template is corrupt")
)

// ValidateName rejects names that cannot map to a single store entry.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: contains null bytes", ErrInvalidName)
	}
	return nil
}

func notFound(name string) error {
	return &models.NotFoundError{Kind: "template", Name: name}
}

// Open builds the store selected by cfg.Store.
func Open(cfg *config.Config, logger *events.Logger) (Store, error) {
	switch cfg.Store.Backend {
	case "sqlite":
		return NewSQLiteStore(cfg.Store.DBPath, logger)
	case "json", "":
		blobs, err := storage.NewLocalStore(cfg.TemplatesDir, logger)
		if err != nil {
			return nil, fmt.Errorf("open templates dir: %w", err)
		}
		return NewJSONStore(blobs, "", logger)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}

// Copy transfers every template from src to dst and returns how many were
// copied.
func Copy(src, dst Store) (int, error) {
	names, err := src.List()
	if err != nil {
		return 0, fmt.Errorf("list source templates: %w", err)
	}

	for i, name := range names {
		ds, err := src.Load(name)
		if err != nil {
			return i, fmt.Errorf("load %s: %w", name, err)
		}
		if err := dst.Save(name, ds); err != nil {
			return i, fmt.Errorf("save %s: %w", name, err)
		}
	}

	return len(names), nil
}

func templateFile(dir, name string) string {
	file := name + ".json"
	if dir == "" {
		return file
	}
	return filepath.ToSlash(filepath.Join(dir, file))
}
