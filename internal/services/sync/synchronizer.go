// Package sync captures directories as named templates and replays them onto
// new locations.
package sync

import (
	"fmt"
	"path"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/TheMichaelB/reposeed/internal/config"
	"github.com/TheMichaelB/reposeed/internal/events"
	"github.com/TheMichaelB/reposeed/internal/models"
	"github.com/TheMichaelB/reposeed/internal/storage"
	"github.com/TheMichaelB/reposeed/internal/templatestore"
)

// Synchronizer scans, stores, materializes and compares directory snapshots.
// Directory paths are slash-separated paths on fs.
type Synchronizer struct {
	fs        storage.BlobStore
	templates templatestore.Store
	rules     config.SyncRules
	logger    *events.Logger

	now func() time.Time
}

// NewSynchronizer creates a synchronizer.
func NewSynchronizer(
	fs storage.BlobStore,
	templates templatestore.Store,
	rules config.SyncRules,
	logger *events.Logger,
) *Synchronizer {
	s := &Synchronizer{
		fs:        fs,
		templates: templates,
		rules:     rules,
		logger:    logger.WithField("component", "synchronizer"),
		now:       time.Now,
	}

	for _, pattern := range rules.ExcludePatterns {
		if !doublestar.ValidatePattern(pattern) {
			s.logger.WithField("pattern", pattern).Warn("Exclude pattern is not a valid glob, matching by substring only")
		}
	}

	return s
}

// Save stores a snapshot under name.
func (s *Synchronizer) Save(name string, ds *models.DirectoryStructure) error {
	if err := s.templates.Save(name, ds); err != nil {
		return fmt.Errorf("save template %s: %w", name, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"template": name,
		"files":    ds.FileCount(),
	}).Info("Template saved")
	return nil
}

// Load returns the snapshot stored under name.
func (s *Synchronizer) Load(name string) (*models.DirectoryStructure, error) {
	return s.templates.Load(name)
}

// List returns stored template names.
func (s *Synchronizer) List() ([]string, error) {
	return s.templates.List()
}

// Delete removes a stored template.
func (s *Synchronizer) Delete(name string) error {
	if err := s.templates.Delete(name); err != nil {
		return err
	}
	s.logger.WithField("template", name).Info("Template deleted")
	return nil
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return path.Join(dir, name)
}
