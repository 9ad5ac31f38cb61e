package templatestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/TheMichaelB/reposeed/internal/events"
	"github.com/TheMichaelB/reposeed/internal/models"
	"github.com/TheMichaelB/reposeed/internal/storage"
)

// JSONStore keeps one <name>.json document per template on a BlobStore.
type JSONStore struct {
	blobs  storage.BlobStore
	dir    string
	logger *events.Logger

	mu sync.RWMutex
}

// NewJSONStore creates a JSON-based template store rooted at dir within
// blobs. An empty dir means the blob store root.
func NewJSONStore(blobs storage.BlobStore, dir string, logger *events.Logger) (*JSONStore, error) {
	if dir != "" {
		if err := blobs.EnsureDir(dir); err != nil {
			return nil, fmt.Errorf("create template directory: %w", err)
		}
	}

	return &JSONStore{
		blobs:  blobs,
		dir:    dir,
		logger: logger.WithField("component", "json_template_store"),
	}, nil
}

// Save writes the snapshot as indented JSON.
func (s *JSONStore) Save(name string, ds *models.DirectoryStructure) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal template: %w", err)
	}

	path := templateFile(s.dir, name)
	s.logger.WithFields(map[string]interface{}{
		"template": name,
		"path":     path,
		"files":    ds.FileCount(),
	}).Debug("Saving template")

	if err := s.blobs.Write(path, data, 0644); err != nil {
		return fmt.Errorf("write template: %w", err)
	}
	return nil
}

// Load reads and decodes a snapshot.
func (s *JSONStore) Load(name string) (*models.DirectoryStructure, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path := templateFile(s.dir, name)
	s.logger.WithField("path", path).Debug("Loading template")

	data, err := s.blobs.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, notFound(name)
		}
		return nil, fmt.Errorf("read template: %w", err)
	}

	var ds models.DirectoryStructure
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateCorrupt, name, err)
	}
	return &ds, nil
}

// List returns template names found in the store directory.
func (s *JSONStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.blobs.ListDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list templates: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir || !strings.HasSuffix(entry.Name, ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name, ".json"))
	}

	sort.Strings(names)
	return names, nil
}

// Delete removes a template file.
func (s *JSONStore) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := templateFile(s.dir, name)
	exists, err := s.blobs.Exists(path)
	if err != nil {
		return fmt.Errorf("check template: %w", err)
	}
	if !exists {
		return notFound(name)
	}

	s.logger.WithField("template", name).Info("Deleting template")
	return s.blobs.Delete(path)
}

// Close is a no-op for file-based storage.
func (s *JSONStore) Close() error {
	return nil
}
