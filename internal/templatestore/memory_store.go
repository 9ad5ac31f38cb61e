package templatestore

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/TheMichaelB/reposeed/internal/models"
)

// MemoryStore keeps templates in memory. Snapshots are stored encoded so
// callers never share state with the store.
type MemoryStore struct {
	mu        sync.RWMutex
	templates map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		templates: make(map[string][]byte),
	}
}

// Save stores a copy of ds.
func (m *MemoryStore) Save(name string, ds *models.DirectoryStructure) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	data, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("marshal template: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.templates[name] = data
	return nil
}

// Load returns a copy of the stored snapshot.
func (m *MemoryStore) Load(name string) (*models.DirectoryStructure, error) {
	m.mu.RLock()
	data, ok := m.templates[name]
	m.mu.RUnlock()

	if !ok {
		return nil, notFound(name)
	}

	var ds models.DirectoryStructure
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateCorrupt, name, err)
	}
	return &ds, nil
}

// List returns stored names, sorted.
func (m *MemoryStore) List() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.templates))
	for name := range m.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a template.
func (m *MemoryStore) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.templates[name]; !ok {
		return notFound(name)
	}
	delete(m.templates, name)
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}
