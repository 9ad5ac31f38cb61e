package models

import (
	"encoding/hex"
	"encoding/json"
	"time"

	"golang.org/x/crypto/blake2b"
)

// FileTemplate is one scanned file: its path relative to the scan root and
// its full text content.
type FileTemplate struct {
	Path         string         `json:"path"`
	Content      string         `json:"content"`
	TemplateVars map[string]any `json:"template_vars"`
	Checksum     string         `json:"checksum"`
	LastUpdated  string         `json:"last_updated"`
}

// NewFileTemplate computes the checksum and stamps the current time.
func NewFileTemplate(path, content string) *FileTemplate {
	return &FileTemplate{
		Path:         path,
		Content:      content,
		TemplateVars: map[string]any{},
		Checksum:     Checksum(content),
		LastUpdated:  time.Now().UTC().Format(time.RFC3339),
	}
}

// Checksum returns the hex BLAKE2b-256 digest of content.
func Checksum(content string) string {
	sum := blake2b.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// UnmarshalJSON fills a missing checksum or timestamp the same way
// NewFileTemplate does.
func (f *FileTemplate) UnmarshalJSON(data []byte) error {
	type alias FileTemplate
	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*f = FileTemplate(raw)
	if f.Checksum == "" {
		f.Checksum = Checksum(f.Content)
	}
	if f.LastUpdated == "" {
		f.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	}
	if f.TemplateVars == nil {
		f.TemplateVars = map[string]any{}
	}
	return nil
}

// DirectoryStructure is a scanned directory tree.
type DirectoryStructure struct {
	Name     string                `json:"name"`
	Path     string                `json:"path"`
	Subdirs  []*DirectoryStructure `json:"subdirs"`
	Files    []*FileTemplate       `json:"files"`
	Metadata map[string]any        `json:"metadata"`
}

// MarshalJSON writes empty collections as [] and {} rather than null.
func (d *DirectoryStructure) MarshalJSON() ([]byte, error) {
	type alias DirectoryStructure
	out := alias(*d)
	if out.Subdirs == nil {
		out.Subdirs = []*DirectoryStructure{}
	}
	if out.Files == nil {
		out.Files = []*FileTemplate{}
	}
	if out.Metadata == nil {
		out.Metadata = map[string]any{}
	}
	return json.Marshal(out)
}

// Walk visits d and every descendant, parents first.
func (d *DirectoryStructure) Walk(fn func(dir *DirectoryStructure)) {
	fn(d)
	for _, sub := range d.Subdirs {
		sub.Walk(fn)
	}
}

// AllFiles indexes every file in the tree by its relative path.
func (d *DirectoryStructure) AllFiles() map[string]*FileTemplate {
	files := make(map[string]*FileTemplate)
	d.Walk(func(dir *DirectoryStructure) {
		for _, f := range dir.Files {
			files[f.Path] = f
		}
	})
	return files
}

// FileCount counts files in the whole tree.
func (d *DirectoryStructure) FileCount() int {
	n := 0
	d.Walk(func(dir *DirectoryStructure) {
		n += len(dir.Files)
	})
	return n
}

// SubdirNames lists the names of the immediate subdirectories.
func (d *DirectoryStructure) SubdirNames() []string {
	names := make([]string, 0, len(d.Subdirs))
	for _, sub := range d.Subdirs {
		names = append(names, sub.Name)
	}
	return names
}

// Comparison is the difference between two snapshots. All lists are sorted.
type Comparison struct {
	FilesAdded    []string `json:"files_added"`
	FilesRemoved  []string `json:"files_removed"`
	FilesModified []string `json:"files_modified"`
	DirsAdded     []string `json:"dirs_added"`
	DirsRemoved   []string `json:"dirs_removed"`
}

// HasChanges reports whether any list is non-empty.
func (c *Comparison) HasChanges() bool {
	return len(c.FilesAdded)+len(c.FilesRemoved)+len(c.FilesModified)+
		len(c.DirsAdded)+len(c.DirsRemoved) > 0
}

// SyncReport describes what a sync wrote.
type SyncReport struct {
	Target    string   `json:"target"`
	Backup    string   `json:"backup,omitempty"`
	Created   []string `json:"created"`
	Preserved []string `json:"preserved"`
	Dirs      []string `json:"dirs"`
}
