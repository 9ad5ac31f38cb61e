package models

// Shape identifies the on-disk layout a document was read from.
type Shape int

const (
	// ShapeV1 keeps metadata fields at the document root.
	ShapeV1 Shape = iota + 1
	// ShapeV2 nests metadata fields under a "metadata" key.
	ShapeV2
)

func (s Shape) String() string {
	switch s {
	case ShapeV1:
		return "v1"
	case ShapeV2:
		return "v2"
	default:
		return "unknown"
	}
}

// Schema versions assigned when a document does not carry one.
const (
	SchemaVersionV1 = "1.0"
	SchemaVersionV2 = "2.0.0"
)

// StructureData is the parsed form of a structure document.
type StructureData struct {
	ProjectName    string   `json:"project_name"`
	GitHubUsername string   `json:"github_username"`
	CreatedDate    string   `json:"created_date"`
	Version        string   `json:"version"`
	SchemaVersion  string   `json:"schema_version"`
	Structure      Tree     `json:"structure"`
	Description    string   `json:"description,omitempty"`
	UpdatedDate    string   `json:"updated_date,omitempty"`
	TemplatePath   string   `json:"template_path,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Shape          Shape    `json:"-"`
}

// TopLevelDirectories lists the names at the root of the structure tree.
func (s *StructureData) TopLevelDirectories() []string {
	return s.Structure.TopLevel()
}

// HasDirectory reports whether a slash-delimited path exists in the tree.
func (s *StructureData) HasDirectory(path string) bool {
	return s.Structure.Has(path)
}

// DirectoryFiles lists files at path. See Tree.FilesAt.
func (s *StructureData) DirectoryFiles(path string) []string {
	return s.Structure.FilesAt(path)
}

// AllDirectories lists every path in the tree, parents first.
func (s *StructureData) AllDirectories() []string {
	return s.Structure.Directories()
}

// AllFiles groups every file under the path of its owning node.
func (s *StructureData) AllFiles() map[string][]string {
	return s.Structure.FilesByDirectory()
}

// Clone returns a deep copy.
func (s *StructureData) Clone() *StructureData {
	out := *s
	out.Structure = s.Structure.Clone()
	if s.Tags != nil {
		out.Tags = append([]string{}, s.Tags...)
	}
	return &out
}
