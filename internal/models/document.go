package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a document serialization.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format by file extension. Anything that is not
// .yaml or .yml is JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

type metadataBlock struct {
	ProjectName    string   `json:"project_name" yaml:"project_name"`
	GitHubUsername string   `json:"github_username" yaml:"github_username"`
	CreatedDate    string   `json:"created_date" yaml:"created_date"`
	Version        string   `json:"version" yaml:"version"`
	SchemaVersion  string   `json:"schema_version,omitempty" yaml:"schema_version,omitempty"`
	Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
	UpdatedDate    string   `json:"updated_date,omitempty" yaml:"updated_date,omitempty"`
	TemplatePath   string   `json:"template_path,omitempty" yaml:"template_path,omitempty"`
	Tags           []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// rawDocument accepts both layouts. A non-nil Metadata selects v2.
type rawDocument struct {
	metadataBlock `yaml:",inline"`
	Metadata      *metadataBlock `json:"metadata" yaml:"metadata"`
	Structure     Tree           `json:"structure" yaml:"structure"`
}

type v1Document struct {
	metadataBlock `yaml:",inline"`
	Structure     Tree `json:"structure" yaml:"structure"`
}

type v2Document struct {
	Metadata  metadataBlock `json:"metadata" yaml:"metadata"`
	Structure Tree          `json:"structure" yaml:"structure"`
}

// DecodeStructure builds a StructureData from a document in either layout.
// Shape is decided once here; nothing downstream branches on it.
func DecodeStructure(data []byte, format Format) (*StructureData, error) {
	var raw rawDocument

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	}

	return raw.toStructure(), nil
}

func (d *rawDocument) toStructure() *StructureData {
	meta := d.metadataBlock
	shape := ShapeV1
	schemaVersion := SchemaVersionV1

	if d.Metadata != nil {
		meta = *d.Metadata
		shape = ShapeV2
		schemaVersion = meta.SchemaVersion
		if schemaVersion == "" {
			schemaVersion = SchemaVersionV2
		}
	}

	return &StructureData{
		ProjectName:    meta.ProjectName,
		GitHubUsername: meta.GitHubUsername,
		CreatedDate:    meta.CreatedDate,
		Version:        meta.Version,
		SchemaVersion:  schemaVersion,
		Structure:      d.Structure,
		Description:    meta.Description,
		UpdatedDate:    meta.UpdatedDate,
		TemplatePath:   meta.TemplatePath,
		Tags:           meta.Tags,
		Shape:          shape,
	}
}

// EncodeStructure serializes s in the given layout and format. JSON output is
// indented when pretty is set; YAML output is always block style.
func EncodeStructure(s *StructureData, layout Shape, format Format, pretty bool) ([]byte, error) {
	meta := metadataBlock{
		ProjectName:    s.ProjectName,
		GitHubUsername: s.GitHubUsername,
		CreatedDate:    s.CreatedDate,
		Version:        s.Version,
		Description:    s.Description,
		UpdatedDate:    s.UpdatedDate,
		TemplatePath:   s.TemplatePath,
		Tags:           s.Tags,
	}

	var doc interface{}
	switch layout {
	case ShapeV2:
		meta.SchemaVersion = s.SchemaVersion
		if meta.SchemaVersion == "" {
			meta.SchemaVersion = SchemaVersionV2
		}
		doc = v2Document{Metadata: meta, Structure: s.Structure}
	case ShapeV1, 0:
		doc = v1Document{metadataBlock: meta, Structure: s.Structure}
	default:
		return nil, fmt.Errorf("unknown document layout: %d", layout)
	}

	if format == FormatYAML {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return buf.Bytes(), nil
}
