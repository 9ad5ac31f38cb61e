// Package schema validates raw structure documents.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/TheMichaelB/reposeed/internal/models"
)

//go:embed schemas/structure-v2.json
var builtinSchema []byte

// BuiltinSource names the embedded contract in Info.
const BuiltinSource = "built-in"

// Validator checks a decoded document. Problems in the document are reported
// in the result, never returned as errors.
type Validator interface {
	Validate(doc map[string]any) *models.ValidationResult
}

// Info describes the contract behind a validator.
type Info struct {
	Loaded  bool   `json:"has_validation"`
	Version string `json:"schema_version"`
	Source  string `json:"schema_path"`
}

// Describer is implemented by validators that can report their contract.
type Describer interface {
	Info() Info
}

// JSONSchemaValidator runs a draft-07 contract followed by the semantic rules.
type JSONSchemaValidator struct {
	schema  *jsonschema.Schema
	version string
	source  string
}

// NewBuiltin compiles the embedded contract.
func NewBuiltin() (*JSONSchemaValidator, error) {
	return compile(BuiltinSource, builtinSchema)
}

// NewFromFile compiles the contract at path.
func NewFromFile(path string) (*JSONSchemaValidator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &models.SchemaError{Path: path, Reason: "read schema", Err: err}
	}
	return compile(path, data)
}

// New compiles the contract at path, or the embedded one when path is empty.
func New(path string) (*JSONSchemaValidator, error) {
	if path == "" {
		return NewBuiltin()
	}
	return NewFromFile(path)
}

func compile(source string, data []byte) (*JSONSchemaValidator, error) {
	var header struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, &models.SchemaError{Path: source, Reason: "invalid JSON in schema", Err: err}
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7

	resource := "structure-schema.json"
	if err := compiler.AddResource(resource, bytes.NewReader(data)); err != nil {
		return nil, &models.SchemaError{Path: source, Reason: "load schema", Err: err}
	}

	compiled, err := compiler.Compile(resource)
	if err != nil {
		return nil, &models.SchemaError{Path: source, Reason: "compile schema", Err: err}
	}

	version := header.Version
	if version == "" {
		version = "unknown"
	}

	return &JSONSchemaValidator{schema: compiled, version: version, source: source}, nil
}

// Validate implements Validator.
func (v *JSONSchemaValidator) Validate(doc map[string]any) *models.ValidationResult {
	result := models.NewValidationResult()
	result.SchemaVersion = documentSchemaVersion(doc)

	if err := v.schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			for _, issue := range flattenCauses(verr) {
				result.AddError(issue.Message, issue.Path, models.ErrCodeSchemaValidation)
			}
		} else {
			result.AddError(fmt.Sprintf("Schema validation failed: %v", err), "root", models.ErrCodeSchemaValidation)
		}
	}

	applyRules(doc, result)
	return result
}

// Info implements Describer.
func (v *JSONSchemaValidator) Info() Info {
	return Info{Loaded: true, Version: v.version, Source: v.source}
}

// flattenCauses collects leaf errors, deduplicated and sorted by location.
func flattenCauses(root *jsonschema.ValidationError) []models.Issue {
	seen := make(map[string]bool)
	var issues []models.Issue

	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, c := range e.Causes {
				walk(c)
			}
			return
		}
		path := pointerToPath(e.InstanceLocation)
		key := path + "\x00" + e.Message
		if seen[key] {
			return
		}
		seen[key] = true
		issues = append(issues, models.Issue{Message: e.Message, Path: path})
	}
	walk(root)

	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Path < issues[j].Path
	})
	return issues
}

// pointerToPath turns "/metadata/tags/0" into "metadata.tags.0".
func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return "root"
	}
	parts := strings.Split(ptr, "/")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		parts[i] = strings.ReplaceAll(p, "~0", "~")
	}
	return strings.Join(parts, ".")
}
