package schema

import (
	"fmt"
	"sort"

	"github.com/TheMichaelB/reposeed/internal/models"
)

// FallbackSource names the fallback validator in Info.
const FallbackSource = "fallback-mode"

var (
	requiredMetadata   = []string{"project_name", "github_username", "version"}
	optionalStringMeta = []string{"created_date", "schema_version", "description", "updated_date", "template_path"}
)

// FallbackValidator performs the structural minimum without a contract:
// layout detection, required fields and their types, and a non-empty
// structure tree made only of mappings and string lists.
type FallbackValidator struct{}

// NewFallback returns a FallbackValidator.
func NewFallback() *FallbackValidator {
	return &FallbackValidator{}
}

// Validate implements Validator.
func (FallbackValidator) Validate(doc map[string]any) *models.ValidationResult {
	result := models.NewValidationResult()
	result.SchemaVersion = documentSchemaVersion(doc)

	view := viewOf(doc)
	if view.v2 && view.fields == nil {
		result.AddError("metadata must be an object", "metadata", models.ErrCodeInvalidType)
	}

	if view.fields != nil {
		required := requiredMetadata
		if view.v2 {
			required = append(append([]string{}, requiredMetadata...), "schema_version")
		}
		for _, field := range required {
			if _, ok := view.fields[field]; !ok {
				result.AddError(fmt.Sprintf("Required field '%s' is missing", field),
					view.path(field), models.ErrCodeMissingField)
			}
		}

		for _, field := range append(append([]string{}, requiredMetadata...), optionalStringMeta...) {
			raw, ok := view.fields[field]
			if !ok {
				continue
			}
			if _, isString := raw.(string); !isString {
				result.AddError(field+" must be a string", view.path(field), models.ErrCodeInvalidType)
			}
		}

		for _, field := range []string{"project_name", "github_username"} {
			if s, ok := view.fields[field].(string); ok && s == "" {
				result.AddError(field+" cannot be empty", view.path(field), models.ErrCodeEmptyField)
			}
		}

		if raw, ok := view.fields["tags"]; ok {
			checkStringList(raw, view.path("tags"), "tags", result)
		}
	}

	raw, ok := doc["structure"]
	switch tree := raw.(type) {
	case map[string]any:
		if len(tree) == 0 {
			result.AddError("Structure cannot be empty", "structure", models.ErrCodeEmptyStructure)
		}
		checkNodes(tree, "structure", result)
	default:
		if !ok {
			result.AddError("Required field 'structure' is missing", "structure", models.ErrCodeMissingField)
		} else {
			result.AddError("structure must be an object", "structure", models.ErrCodeInvalidType)
		}
	}

	return result
}

// Info implements Describer.
func (FallbackValidator) Info() Info {
	return Info{Loaded: false, Version: FallbackSource, Source: ""}
}

func checkNodes(tree map[string]any, path string, r *models.ValidationResult) {
	names := make([]string, 0, len(tree))
	for name := range tree {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		childPath := path + "." + name
		switch node := tree[name].(type) {
		case map[string]any:
			checkNodes(node, childPath, r)
		case []any:
			checkStringList(node, childPath, "file names", r)
		default:
			r.AddError("node must be an object or a list of file names", childPath, models.ErrCodeInvalidType)
		}
	}
}

func checkStringList(raw any, path, what string, r *models.ValidationResult) {
	items, ok := raw.([]any)
	if !ok {
		r.AddError(what+" must be a list", path, models.ErrCodeInvalidType)
		return
	}
	for i, item := range items {
		if _, isString := item.(string); !isString {
			r.AddError(what+" must be strings", fmt.Sprintf("%s.%d", path, i), models.ErrCodeInvalidType)
		}
	}
}
