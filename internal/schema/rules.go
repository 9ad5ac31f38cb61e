package schema

import (
	"fmt"
	"regexp"

	"github.com/TheMichaelB/reposeed/internal/models"
)

var (
	projectNamePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	usernamePattern    = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?$`)
	semverPattern      = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)` +
		`(?:-((?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?` +
		`(?:\+([0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?$`)
)

// Section names checked inside the structure tree.
const (
	RequiredSection = "meta-repo"
)

var (
	recommendedSections = []string{"governance", "automation", "documentation"}
	governanceSections  = []string{"structure", "policies", "processes"}
)

// IsKebabCase reports whether name is lowercase words joined by hyphens.
func IsKebabCase(name string) bool {
	return projectNamePattern.MatchString(name)
}

// IsSemver reports whether version is MAJOR.MINOR.PATCH with optional
// pre-release and build parts.
func IsSemver(version string) bool {
	return semverPattern.MatchString(version)
}

// IsValidUsername applies the conservative owner identifier pattern.
func IsValidUsername(name string) bool {
	return usernamePattern.MatchString(name)
}

// metadataView resolves where metadata fields live for either layout.
type metadataView struct {
	fields map[string]any
	prefix string
	v2     bool
}

func viewOf(doc map[string]any) metadataView {
	raw, ok := doc["metadata"]
	if !ok {
		return metadataView{fields: doc}
	}
	fields, _ := raw.(map[string]any)
	return metadataView{fields: fields, prefix: "metadata.", v2: true}
}

func (m metadataView) path(field string) string {
	return m.prefix + field
}

// documentSchemaVersion is the schema version a document declares or implies.
func documentSchemaVersion(doc map[string]any) string {
	view := viewOf(doc)
	if !view.v2 {
		return models.SchemaVersionV1
	}
	if v, ok := view.fields["schema_version"].(string); ok && v != "" {
		return v
	}
	return models.SchemaVersionV2
}

// applyRules runs the semantic checks that sit on top of the schema. Results
// accumulate on r; nothing is returned.
func applyRules(doc map[string]any, r *models.ValidationResult) {
	view := viewOf(doc)

	if view.fields != nil {
		checkProjectName(view, r)
		checkUsername(view, r)
	}

	structure, present := doc["structure"]
	tree, isMap := structure.(map[string]any)
	if !present || structure == nil || (isMap && len(tree) == 0) {
		r.AddError("Structure definition is required", "structure", models.ErrCodeMissingField)
	} else if isMap {
		checkSections(tree, r)
	}

	if view.fields != nil {
		if version, ok := view.fields["version"].(string); ok && version != "" && !IsSemver(version) {
			r.AddWarning("Version should follow semantic versioning (e.g., 1.0.0)",
				view.path("version"), models.ErrCodeVersionFormat)
		}
	}
}

func checkProjectName(view metadataView, r *models.ValidationResult) {
	raw, present := view.fields["project_name"]
	name, isString := raw.(string)

	switch {
	case !present || (isString && name == ""):
		r.AddError("Project name is required", view.path("project_name"), models.ErrCodeMissingField)
	case isString && !IsKebabCase(name):
		r.AddError("Project name should be lowercase with hyphens (kebab-case)",
			view.path("project_name"), models.ErrCodeInvalidFormat)
	}
}

func checkUsername(view metadataView, r *models.ValidationResult) {
	raw, present := view.fields["github_username"]
	name, isString := raw.(string)

	switch {
	case !present || (isString && name == ""):
		r.AddError("GitHub username is required", view.path("github_username"), models.ErrCodeMissingField)
	case isString && !IsValidUsername(name):
		r.AddWarning("GitHub username format may be invalid",
			view.path("github_username"), models.ErrCodeSuspiciousFormat)
	}
}

func checkSections(tree map[string]any, r *models.ValidationResult) {
	raw, ok := tree[RequiredSection]
	if !ok {
		r.AddError(fmt.Sprintf("Required section '%s' is missing from structure", RequiredSection),
			"structure."+RequiredSection, models.ErrCodeRequiredSection)
		return
	}

	metaRepo, ok := raw.(map[string]any)
	if !ok {
		r.AddError(RequiredSection+" section must be an object",
			"structure."+RequiredSection, models.ErrCodeInvalidType)
		return
	}

	for _, section := range recommendedSections {
		if _, ok := metaRepo[section]; !ok {
			r.AddWarning(fmt.Sprintf("Recommended section '%s' is missing from %s", section, RequiredSection),
				fmt.Sprintf("structure.%s.%s", RequiredSection, section), models.ErrCodeRecommendedSection)
		}
	}

	governance, ok := metaRepo["governance"].(map[string]any)
	if !ok {
		return
	}
	for _, section := range governanceSections {
		if _, ok := governance[section]; !ok {
			r.AddWarning(fmt.Sprintf("Recommended governance section '%s' is missing", section),
				fmt.Sprintf("structure.%s.governance.%s", RequiredSection, section), models.ErrCodeRecommendedSection)
		}
	}
}
