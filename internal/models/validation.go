package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Issue is a single validation error or warning.
type Issue struct {
	Message string `json:"message"`
	Path    string `json:"path"`
	Code    string `json:"error_code"`
	Line    int    `json:"line_number,omitempty"`
	Column  int    `json:"column,omitempty"`
}

func (i Issue) String() string {
	var sb strings.Builder
	sb.WriteString(i.Code)
	sb.WriteString(": ")
	sb.WriteString(i.Message)
	if i.Path != "" {
		sb.WriteString(" at ")
		sb.WriteString(i.Path)
	}
	if i.Line > 0 {
		fmt.Fprintf(&sb, " (line %d)", i.Line)
	}
	return sb.String()
}

// ValidationResult accumulates errors and warnings for one document.
// It starts valid; the first error makes it invalid for good.
type ValidationResult struct {
	valid         bool
	errors        []Issue
	warnings      []Issue
	SchemaVersion string
}

// NewValidationResult returns an empty, valid result.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{valid: true}
}

// AddError records an error and marks the result invalid.
func (r *ValidationResult) AddError(message, path, code string) {
	r.AddIssue(Issue{Message: message, Path: path, Code: code})
}

// AddIssue records an error carrying position information.
func (r *ValidationResult) AddIssue(issue Issue) {
	if issue.Code == "" {
		issue.Code = ErrCodeValidation
	}
	r.errors = append(r.errors, issue)
	r.valid = false
}

// AddWarning records a warning. Validity is unaffected.
func (r *ValidationResult) AddWarning(message, path, code string) {
	if code == "" {
		code = ErrCodeWarning
	}
	r.warnings = append(r.warnings, Issue{Message: message, Path: path, Code: code})
}

// IsValid reports whether no error has been recorded.
func (r *ValidationResult) IsValid() bool { return r.valid }

// Errors returns a copy of the recorded errors in insertion order.
func (r *ValidationResult) Errors() []Issue { return append([]Issue(nil), r.errors...) }

// Warnings returns a copy of the recorded warnings in insertion order.
func (r *ValidationResult) Warnings() []Issue { return append([]Issue(nil), r.warnings...) }

func (r *ValidationResult) ErrorCount() int   { return len(r.errors) }
func (r *ValidationResult) WarningCount() int { return len(r.warnings) }
func (r *ValidationResult) HasErrors() bool   { return len(r.errors) > 0 }
func (r *ValidationResult) HasWarnings() bool { return len(r.warnings) > 0 }

// Err converts an invalid result into a *ValidationError carrying every
// error. It returns nil for a valid result.
func (r *ValidationResult) Err() error {
	if r.valid {
		return nil
	}
	return &ValidationError{
		Message: "structure validation failed",
		Issues:  r.Errors(),
	}
}

// Summary returns a one-line outcome.
func (r *ValidationResult) Summary() string {
	if r.valid {
		if r.HasWarnings() {
			return fmt.Sprintf("Valid with %d warning(s)", r.WarningCount())
		}
		return "Valid"
	}
	return fmt.Sprintf("Invalid: %d error(s), %d warning(s)", r.ErrorCount(), r.WarningCount())
}

// Report returns a multi-line report listing every issue.
func (r *ValidationResult) Report() string {
	lines := []string{"Validation Result: " + r.Summary()}

	if r.SchemaVersion != "" {
		lines = append(lines, "Schema Version: "+r.SchemaVersion)
	}

	if len(r.errors) > 0 {
		lines = append(lines, "", "Errors:")
		for _, issue := range r.errors {
			lines = append(lines, "  "+issue.String())
		}
	}

	if len(r.warnings) > 0 {
		lines = append(lines, "", "Warnings:")
		for _, issue := range r.warnings {
			lines = append(lines, "  "+issue.String())
		}
	}

	return strings.Join(lines, "\n")
}

// MarshalJSON exposes the result with counts derived from the collections.
func (r *ValidationResult) MarshalJSON() ([]byte, error) {
	out := struct {
		IsValid       bool    `json:"is_valid"`
		ErrorCount    int     `json:"error_count"`
		WarningCount  int     `json:"warning_count"`
		SchemaVersion string  `json:"schema_version,omitempty"`
		Errors        []Issue `json:"errors"`
		Warnings      []Issue `json:"warnings"`
	}{
		IsValid:       r.valid,
		ErrorCount:    r.ErrorCount(),
		WarningCount:  r.WarningCount(),
		SchemaVersion: r.SchemaVersion,
		Errors:        append([]Issue{}, r.errors...),
		Warnings:      append([]Issue{}, r.warnings...),
	}
	return json.Marshal(out)
}
