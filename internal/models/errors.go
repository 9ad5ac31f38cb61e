package models

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for validation issues.
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeWarning            = "VALIDATION_WARNING"
	ErrCodeSchemaValidation   = "SCHEMA_VALIDATION_ERROR"
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeEmptyField         = "EMPTY_FIELD"
	ErrCodeInvalidType        = "INVALID_TYPE"
	ErrCodeInvalidFormat      = "INVALID_FORMAT"
	ErrCodeSuspiciousFormat   = "SUSPICIOUS_FORMAT"
	ErrCodeVersionFormat      = "INVALID_VERSION_FORMAT"
	ErrCodeEmptyStructure     = "EMPTY_STRUCTURE"
	ErrCodeRequiredSection    = "MISSING_REQUIRED_SECTION"
	ErrCodeRecommendedSection = "MISSING_RECOMMENDED_SECTION"
)

// Sentinel errors. Every typed error below matches exactly one of these
// through errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrParse      = errors.New("parse error")
	ErrValidation = errors.New("validation failed")
	ErrSchema     = errors.New("schema error")
	ErrMigration  = errors.New("migration not supported")
)

// NotFoundError reports a missing structure file or template.
type NotFoundError struct {
	Kind string // "structure file", "template", "source directory"
	Name string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ParseError reports a document that is not syntactically valid.
// Line and Column are 1-based; zero means unknown.
type ParseError struct {
	Source  string
	Message string
	Line    int
	Column  int
	Err     error
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	if e.Line > 0 && e.Column > 0 {
		fmt.Fprintf(&sb, "Line %d, Column %d: ", e.Line, e.Column)
	} else if e.Line > 0 {
		fmt.Fprintf(&sb, "Line %d: ", e.Line)
	}
	if e.Source != "" {
		fmt.Fprintf(&sb, "invalid document %s: ", e.Source)
	} else {
		sb.WriteString("invalid document: ")
	}
	sb.WriteString(e.Message)
	return sb.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ValidationError carries every issue that made a document invalid.
type ValidationError struct {
	Message string
	Issues  []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return e.Message
	}

	var sb strings.Builder
	sb.WriteString(e.Message)
	sb.WriteString("\nValidation errors:")
	for _, issue := range e.Issues {
		sb.WriteString("\n  - ")
		sb.WriteString(issue.String())
	}
	return sb.String()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// SchemaError means the validation contract itself is unusable.
type SchemaError struct {
	Path   string
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("schema %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("schema %s: %s", e.Path, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// MigrationError reports a version transition with no defined procedure.
type MigrationError struct {
	From string
	To   string
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration from version %s to %s is not supported", e.From, e.To)
}

func (e *MigrationError) Is(target error) bool {
	return target == ErrMigration
}

// SyncError provides detailed materialize failure information.
type SyncError struct {
	Phase string // backup, mkdir, write
	Path  string
	Err   error
}

func (e *SyncError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("sync %s: %s: %v", e.Phase, e.Path, e.Err)
	}
	return fmt.Sprintf("sync %s: %v", e.Phase, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
