// Package parser turns structure documents into validated StructureData and
// back.
package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/TheMichaelB/reposeed/internal/config"
	"github.com/TheMichaelB/reposeed/internal/events"
	"github.com/TheMichaelB/reposeed/internal/models"
	"github.com/TheMichaelB/reposeed/internal/schema"
)

// Parser reads, validates, migrates and exports structure documents.
type Parser struct {
	validator schema.Validator
	logger    *events.Logger
}

// New creates a parser. A nil validator selects the fallback checks.
func New(v schema.Validator, logger *events.Logger) *Parser {
	if v == nil {
		v = schema.NewFallback()
	}
	return &Parser{
		validator: v,
		logger:    logger.WithField("component", "parser"),
	}
}

// ValidatorFromConfig picks the validator described by cfg. When the
// contract cannot be loaded the fallback is used, unless cfg.Strict is set.
func ValidatorFromConfig(cfg config.SchemaConfig, logger *events.Logger) (schema.Validator, error) {
	if cfg.Disabled {
		return schema.NewFallback(), nil
	}

	v, err := schema.New(cfg.Path)
	if err != nil {
		if cfg.Strict {
			return nil, err
		}
		logger.WithError(err).Warn("Schema contract unavailable, using fallback validation")
		return schema.NewFallback(), nil
	}

	return v, nil
}

// ParseFile reads and parses a structure document. The format follows the
// file extension.
func (p *Parser) ParseFile(path string) (*models.StructureData, error) {
	data, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	return p.ParseBytes(data, models.FormatFromPath(path), path)
}

// ParseString parses a JSON structure document.
func (p *Parser) ParseString(content string) (*models.StructureData, error) {
	return p.ParseBytes([]byte(content), models.FormatJSON, "")
}

// ParseBytes decodes, validates and converts a document. Syntax problems
// return a *models.ParseError; an invalid document returns a
// *models.ValidationError listing every error found.
func (p *Parser) ParseBytes(data []byte, format models.Format, source string) (*models.StructureData, error) {
	logger := p.logger.WithFields(map[string]interface{}{
		"source": source,
		"format": string(format),
	})
	logger.Debug("Parsing structure document")

	doc, err := decodeDocument(data, format, source)
	if err != nil {
		return nil, err
	}

	result := p.Validate(doc)
	if !result.IsValid() {
		logger.WithFields(map[string]interface{}{
			"errors":   result.ErrorCount(),
			"warnings": result.WarningCount(),
		}).Debug("Structure document is invalid")
		return nil, result.Err()
	}

	structure, err := models.DecodeStructure(data, format)
	if err != nil {
		return nil, parseErrorFrom(err, data, format, source)
	}

	logger.WithFields(map[string]interface{}{
		"project":        structure.ProjectName,
		"schema_version": structure.SchemaVersion,
		"shape":          structure.Shape.String(),
	}).Debug("Parsed structure document")

	return structure, nil
}

// Validate checks a decoded document. It never fails; every problem is in
// the returned result.
func (p *Parser) Validate(doc map[string]any) *models.ValidationResult {
	return p.validator.Validate(doc)
}

// ValidateBytes decodes a document and validates it. Only syntax problems
// are returned as errors.
func (p *Parser) ValidateBytes(data []byte, format models.Format, source string) (*models.ValidationResult, error) {
	doc, err := decodeDocument(data, format, source)
	if err != nil {
		return nil, err
	}
	return p.Validate(doc), nil
}

// ValidateFile reads a document from disk and validates it.
func (p *Parser) ValidateFile(path string) (*models.ValidationResult, error) {
	data, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	return p.ValidateBytes(data, models.FormatFromPath(path), path)
}

// DirectoryStructure lists every directory path implied by the tree, parents
// first, using the host path separator.
func DirectoryStructure(s *models.StructureData) []string {
	dirs := s.AllDirectories()
	out := make([]string, len(dirs))
	for i, dir := range dirs {
		out[i] = filepath.FromSlash(dir)
	}
	return out
}

// SchemaInfo describes the active validation contract.
func (p *Parser) SchemaInfo() schema.Info {
	if d, ok := p.validator.(schema.Describer); ok {
		return d.Info()
	}
	return schema.Info{Version: schema.FallbackSource}
}

func readDocument(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &models.NotFoundError{Kind: "structure file", Name: path, Err: err}
		}
		return nil, fmt.Errorf("read structure file %s: %w", path, err)
	}
	return data, nil
}
