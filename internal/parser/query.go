package parser

import (
	"fmt"

	"github.com/ohler55/ojg/jp"

	"github.com/TheMichaelB/reposeed/internal/models"
)

// Query evaluates a JSONPath expression against a decoded document.
func Query(doc map[string]any, expr string) ([]any, error) {
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("parse query %q: %w", expr, err)
	}
	return x.Get(doc), nil
}

// QueryFile decodes the document at path without validating it and
// evaluates expr against it.
func (p *Parser) QueryFile(path, expr string) ([]any, error) {
	data, err := readDocument(path)
	if err != nil {
		return nil, err
	}

	doc, err := decodeDocument(data, models.FormatFromPath(path), path)
	if err != nil {
		return nil, err
	}

	return Query(doc, expr)
}
