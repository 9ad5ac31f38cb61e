package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/TheMichaelB/reposeed/internal/models"
)

var yamlLinePattern = regexp.MustCompile(`line (\d+)`)

// decodeDocument decodes data into a generic document with a JSON-shaped
// value space, whatever the input format.
func decodeDocument(data []byte, format models.Format, source string) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &models.ParseError{Source: source, Message: "document is empty"}
	}

	var raw any
	switch format {
	case models.FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, parseErrorFrom(err, data, format, source)
		}
		normalized, err := normalize(raw)
		if err != nil {
			return nil, &models.ParseError{Source: source, Message: err.Error(), Err: err}
		}
		raw = normalized
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, parseErrorFrom(err, data, format, source)
		}
	}

	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, &models.ParseError{Source: source, Message: "document root must be an object"}
	}
	return doc, nil
}

// normalize round-trips a YAML value through JSON so that numbers, maps and
// sequences look exactly like decoded JSON.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// parseErrorFrom converts a decoder error into a *models.ParseError with a
// position when the decoder reports one.
func parseErrorFrom(err error, data []byte, format models.Format, source string) error {
	var treeErr *models.TreeError
	if errors.As(err, &treeErr) {
		return &models.ParseError{Source: source, Message: treeErr.Error(), Err: err}
	}

	perr := &models.ParseError{Source: source, Message: err.Error(), Err: err}

	if format == models.FormatYAML {
		if m := yamlLinePattern.FindStringSubmatch(err.Error()); m != nil {
			perr.Line, _ = strconv.Atoi(m[1])
		}
		return perr
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		perr.Line, perr.Column = position(data, syntaxErr.Offset)
		return perr
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		perr.Line, perr.Column = position(data, typeErr.Offset)
	}
	return perr
}

// position converts a decoder offset (bytes consumed) into a 1-based line
// and column pointing at the offending byte.
func position(data []byte, offset int64) (line, column int) {
	idx := int(offset) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(data) {
		idx = len(data)
	}

	line = 1 + bytes.Count(data[:idx], []byte{'\n'})
	column = idx - bytes.LastIndexByte(data[:idx], '\n')
	return line, column
}
