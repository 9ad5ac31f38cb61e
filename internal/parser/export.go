package parser

import (
	"fmt"

	"github.com/TheMichaelB/reposeed/internal/models"
	"github.com/TheMichaelB/reposeed/internal/storage"
)

// ExportOptions controls Export output.
type ExportOptions struct {
	// Layout defaults to the flat v1 layout.
	Layout models.Shape
	// Pretty indents JSON output. YAML is always block style.
	Pretty bool
}

// Export writes s to path, creating parent directories. The format follows
// the file extension.
func (p *Parser) Export(s *models.StructureData, path string, opts ExportOptions) error {
	layout := opts.Layout
	if layout == 0 {
		layout = models.ShapeV1
	}

	format := models.FormatFromPath(path)
	data, err := models.EncodeStructure(s, layout, format, opts.Pretty)
	if err != nil {
		return fmt.Errorf("encode structure: %w", err)
	}

	if err := storage.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("export structure: %w", err)
	}

	p.logger.WithFields(map[string]interface{}{
		"path":   path,
		"layout": layout.String(),
		"format": string(format),
	}).Debug("Exported structure document")

	return nil
}
