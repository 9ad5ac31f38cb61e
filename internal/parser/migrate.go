package parser

import (
	"strings"

	"github.com/TheMichaelB/reposeed/internal/models"
)

// Migrate converts s to the target schema version and returns a new value;
// s is never modified. 1.x documents move to 2.0. Documents already on 2.x
// are returned as a copy. Every other pair is a *models.MigrationError.
func Migrate(s *models.StructureData, target string) (*models.StructureData, error) {
	if !isV2Target(target) {
		return nil, &models.MigrationError{From: s.SchemaVersion, To: target}
	}

	switch {
	case strings.HasPrefix(s.SchemaVersion, "1."):
		return migrateV1ToV2(s), nil
	case strings.HasPrefix(s.SchemaVersion, "2."):
		return s.Clone(), nil
	default:
		return nil, &models.MigrationError{From: s.SchemaVersion, To: target}
	}
}

func isV2Target(target string) bool {
	return target == "2.0" || target == models.SchemaVersionV2
}

func migrateV1ToV2(s *models.StructureData) *models.StructureData {
	out := &models.StructureData{
		ProjectName:    s.ProjectName,
		GitHubUsername: s.GitHubUsername,
		CreatedDate:    s.CreatedDate,
		Version:        s.Version,
		SchemaVersion:  models.SchemaVersionV2,
		Structure:      s.Structure.Clone(),
		Description:    s.Description,
		UpdatedDate:    s.UpdatedDate,
		TemplatePath:   s.TemplatePath,
		Shape:          models.ShapeV2,
	}
	if s.Tags != nil {
		out.Tags = append([]string{}, s.Tags...)
	}
	return out
}

// LoadWithMigration parses the file at path and migrates it to target when
// its schema version differs.
func (p *Parser) LoadWithMigration(path, target string) (*models.StructureData, error) {
	s, err := p.ParseFile(path)
	if err != nil {
		return nil, err
	}

	if s.SchemaVersion == target {
		return s, nil
	}

	migrated, err := Migrate(s, target)
	if err != nil {
		return nil, err
	}

	p.logger.WithFields(map[string]interface{}{
		"source": path,
		"from":   s.SchemaVersion,
		"to":     migrated.SchemaVersion,
	}).Info("Migrated structure document")

	return migrated, nil
}
