package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/reposeed/internal/models"
)

func TestChecksumDeterminism(t *testing.T) {
	a := models.NewFileTemplate("a.txt", "hello {name}")
	b := models.NewFileTemplate("b.txt", "hello {name}")
	c := models.NewFileTemplate("a.txt", "hello {Name}")

	assert.Equal(t, a.Checksum, b.Checksum)
	assert.NotEqual(t, a.Checksum, c.Checksum)
	assert.Len(t, a.Checksum, 64)
	assert.NotEmpty(t, a.LastUpdated)
	assert.NotNil(t, a.TemplateVars)
}

func TestFileTemplateUnmarshalFillsChecksum(t *testing.T) {
	var f models.FileTemplate
	require.NoError(t, json.Unmarshal([]byte(`{"path": "x.md", "content": "body"}`), &f))

	assert.Equal(t, models.Checksum("body"), f.Checksum)
	assert.NotEmpty(t, f.LastUpdated)
	assert.NotNil(t, f.TemplateVars)
}

func TestFileTemplateUnmarshalKeepsStoredChecksum(t *testing.T) {
	var f models.FileTemplate
	require.NoError(t, json.Unmarshal([]byte(`{"path": "x.md", "content": "body", "checksum": "abc", "last_updated": "2024-01-01T00:00:00"}`), &f))

	assert.Equal(t, "abc", f.Checksum)
	assert.Equal(t, "2024-01-01T00:00:00", f.LastUpdated)
}

func TestDirectoryStructureJSON(t *testing.T) {
	ds := &models.DirectoryStructure{
		Name: "proj",
		Path: "/src/proj",
		Files: []*models.FileTemplate{
			models.NewFileTemplate("README.md", "# proj"),
		},
		Subdirs: []*models.DirectoryStructure{
			{Name: "docs", Path: "/src/proj/docs"},
		},
		Metadata: map[string]any{"total_files": 1},
	}

	data, err := json.Marshal(ds)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"subdirs":[]`)
	assert.Contains(t, string(data), `"files":[]`)

	var back models.DirectoryStructure
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "proj", back.Name)
	require.Len(t, back.Subdirs, 1)
	assert.Equal(t, "docs", back.Subdirs[0].Name)
	assert.Equal(t, ds.Files[0].Checksum, back.Files[0].Checksum)
	assert.Equal(t, float64(1), back.Metadata["total_files"])
}

func TestDirectoryStructureAllFiles(t *testing.T) {
	ds := &models.DirectoryStructure{
		Name:  "root",
		Files: []*models.FileTemplate{models.NewFileTemplate("a.txt", "a")},
		Subdirs: []*models.DirectoryStructure{
			{
				Name:  "docs",
				Files: []*models.FileTemplate{models.NewFileTemplate("docs/b.md", "b")},
			},
		},
	}

	files := ds.AllFiles()
	assert.Len(t, files, 2)
	assert.Contains(t, files, "docs/b.md")
	assert.Equal(t, 2, ds.FileCount())
	assert.Equal(t, []string{"docs"}, ds.SubdirNames())
}

func TestComparisonHasChanges(t *testing.T) {
	assert.False(t, (&models.Comparison{}).HasChanges())
	assert.True(t, (&models.Comparison{DirsRemoved: []string{"old"}}).HasChanges())
}
