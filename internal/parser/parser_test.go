package parser_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/reposeed/internal/config"
	"github.com/TheMichaelB/reposeed/internal/events"
	"github.com/TheMichaelB/reposeed/internal/models"
	"github.com/TheMichaelB/reposeed/internal/parser"
	"github.com/TheMichaelB/reposeed/internal/schema"
)

const validV1 = `{
	"project_name": "meta-seed",
	"github_username": "octo-cat",
	"created_date": "2024-01-15",
	"version": "1.2.0",
	"description": "Seed repository",
	"tags": ["seed", "meta"],
	"structure": {
		"meta-repo": {
			"governance": {
				"structure": ["structure.json"],
				"policies": ["a.md", "b.md"],
				"processes": ["review.md"]
			},
			"automation": ["seed.py"],
			"documentation": {"guides": ["intro.md"]}
		},
		"zeta": ["z.txt"],
		"alpha": {"nested": {"deep": ["d.txt"]}}
	}
}`

const validV2 = `{
	"metadata": {
		"project_name": "meta-seed",
		"github_username": "octo-cat",
		"created_date": "2024-01-15",
		"version": "3.1.0",
		"schema_version": "2.0.0"
	},
	"structure": {
		"meta-repo": {
			"governance": {"structure": [], "policies": [], "processes": []},
			"automation": [],
			"documentation": []
		}
	}
}`

func newParser(t *testing.T) *parser.Parser {
	t.Helper()
	v, err := schema.NewBuiltin()
	require.NoError(t, err)
	return parser.New(v, events.Discard())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseStringV1(t *testing.T) {
	s, err := newParser(t).ParseString(validV1)
	require.NoError(t, err)

	assert.Equal(t, "meta-seed", s.ProjectName)
	assert.Equal(t, "octo-cat", s.GitHubUsername)
	assert.Equal(t, "1.2.0", s.Version)
	assert.Equal(t, models.SchemaVersionV1, s.SchemaVersion)
	assert.Equal(t, models.ShapeV1, s.Shape)
	assert.Equal(t, []string{"seed", "meta"}, s.Tags)
	assert.Equal(t, []string{"meta-repo", "zeta", "alpha"}, s.TopLevelDirectories())
}

func TestParseStringV2(t *testing.T) {
	s, err := newParser(t).ParseString(validV2)
	require.NoError(t, err)

	assert.Equal(t, "meta-seed", s.ProjectName)
	assert.Equal(t, "3.1.0", s.Version)
	assert.Equal(t, "2.0.0", s.SchemaVersion)
	assert.Equal(t, models.ShapeV2, s.Shape)
	assert.True(t, s.HasDirectory("meta-repo/governance/policies"))
}

func TestParseStringInvalidDocument(t *testing.T) {
	doc := `{"project_name": "", "version": "2.0"}`

	for name, p := range map[string]*parser.Parser{
		"jsonschema": newParser(t),
		"fallback":   parser.New(nil, events.Discard()),
	} {
		t.Run(name, func(t *testing.T) {
			result, err := p.ValidateBytes([]byte(doc), models.FormatJSON, "")
			require.NoError(t, err)
			assert.False(t, result.IsValid())
			assert.GreaterOrEqual(t, result.ErrorCount(), 3)

			_, err = p.ParseString(doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrValidation)

			var verr *models.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Len(t, verr.Issues, result.ErrorCount())

			msg := err.Error()
			assert.Contains(t, msg, "project_name")
			assert.Contains(t, msg, "github_username")
			assert.Contains(t, msg, "structure")
		})
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	p := newParser(t)

	tests := []struct {
		name   string
		doc    string
		line   int
		column int
	}{
		{name: "missing value", doc: "{\n  \"a\": }", line: 2, column: 8},
		{name: "trailing comma", doc: "{\"a\": 1,}", line: 1, column: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseString(tt.doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrParse)

			var perr *models.ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.line, perr.Line)
			assert.Equal(t, tt.column, perr.Column)
			assert.Contains(t, err.Error(), "Line")
		})
	}
}

func TestParseNonObjectRoot(t *testing.T) {
	p := newParser(t)

	for _, doc := range []string{`[1, 2]`, `"text"`, ``, `   `} {
		_, err := p.ParseString(doc)
		assert.ErrorIs(t, err, models.ErrParse, "document %q", doc)
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	p := newParser(t)

	t.Run("json", func(t *testing.T) {
		s, err := p.ParseFile(writeFile(t, dir, "structure.json", validV1))
		require.NoError(t, err)
		assert.Equal(t, "meta-seed", s.ProjectName)
	})

	t.Run("yaml", func(t *testing.T) {
		doc := `metadata:
  project_name: meta-seed
  github_username: octo-cat
  created_date: 2024-01-15
  version: 1.0.0
  schema_version: 2.0.0
structure:
  meta-repo:
    governance:
      structure: [structure.json]
      policies: [b.md, a.md]
      processes: []
    automation: [seed.py]
    documentation: []
  tools: [lint.sh]
`
		s, err := p.ParseFile(writeFile(t, dir, "structure.yaml", doc))
		require.NoError(t, err)
		assert.Equal(t, "2024-01-15", s.CreatedDate)
		assert.Equal(t, models.ShapeV2, s.Shape)
		assert.Equal(t, []string{"meta-repo", "tools"}, s.TopLevelDirectories())
		assert.Equal(t, []string{"structure.json", "b.md", "a.md"}, s.DirectoryFiles("meta-repo/governance"))
	})

	t.Run("yaml syntax error", func(t *testing.T) {
		_, err := p.ParseFile(writeFile(t, dir, "broken.yml", "a: b\nc: d: e\n"))
		require.Error(t, err)

		var perr *models.ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, 2, perr.Line)
		assert.Contains(t, err.Error(), "broken.yml")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := p.ParseFile(filepath.Join(dir, "nope.json"))
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrNotFound)

		var nf *models.NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, "structure file", nf.Kind)
	})
}

func TestDirectoryFilesFlattensOneLevel(t *testing.T) {
	s, err := newParser(t).ParseString(validV1)
	require.NoError(t, err)

	assert.Equal(t, []string{"structure.json", "a.md", "b.md", "review.md"}, s.DirectoryFiles("meta-repo/governance"))
	assert.Equal(t, []string{"seed.py"}, s.DirectoryFiles("meta-repo"))
	assert.Empty(t, s.DirectoryFiles("alpha"))
	assert.Empty(t, s.DirectoryFiles("missing"))
}

func TestDirectoryEnumerationCompleteness(t *testing.T) {
	s, err := newParser(t).ParseString(validV1)
	require.NoError(t, err)

	dirs := s.AllDirectories()
	for _, dir := range dirs {
		assert.True(t, s.HasDirectory(dir), dir)
	}

	var leaves []string
	for _, files := range s.AllFiles() {
		leaves = append(leaves, files...)
	}
	assert.ElementsMatch(t, []string{
		"structure.json", "a.md", "b.md", "review.md", "seed.py", "intro.md", "z.txt", "d.txt",
	}, leaves)
}

func TestDirectoryStructure(t *testing.T) {
	s, err := newParser(t).ParseString(validV1)
	require.NoError(t, err)

	dirs := parser.DirectoryStructure(s)
	assert.Equal(t, "meta-repo", dirs[0])
	assert.Contains(t, dirs, filepath.Join("meta-repo", "governance", "policies"))
	assert.Contains(t, dirs, filepath.Join("alpha", "nested", "deep"))
	assert.Len(t, dirs, len(s.AllDirectories()))
}

func TestSchemaInfo(t *testing.T) {
	info := newParser(t).SchemaInfo()
	assert.True(t, info.Loaded)
	assert.Equal(t, schema.BuiltinSource, info.Source)
	assert.Equal(t, "2.0.0", info.Version)

	info = parser.New(nil, events.Discard()).SchemaInfo()
	assert.False(t, info.Loaded)
	assert.Equal(t, schema.FallbackSource, info.Version)
}

func TestValidatorFromConfig(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.json")

	t.Run("default is builtin contract", func(t *testing.T) {
		v, err := parser.ValidatorFromConfig(config.SchemaConfig{}, events.Discard())
		require.NoError(t, err)
		assert.IsType(t, &schema.JSONSchemaValidator{}, v)
	})

	t.Run("disabled", func(t *testing.T) {
		v, err := parser.ValidatorFromConfig(config.SchemaConfig{Disabled: true}, events.Discard())
		require.NoError(t, err)
		assert.IsType(t, &schema.FallbackValidator{}, v)
	})

	t.Run("unloadable falls back", func(t *testing.T) {
		v, err := parser.ValidatorFromConfig(config.SchemaConfig{Path: missing}, events.Discard())
		require.NoError(t, err)
		assert.IsType(t, &schema.FallbackValidator{}, v)
	})

	t.Run("unloadable strict", func(t *testing.T) {
		_, err := parser.ValidatorFromConfig(config.SchemaConfig{Path: missing, Strict: true}, events.Discard())
		assert.ErrorIs(t, err, models.ErrSchema)
	})
}

func TestFallbackParserSkipsSemanticRules(t *testing.T) {
	doc := `{
		"project_name": "Not Kebab",
		"github_username": "octo",
		"version": "1.0.0",
		"structure": {"src": ["main.go"]}
	}`

	s, err := parser.New(nil, events.Discard()).ParseString(doc)
	require.NoError(t, err)
	assert.Equal(t, "Not Kebab", s.ProjectName)

	_, err = newParser(t).ParseString(doc)
	assert.ErrorIs(t, err, models.ErrValidation)
}
