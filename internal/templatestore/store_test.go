package templatestore_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/reposeed/internal/config"
	"github.com/TheMichaelB/reposeed/internal/events"
	"github.com/TheMichaelB/reposeed/internal/models"
	"github.com/TheMichaelB/reposeed/internal/storage"
	"github.com/TheMichaelB/reposeed/internal/templatestore"
)

func sampleSnapshot(content string) *models.DirectoryStructure {
	return &models.DirectoryStructure{
		Name: "seed",
		Path: "/src/seed",
		Files: []*models.FileTemplate{
			models.NewFileTemplate("README.md", content),
		},
		Subdirs: []*models.DirectoryStructure{
			{
				Name: "docs",
				Path: "/src/seed/docs",
				Files: []*models.FileTemplate{
					models.NewFileTemplate("docs/guide.md", "# Guide\n"),
				},
			},
		},
		Metadata: map[string]any{"total_files": float64(2)},
	}
}

func TestJSONStoreLocal(t *testing.T) {
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.DebugLevel, "json", &buf)

	blobs, err := storage.NewLocalStore(t.TempDir(), logger)
	require.NoError(t, err)

	store, err := templatestore.NewJSONStore(blobs, "", logger)
	require.NoError(t, err)
	defer store.Close()

	testStoreOperations(t, store)
}

func TestJSONStoreMemfs(t *testing.T) {
	logger := events.Discard()
	blobs := storage.NewBillyStore(memfs.New(), logger)

	store, err := templatestore.NewJSONStore(blobs, "templates", logger)
	require.NoError(t, err)
	defer store.Close()

	testStoreOperations(t, store)
}

func TestSQLiteStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "templates.db")
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.DebugLevel, "json", &buf)

	store, err := templatestore.NewSQLiteStore(dbPath, logger)
	require.NoError(t, err)
	defer store.Close()

	testStoreOperations(t, store)
}

func TestMemoryStore(t *testing.T) {
	testStoreOperations(t, templatestore.NewMemoryStore())
}

func testStoreOperations(t *testing.T, store templatestore.Store) {
	name := "web-service"

	t.Run("list empty", func(t *testing.T) {
		names, err := store.List()
		require.NoError(t, err)
		assert.Empty(t, names)
		assert.NotNil(t, names)
	})

	t.Run("load non-existent", func(t *testing.T) {
		_, err := store.Load(name)
		assert.ErrorIs(t, err, models.ErrNotFound)

		var nf *models.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "template", nf.Kind)
		assert.Equal(t, name, nf.Name)
	})

	t.Run("save and load", func(t *testing.T) {
		snapshot := sampleSnapshot("# Seed\n")
		require.NoError(t, store.Save(name, snapshot))

		loaded, err := store.Load(name)
		require.NoError(t, err)

		assert.Equal(t, "seed", loaded.Name)
		assert.Equal(t, 2, loaded.FileCount())
		assert.Equal(t, []string{"docs"}, loaded.SubdirNames())

		files := loaded.AllFiles()
		require.Contains(t, files, "README.md")
		assert.Equal(t, "# Seed\n", files["README.md"].Content)
		assert.Equal(t, models.Checksum("# Seed\n"), files["README.md"].Checksum)
		assert.Equal(t, float64(2), loaded.Metadata["total_files"])
	})

	t.Run("update existing", func(t *testing.T) {
		require.NoError(t, store.Save(name, sampleSnapshot("# Updated\n")))

		loaded, err := store.Load(name)
		require.NoError(t, err)
		assert.Equal(t, "# Updated\n", loaded.AllFiles()["README.md"].Content)
	})

	t.Run("list templates", func(t *testing.T) {
		require.NoError(t, store.Save("api-gateway", sampleSnapshot("gw")))

		names, err := store.List()
		require.NoError(t, err)
		assert.Equal(t, []string{"api-gateway", name}, names)
	})

	t.Run("invalid names", func(t *testing.T) {
		for _, bad := range []string{"", "  ", "a/b", `a\b`, ".."} {
			err := store.Save(bad, sampleSnapshot("x"))
			assert.ErrorIs(t, err, templatestore.ErrInvalidName, "name %q", bad)
		}
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete(name))

		_, err := store.Load(name)
		assert.ErrorIs(t, err, models.ErrNotFound)

		err = store.Delete(name)
		assert.ErrorIs(t, err, models.ErrNotFound)

		_, err = store.Load("api-gateway")
		assert.NoError(t, err)
	})
}

func TestJSONStoreCorruption(t *testing.T) {
	tmpDir := t.TempDir()
	logger := events.Discard()

	blobs, err := storage.NewLocalStore(tmpDir, logger)
	require.NoError(t, err)
	store, err := templatestore.NewJSONStore(blobs, "", logger)
	require.NoError(t, err)

	require.NoError(t, store.Save("broken", sampleSnapshot("x")))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "broken.json"), []byte("invalid json"), 0600))

	_, err = store.Load("broken")
	assert.ErrorIs(t, err, templatestore.ErrTemplateCorrupt)
}

func TestJSONStoreIgnoresOtherFiles(t *testing.T) {
	logger := events.Discard()
	blobs := storage.NewBillyStore(memfs.New(), logger)
	store, err := templatestore.NewJSONStore(blobs, "templates", logger)
	require.NoError(t, err)

	require.NoError(t, store.Save("one", sampleSnapshot("1")))
	require.NoError(t, blobs.Write("templates/notes.txt", []byte("not a template"), 0644))
	require.NoError(t, blobs.EnsureDir("templates/nested.json"))

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, names)
}

func TestJSONStoreWritesReadableDocument(t *testing.T) {
	logger := events.Discard()
	blobs := storage.NewBillyStore(memfs.New(), logger)
	store, err := templatestore.NewJSONStore(blobs, "templates", logger)
	require.NoError(t, err)

	require.NoError(t, store.Save("doc", &models.DirectoryStructure{Name: "empty", Path: "/empty"}))

	data, err := blobs.Read("templates/doc.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"subdirs": []`)
	assert.Contains(t, string(data), `"files": []`)
	assert.Contains(t, string(data), `"metadata": {}`)
}

func TestCopy(t *testing.T) {
	src := templatestore.NewMemoryStore()
	require.NoError(t, src.Save("alpha", sampleSnapshot("a")))
	require.NoError(t, src.Save("beta", sampleSnapshot("b")))

	dst, err := templatestore.NewSQLiteStore(filepath.Join(t.TempDir(), "copy.db"), events.Discard())
	require.NoError(t, err)
	defer dst.Close()

	n, err := templatestore.Copy(src, dst)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	names, err := dst.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names)

	loaded, err := dst.Load("beta")
	require.NoError(t, err)
	assert.Equal(t, "b", loaded.AllFiles()["README.md"].Content)
}

func TestOpen(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("json backend", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.TemplatesDir = filepath.Join(tmpDir, "json")
		require.NoError(t, cfg.EnsureDirectories())

		store, err := templatestore.Open(cfg, events.Discard())
		require.NoError(t, err)
		defer store.Close()

		require.NoError(t, store.Save("t", sampleSnapshot("x")))
		assert.FileExists(t, filepath.Join(cfg.TemplatesDir, "t.json"))
	})

	t.Run("sqlite backend", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Store.Backend = "sqlite"
		cfg.Store.DBPath = filepath.Join(tmpDir, "seed.db")

		store, err := templatestore.Open(cfg, events.Discard())
		require.NoError(t, err)
		defer store.Close()

		_, ok := store.(*templatestore.SQLiteStore)
		assert.True(t, ok)
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Store.Backend = "redis"

		_, err := templatestore.Open(cfg, events.Discard())
		assert.ErrorContains(t, err, "unknown store backend")
	})
}
