package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/reposeed/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.Equal(t, "templates", cfg.TemplatesDir)
	assert.True(t, cfg.SyncRules.PreserveExisting)
	assert.True(t, cfg.SyncRules.BackupBeforeSync)
	assert.Contains(t, cfg.SyncRules.ExcludePatterns, ".git")
	assert.Equal(t, "json", cfg.Store.Backend)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*config.Config)
		wantErr string
	}{
		{
			name:    "valid config",
			modify:  func(c *config.Config) {},
			wantErr: "",
		},
		{
			name: "missing templates dir",
			modify: func(c *config.Config) {
				c.TemplatesDir = ""
			},
			wantErr: "templates_dir is required",
		},
		{
			name: "unknown backend",
			modify: func(c *config.Config) {
				c.Store.Backend = "redis"
			},
			wantErr: "invalid store backend",
		},
		{
			name: "sqlite without path",
			modify: func(c *config.Config) {
				c.Store.Backend = "sqlite"
				c.Store.DBPath = ""
			},
			wantErr: "store.db_path is required",
		},
		{
			name: "strict and disabled schema",
			modify: func(c *config.Config) {
				c.Schema.Strict = true
				c.Schema.Disabled = true
			},
			wantErr: "mutually exclusive",
		},
		{
			name: "invalid log level",
			modify: func(c *config.Config) {
				c.Log.Level = "invalid"
			},
			wantErr: "invalid log level",
		},
		{
			name: "invalid log format",
			modify: func(c *config.Config) {
				c.Log.Format = "xml"
			},
			wantErr: "invalid log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoaderEnv(t *testing.T) {
	t.Setenv("REPOSEED_LOG_LEVEL", "DEBUG")
	t.Setenv("REPOSEED_TEMPLATES_DIR", "/tmp/seed-templates")
	t.Setenv("REPOSEED_SYNC_RULES_PRESERVE_EXISTING", "false")

	loader := config.NewLoader("")
	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/seed-templates", cfg.TemplatesDir)
	assert.False(t, cfg.SyncRules.PreserveExisting)
	assert.True(t, cfg.SyncRules.BackupBeforeSync)
}

func TestLoaderYAMLFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "sync_config.yaml")

	configYAML := `templates_dir: my-templates
output_dir: out
sync_rules:
  preserve_existing: false
  backup_before_sync: false
  exclude_patterns:
    - .git
    - node_modules
log:
  level: warn
  format: json
`
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0644))

	loader := config.NewLoader(configPath)
	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, configPath, loader.ConfigFileUsed())
	assert.Equal(t, "my-templates", cfg.TemplatesDir)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.False(t, cfg.SyncRules.PreserveExisting)
	assert.False(t, cfg.SyncRules.BackupBeforeSync)
	assert.Equal(t, []string{".git", "node_modules"}, cfg.SyncRules.ExcludePatterns)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	// Untouched keys keep their defaults
	assert.Equal(t, "json", cfg.Store.Backend)
}

func TestLoaderJSONFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "sync_config.json")

	configJSON := `{
		"templates_dir": "tpl",
		"store": {"backend": "sqlite", "db_path": "tpl/store.db"}
	}`
	require.NoError(t, os.WriteFile(configPath, []byte(configJSON), 0644))

	cfg, err := config.NewLoader(configPath).Load()

	require.NoError(t, err)
	assert.Equal(t, "tpl", cfg.TemplatesDir)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "tpl/store.db", cfg.Store.DBPath)
}

func TestLoaderMissingExplicitFile(t *testing.T) {
	_, err := config.NewLoader(filepath.Join(t.TempDir(), "nope.yaml")).Load()
	assert.Error(t, err)
}

func TestLoaderRejectsInvalidValues(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("log:\n  level: loud\n"), 0644))

	_, err := config.NewLoader(configPath).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestSaveExampleRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "reposeed.yaml")

	require.NoError(t, config.SaveExample(path))

	cfg, err := config.NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestConfigEnsureDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.TemplatesDir = filepath.Join(tmpDir, "templates")
	cfg.Store.Backend = "sqlite"
	cfg.Store.DBPath = filepath.Join(tmpDir, "db", "templates.db")
	cfg.Log.File = filepath.Join(tmpDir, "logs", "app.log")

	err := cfg.EnsureDirectories()
	require.NoError(t, err)

	assert.DirExists(t, cfg.TemplatesDir)
	assert.DirExists(t, filepath.Dir(cfg.Store.DBPath))
	assert.DirExists(t, filepath.Dir(cfg.Log.File))
}
