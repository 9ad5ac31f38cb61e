package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds all application configuration.
//
// The top-level keys match the synchronizer config file layout so an
// existing sync_config.yaml can be loaded unchanged.
type Config struct {
	// Template store location
	TemplatesDir string `mapstructure:"templates_dir" yaml:"templates_dir" json:"templates_dir"`

	// Default materialize destination
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`

	// Synchronizer behavior
	SyncRules SyncRules `mapstructure:"sync_rules" yaml:"sync_rules" json:"sync_rules"`

	// Structure schema contract
	Schema SchemaConfig `mapstructure:"schema" yaml:"schema" json:"schema"`

	// Template store backend
	Store StoreConfig `mapstructure:"store" yaml:"store" json:"store"`

	// Logging
	Log LogConfig `mapstructure:"log" yaml:"log" json:"log"`
}

// SyncRules controls how snapshots are captured and replayed.
type SyncRules struct {
	PreserveExisting bool     `mapstructure:"preserve_existing" yaml:"preserve_existing" json:"preserve_existing"`
	BackupBeforeSync bool     `mapstructure:"backup_before_sync" yaml:"backup_before_sync" json:"backup_before_sync"`
	ExcludePatterns  []string `mapstructure:"exclude_patterns" yaml:"exclude_patterns" json:"exclude_patterns"`
}

// SchemaConfig selects the validation contract.
type SchemaConfig struct {
	Path     string `mapstructure:"path" yaml:"path" json:"path"`             // Empty = embedded contract
	Strict   bool   `mapstructure:"strict" yaml:"strict" json:"strict"`       // Fail instead of falling back
	Disabled bool   `mapstructure:"disabled" yaml:"disabled" json:"disabled"` // Always use fallback checks
}

// StoreConfig selects the template store backend.
type StoreConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend" json:"backend"` // json, sqlite
	DBPath  string `mapstructure:"db_path" yaml:"db_path" json:"db_path"`
}

// LogConfig for logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`    // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format" json:"format"` // text, json
	File   string `mapstructure:"file" yaml:"file" json:"file"`       // Log file path (empty = stderr)
	Color  bool   `mapstructure:"color" yaml:"color" json:"color"`    // Colorize level labels on terminals
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() *Config {
	templatesDir := "templates"

	return &Config{
		TemplatesDir: templatesDir,
		OutputDir:    "output",
		SyncRules: SyncRules{
			PreserveExisting: true,
			BackupBeforeSync: true,
			ExcludePatterns:  []string{".git", "__pycache__", "*.pyc"},
		},
		Store: StoreConfig{
			Backend: "json",
			DBPath:  filepath.Join(templatesDir, "templates.db"),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			Color:  true,
		},
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.TemplatesDir == "" {
		return errors.New("templates_dir is required")
	}

	validBackends := map[string]bool{"json": true, "sqlite": true}
	if !validBackends[c.Store.Backend] {
		return fmt.Errorf("invalid store backend: %s", c.Store.Backend)
	}

	if c.Store.Backend == "sqlite" && c.Store.DBPath == "" {
		return errors.New("store.db_path is required for the sqlite backend")
	}

	if c.Schema.Strict && c.Schema.Disabled {
		return errors.New("schema.strict and schema.disabled are mutually exclusive")
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	return nil
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.TemplatesDir}

	if c.Store.Backend == "sqlite" {
		dirs = append(dirs, filepath.Dir(c.Store.DBPath))
	}

	if c.Log.File != "" {
		dirs = append(dirs, filepath.Dir(c.Log.File))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
