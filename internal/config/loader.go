package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading from multiple sources.
type Loader struct {
	configPath string
	envPrefix  string
	v          *viper.Viper
}

// NewLoader creates a config loader. An empty path searches the default
// locations and silently falls back to defaults when none exists.
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
		envPrefix:  "REPOSEED",
		v:          viper.New(),
	}
}

// Load reads configuration from file and environment.
func (l *Loader) Load() (*Config, error) {
	l.setDefaults(DefaultConfig())

	if l.configPath != "" {
		l.v.SetConfigFile(l.configPath)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	} else {
		l.v.SetConfigName("reposeed")
		for _, dir := range l.defaultDirs() {
			l.v.AddConfigPath(dir)
		}
		if err := l.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("load config file %s: %w", l.v.ConfigFileUsed(), err)
			}
		}
	}

	// Override with environment variables, e.g. REPOSEED_LOG_LEVEL
	l.v.SetEnvPrefix(l.envPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	cfg.Store.Backend = strings.ToLower(cfg.Store.Backend)

	// Validate final config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ConfigFileUsed returns the file the last Load read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// defaultDirs returns default config file locations.
func (l *Loader) defaultDirs() []string {
	dirs := []string{"."}

	if homeDir, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs,
			filepath.Join(homeDir, ".config", "reposeed"),
			filepath.Join(homeDir, ".reposeed"),
		)
	}

	return dirs
}

func (l *Loader) setDefaults(cfg *Config) {
	l.v.SetDefault("templates_dir", cfg.TemplatesDir)
	l.v.SetDefault("output_dir", cfg.OutputDir)

	l.v.SetDefault("sync_rules.preserve_existing", cfg.SyncRules.PreserveExisting)
	l.v.SetDefault("sync_rules.backup_before_sync", cfg.SyncRules.BackupBeforeSync)
	l.v.SetDefault("sync_rules.exclude_patterns", cfg.SyncRules.ExcludePatterns)

	l.v.SetDefault("schema.path", cfg.Schema.Path)
	l.v.SetDefault("schema.strict", cfg.Schema.Strict)
	l.v.SetDefault("schema.disabled", cfg.Schema.Disabled)

	l.v.SetDefault("store.backend", cfg.Store.Backend)
	l.v.SetDefault("store.db_path", cfg.Store.DBPath)

	l.v.SetDefault("log.level", cfg.Log.Level)
	l.v.SetDefault("log.format", cfg.Log.Format)
	l.v.SetDefault("log.file", cfg.Log.File)
	l.v.SetDefault("log.color", cfg.Log.Color)
}

// SaveExample writes an example config file.
func SaveExample(path string) error {
	cfg := DefaultConfig()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	example := "# reposeed configuration file\n" +
		"# Environment variables override these settings using the REPOSEED_ prefix,\n" +
		"# for example: REPOSEED_LOG_LEVEL=debug or REPOSEED_SYNC_RULES_PRESERVE_EXISTING=false\n\n" +
		string(data)

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(example), 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}
