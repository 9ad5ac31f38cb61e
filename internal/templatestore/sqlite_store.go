package templatestore

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/TheMichaelB/reposeed/internal/events"
	"github.com/TheMichaelB/reposeed/internal/models"
)

// CurrentSchemaVersion of the SQLite layout.
const CurrentSchemaVersion = 1

// SQLiteStore keeps templates as JSON documents in a SQLite table.
type SQLiteStore struct {
	db     *sql.DB
	logger *events.Logger
}

// NewSQLiteStore creates a SQLite template store.
func NewSQLiteStore(dbPath string, logger *events.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &SQLiteStore{
		db:     db,
		logger: logger.WithField("component", "sqlite_template_store"),
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	return store, nil
}

// initialize creates tables.
func (s *SQLiteStore) initialize() error {
	schema := `
    CREATE TABLE IF NOT EXISTS templates (
        name TEXT PRIMARY KEY,
        data TEXT NOT NULL,
        file_count INTEGER NOT NULL DEFAULT 0,
        created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
        updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS schema_info (
        version INTEGER PRIMARY KEY
    );
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	if _, err := s.db.Exec("INSERT OR IGNORE INTO schema_info (version) VALUES (?)", CurrentSchemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return nil
}

// Save upserts a template.
func (s *SQLiteStore) Save(name string, ds *models.DirectoryStructure) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	data, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("marshal template: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"template": name,
		"files":    ds.FileCount(),
	}).Debug("Saving template to SQLite")

	_, err = s.db.Exec(`
        INSERT INTO templates (name, data, file_count)
        VALUES (?, ?, ?)
        ON CONFLICT(name) DO UPDATE SET
            data = excluded.data,
            file_count = excluded.file_count,
            updated_at = CURRENT_TIMESTAMP
    `, name, string(data), ds.FileCount())
	if err != nil {
		return fmt.Errorf("save template: %w", err)
	}

	return nil
}

// Load retrieves a template.
func (s *SQLiteStore) Load(name string) (*models.DirectoryStructure, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	s.logger.WithField("template", name).Debug("Loading template from SQLite")

	var data string
	err := s.db.QueryRow("SELECT data FROM templates WHERE name = ?", name).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("query template: %w", err)
	}

	var ds models.DirectoryStructure
	if err := json.Unmarshal([]byte(data), &ds); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateCorrupt, name, err)
	}
	return &ds, nil
}

// List returns all template names.
func (s *SQLiteStore) List() ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM templates ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan template name: %w", err)
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// Delete removes a template.
func (s *SQLiteStore) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	s.logger.WithField("template", name).Info("Deleting template from SQLite")

	res, err := s.db.Exec("DELETE FROM templates WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if n == 0 {
		return notFound(name)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
