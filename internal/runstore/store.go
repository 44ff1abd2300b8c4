// Package runstore keeps a SQLite registry of pipeline runs so results can
// be listed and compared across executions.
package runstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Run is one registry row: the identity and outcome of a pipeline run.
type Run struct {
	ID           string
	CreatedAt    string
	Country      string
	Subject      string
	Theme        string
	BestModel    string
	Criterion    string
	Target       string
	NRows        int
	ArtifactPath string
	MetadataPath string
}

// Store wraps the registry database.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	country TEXT NOT NULL,
	subject TEXT NOT NULL,
	theme TEXT NOT NULL,
	best_model TEXT NOT NULL,
	criterion TEXT NOT NULL,
	target TEXT NOT NULL,
	n_rows INTEGER NOT NULL,
	artifact_path TEXT NOT NULL DEFAULT '',
	metadata_path TEXT NOT NULL DEFAULT ''
);
`

// Open creates the registry file (and parent directory) if needed and
// bootstraps the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir registry dir: %w", err)
		}
	}
	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Insert records one completed run.
func (s *Store) Insert(r Run) error {
	if r.CreatedAt == "" {
		r.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (id, created_at, country, subject, theme, best_model, criterion, target, n_rows, artifact_path, metadata_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt, r.Country, r.Subject, r.Theme,
		r.BestModel, r.Criterion, r.Target, r.NRows, r.ArtifactPath, r.MetadataPath,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", r.ID, err)
	}
	return nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, created_at, country, subject, theme, best_model, criterion, target, n_rows, artifact_path, metadata_path
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Country, &r.Subject, &r.Theme,
			&r.BestModel, &r.Criterion, &r.Target, &r.NRows, &r.ArtifactPath, &r.MetadataPath); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}
