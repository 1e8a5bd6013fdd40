// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a local SQLite ledger of every PDF the client has
// saved, whether it came from a conversion or a download.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/rapid-converter/pkg/types"
)

// defaultLimit caps List when the caller passes zero.
const defaultLimit = 20

// timeLayout is fixed-width so saved_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages the history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger at path, creating parent directories
// and the schema as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS saves (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			path TEXT NOT NULL,
			source TEXT NOT NULL,
			bytes INTEGER NOT NULL,
			pages INTEGER NOT NULL DEFAULT 0,
			encrypted INTEGER NOT NULL DEFAULT 0,
			saved_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_saves_saved_at ON saves(saved_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts rec. Recording the same ID twice replaces the row.
func (s *Store) Record(ctx context.Context, rec types.SaveRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO saves (id, name, path, source, bytes, pages, encrypted, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.Path, string(rec.Source), rec.Bytes, rec.Pages,
		rec.Encrypted, rec.SavedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("recording save %s: %w", rec.Name, err)
	}
	return nil
}

// List returns up to limit records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]types.SaveRecord, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, path, source, bytes, pages, encrypted, saved_at
		 FROM saves ORDER BY saved_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []types.SaveRecord
	for rows.Next() {
		var (
			rec     types.SaveRecord
			source  string
			savedAt string
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Path, &source, &rec.Bytes,
			&rec.Pages, &rec.Encrypted, &savedAt); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		rec.Source = types.SaveSource(source)
		if t, err := time.Parse(timeLayout, savedAt); err == nil {
			rec.SavedAt = t
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ExportYAML writes records to w as a YAML sequence.
func ExportYAML(w io.Writer, recs []types.SaveRecord) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(recs); err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	return enc.Close()
}
