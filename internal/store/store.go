// Package store persists versioned XML snapshots of the drawing in an
// embedded SQLite database, giving the editor autosave and
// open-most-recent without an external service.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/vectorpad/vectorpad/internal/typeid"
)

// ErrNoSnapshot reports an empty store.
var ErrNoSnapshot = errors.New("no snapshot")

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
    id         TEXT PRIMARY KEY,
    version    INTEGER NOT NULL,
    document   TEXT NOT NULL,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_version ON snapshots (version);
`

// Snapshot is one saved document version.
type Snapshot struct {
	ID        string
	Version   int64
	Document  string // XML save document
	CreatedAt string
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the snapshot database at dbPath and
// applies the schema.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save appends a new snapshot version holding the XML document and
// returns it.
func (s *Store) Save(ctx context.Context, document string) (*Snapshot, error) {
	var current sql.NullInt64
	row := s.db.QueryRowContext(ctx, `SELECT MAX(version) FROM snapshots`)
	if err := row.Scan(&current); err != nil {
		return nil, fmt.Errorf("read current version: %w", err)
	}

	snap := &Snapshot{
		ID:        typeid.NewSnapshotID(),
		Version:   current.Int64 + 1,
		Document:  document,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO snapshots (id, version, document, created_at)
        VALUES (?, ?, ?, ?)
    `, snap.ID, snap.Version, snap.Document, snap.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}
	return snap, nil
}

// Latest returns the highest-version snapshot, or ErrNoSnapshot.
func (s *Store) Latest(ctx context.Context) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, version, document, created_at
        FROM snapshots
        ORDER BY version DESC
        LIMIT 1
    `)

	var snap Snapshot
	if err := row.Scan(&snap.ID, &snap.Version, &snap.Document, &snap.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("read latest snapshot: %w", err)
	}
	return &snap, nil
}

// List returns snapshot metadata, newest first, without documents.
func (s *Store) List(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, version, created_at
        FROM snapshots
        ORDER BY version DESC
    `)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.Version, &snap.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}
