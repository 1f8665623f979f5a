// Package archive stores pre-compression packet originals in SQLite so
// compressed packets can be decompressed later. It plugs into the packet
// factory as a capture hook and into Decompress as a fetch capability.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/mountainvillage/packets/pkg/packet"
)

// ErrNotFound is returned when no original exists for an (id, checksum)
// pair.
type ErrNotFound struct {
	ID       string
	Checksum string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("original not found: %s (checksum %s)", e.ID, e.Checksum)
}

// Store is a SQLite-backed archive of packet originals keyed by
// (original id, content checksum).
type Store struct {
	db *sql.DB
}

// Open opens (or creates) an archive database. The path can be a file
// path or ":memory:" for an in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	s := &Store{db: db}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate archive database: %w", err)
	}

	return s, nil
}

// migrate creates the necessary tables if they don't exist.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS originals (
		id TEXT NOT NULL,
		checksum TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id, checksum)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Capture stores a packet's original content. Re-capturing the same
// (id, checksum) pair is a no-op: content addressing makes the insert
// idempotent.
func (s *Store) Capture(ctx context.Context, id, checksum string, content map[string]any) error {
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal original content: %w", err)
	}

	query := `INSERT OR IGNORE INTO originals (id, checksum, content) VALUES (?, ?, ?)`

	if _, err := s.db.ExecContext(ctx, query, id, checksum, string(contentJSON)); err != nil {
		return fmt.Errorf("failed to insert original: %w", err)
	}

	return nil
}

// Fetch retrieves an original by id and checksum.
func (s *Store) Fetch(ctx context.Context, id, checksum string) (map[string]any, error) {
	query := `SELECT content FROM originals WHERE id = ? AND checksum = ?`

	var contentJSON string
	err := s.db.QueryRowContext(ctx, query, id, checksum).Scan(&contentJSON)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound{ID: id, Checksum: checksum}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan original: %w", err)
	}

	var content map[string]any
	if err := json.Unmarshal([]byte(contentJSON), &content); err != nil {
		return nil, fmt.Errorf("failed to unmarshal original content: %w", err)
	}

	return content, nil
}

// CaptureFunc adapts the store to the factory's capture hook.
func (s *Store) CaptureFunc() packet.CaptureFunc {
	return func(id, checksum string, content map[string]any) error {
		return s.Capture(context.Background(), id, checksum, content)
	}
}

// FetchFunc adapts the store to the decompression fetch capability.
func (s *Store) FetchFunc() packet.FetchFunc {
	return func(originalID, originalChecksum string) (map[string]any, error) {
		return s.Fetch(context.Background(), originalID, originalChecksum)
	}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
