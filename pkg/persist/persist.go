// Package persist writes emitted packets to a date-partitioned directory
// tree with atomic renames, plus an append-only lookup index.
//
// Layout under the storage root:
//
//	index.jsonl            append-only, one JSON object per line
//	YYYY-MM-DD/{id}.json   one file per persisted packet
//
// The data files are the source of truth. The index is a convenience
// cache: a crash between the data write and the index append leaves an
// orphaned-but-valid data file, which is accepted.
package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mountainvillage/packets/pkg/packet"
)

const indexFile = "index.jsonl"

const dateLayout = "2006-01-02"

// Error indicates a failed durable write. Temp artifacts are cleaned up
// before it is returned; in-memory buffers are not rolled back.
type Error struct {
	ID  string
	Err error
}

func (e Error) Error() string {
	return fmt.Sprintf("failed to persist packet %s: %v", e.ID, e.Err)
}

func (e Error) Unwrap() error {
	return e.Err
}

// IndexEntry is one line of index.jsonl.
type IndexEntry struct {
	ID       string          `json:"id"`
	Type     packet.Type     `json:"type"`
	Priority packet.Priority `json:"priority"`
	Created  string          `json:"created"`
	Path     string          `json:"path"`
}

// FileStore persists packets under a single storage root.
type FileStore struct {
	root   string
	logger *slog.Logger
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithLogger attaches a logger for non-fatal events such as absorbed
// index-write failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *FileStore) {
		s.logger = l
	}
}

// NewFileStore creates the storage root (and an empty index file) if
// needed and returns a store rooted there.
func NewFileStore(root string, opts ...Option) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root %s: %w", root, err)
	}

	s := &FileStore{root: root}
	for _, opt := range opts {
		opt(s)
	}

	path := filepath.Join(root, indexFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("initializing index %s: %w", path, err)
	}
	f.Close()

	return s, nil
}

// Root returns the storage root directory.
func (s *FileStore) Root() string {
	return s.root
}

// Persist writes the packet to today's date directory using a temp file
// and an atomic rename, then appends an index entry. Index-write failure
// is absorbed; any other failure removes the temp file and is returned
// as a persist Error.
func (s *FileStore) Persist(p *packet.Packet) (string, error) {
	data, err := packet.Marshal(p)
	if err != nil {
		return "", Error{ID: p.ID, Err: err}
	}

	dateDir := filepath.Join(s.root, time.Now().UTC().Format(dateLayout))
	if err := os.MkdirAll(dateDir, 0o755); err != nil {
		return "", Error{ID: p.ID, Err: err}
	}

	tmp := filepath.Join(dateDir, "."+p.ID+".json.tmp")
	final := filepath.Join(dateDir, p.ID+".json")

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return "", Error{ID: p.ID, Err: err}
	}

	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return "", Error{ID: p.ID, Err: err}
	}

	// The data file is durable at this point. Index failure only costs
	// lookup convenience, so it is the one absorbed failure in the system.
	if err := s.appendIndex(p, final); err != nil && s.logger != nil {
		s.logger.Debug("index write failed", "packet", p.ID, "error", err)
	}

	return final, nil
}

func (s *FileStore) appendIndex(p *packet.Packet, path string) error {
	entry, err := json.Marshal(IndexEntry{
		ID:       p.ID,
		Type:     p.Type,
		Priority: p.Priority,
		Created:  p.Metadata.Created,
		Path:     path,
	})
	if err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(s.root, indexFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(append(entry, '\n')); err != nil {
		return err
	}

	return nil
}

// Index reads all index entries in append order. Unparsable lines are
// skipped: the index is best-effort by design.
func (s *FileStore) Index() ([]IndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(s.root, indexFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading index: %w", err)
	}

	var entries []IndexEntry
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var e IndexEntry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}

	return entries, nil
}

// Load reads a persisted packet back from a data file path recorded in
// the index.
func (s *FileStore) Load(path string) (*packet.Packet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading packet file: %w", err)
	}
	return packet.Unmarshal(data)
}
