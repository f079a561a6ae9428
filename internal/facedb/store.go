package facedb

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/renameio"
)

// storeVersion is the current on-disk format version. Bump when the payload
// shape changes and add a migration branch in Load.
const storeVersion = 1

// ErrCorruptStore is returned by Load when the store file exists but cannot
// be decoded. The file is left untouched so it can be inspected or recovered.
var ErrCorruptStore = errors.New("corrupt face store")

// ErrUnsupportedVersion is returned by Load when the store file has a format
// version this build does not know how to read.
var ErrUnsupportedVersion = errors.New("unsupported face store version")

// Snapshot is a point-in-time copy of the index contents: the embedding
// sequence, the parallel worker-id and enrollment-time sequences, and the
// per-worker metadata map.
type Snapshot struct {
	Embeddings []Embedding
	WorkerIDs  []int64
	EnrolledAt []time.Time
	Metadata   map[int64]*WorkerMetadata
	SavedAt    time.Time
}

// storePayload is the gob wire format.
type storePayload struct {
	Version    int
	SavedAt    time.Time
	Embeddings []Embedding
	WorkerIDs  []int64
	EnrolledAt []time.Time
	Metadata   map[int64]*WorkerMetadata
}

// Store persists index snapshots to a single file.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the store file location.
func (s *Store) Path() string {
	return s.path
}

// Save writes the snapshot to disk. The payload is written to a temporary
// file and moved into place in one step, so a concurrent Load (or a crash
// mid-write) never observes a half-written store.
func (s *Store) Save(snap *Snapshot) error {
	payload := storePayload{
		Version:    storeVersion,
		SavedAt:    time.Now(),
		Embeddings: snap.Embeddings,
		WorkerIDs:  snap.WorkerIDs,
		EnrolledAt: snap.EnrolledAt,
		Metadata:   snap.Metadata,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&payload); err != nil {
		return fmt.Errorf("encoding face store: %w", err)
	}

	if err := renameio.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing face store %s: %w", s.path, err)
	}
	return nil
}

// Load reads the store file back into a snapshot. A missing file is not an
// error: it returns (nil, nil) and the caller starts with an empty index.
// A file that exists but cannot be decoded returns ErrCorruptStore (or
// ErrUnsupportedVersion for a future format); the file is never overwritten
// here so a recoverable store is not lost to a fresh empty save.
func (s *Store) Load() (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading face store %s: %w", s.path, err)
	}

	var payload storePayload
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptStore, s.path, err)
	}

	if payload.Version != storeVersion {
		return nil, fmt.Errorf("%w: got version %d, want %d", ErrUnsupportedVersion, payload.Version, storeVersion)
	}

	// The embedding and worker-id sequences must stay in lock-step; a store
	// that breaks that is unusable.
	if len(payload.Embeddings) != len(payload.WorkerIDs) {
		return nil, fmt.Errorf("%w: %d embeddings vs %d worker ids", ErrCorruptStore, len(payload.Embeddings), len(payload.WorkerIDs))
	}

	snap := &Snapshot{
		Embeddings: payload.Embeddings,
		WorkerIDs:  payload.WorkerIDs,
		EnrolledAt: payload.EnrolledAt,
		Metadata:   payload.Metadata,
		SavedAt:    payload.SavedAt,
	}
	if snap.Metadata == nil {
		snap.Metadata = make(map[int64]*WorkerMetadata)
	}
	return snap, nil
}
