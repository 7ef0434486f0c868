// Package store persists the per-issue key/value mappings (notes and
// scheduled dates). Every write replaces the whole mapping.
package store

import (
	"context"
	"io"
	"path/filepath"

	"github.com/pkg/errors"
)

// Buckets used by the dashboard.
const (
	Notes     = "notes"
	Scheduled = "scheduled"
)

// Backends accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Store reads and replaces one mapping of issue key to string value.
type Store interface {
	// Load returns the whole mapping. A store that was never written
	// returns an empty, non-nil map.
	Load(ctx context.Context) (map[string]string, error)
	// Replace overwrites the whole mapping with m.
	Replace(ctx context.Context, m map[string]string) error
}

// Set is the pair of stores the dashboard needs.
type Set struct {
	Notes     Store
	Scheduled Store
	closer    io.Closer
}

// Close releases the backend, if it holds anything.
func (s *Set) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Open builds the notes and scheduled stores under dataDir.
func Open(backend, dataDir string) (*Set, error) {
	switch backend {
	case "", BackendFile:
		return &Set{
			Notes:     NewFileStore(filepath.Join(dataDir, Notes+".json")),
			Scheduled: NewFileStore(filepath.Join(dataDir, Scheduled+".json")),
		}, nil
	case BackendSQLite:
		db, err := OpenSQLite(dataDir)
		if err != nil {
			return nil, err
		}
		return &Set{
			Notes:     db.Bucket(Notes),
			Scheduled: db.Bucket(Scheduled),
			closer:    db,
		}, nil
	}
	return nil, errors.Errorf("unknown store backend %q", backend)
}
