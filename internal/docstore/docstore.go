package docstore

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrVersionConflict means the document changed between Load and Save.
	// Callers retry the whole read-modify-write cycle.
	ErrVersionConflict = errors.New("document version conflict")
)

// Store holds one serialized document per key with an optimistic version
// stamp. Save with expectedVersion 0 creates the key and fails if it already
// exists; any other value must match the version returned by the last Load.
type Store interface {
	// Load returns the document and its current version. A missing key is
	// not an error: it returns nil data and version 0.
	Load(ctx context.Context, key string) (data []byte, version int64, err error)

	// Save replaces the document, guarded by expectedVersion. Returns the
	// new version, or ErrVersionConflict if someone else wrote first.
	Save(ctx context.Context, key string, data []byte, expectedVersion int64) (int64, error)
}

// PersistenceError wraps a storage failure. The failed operation left the
// stored document untouched, so the caller may retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
