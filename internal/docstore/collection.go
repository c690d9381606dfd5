package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// casRetries bounds how often an Update re-runs after losing a version race.
const casRetries = 3

// Collection exposes one stored document as a typed record list. Every write
// is all-or-nothing: the full updated list is committed under a version check,
// or nothing changes.
type Collection[T any] struct {
	store Store
	key   string
}

func NewCollection[T any](store Store, key string) *Collection[T] {
	return &Collection[T]{store: store, key: key}
}

// LoadAll returns the current record list. A document that was never written
// yields an empty list.
func (c *Collection[T]) LoadAll(ctx context.Context) ([]T, error) {
	data, _, err := c.store.Load(ctx, c.key)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &PersistenceError{Op: "decode " + c.key, Err: err}
	}
	return records, nil
}

// Update runs fn against a fresh copy of the list and commits the result with
// a compare-and-swap on the document version. On a version conflict the whole
// cycle re-runs, so fn must be side-effect free until the final commit.
func (c *Collection[T]) Update(ctx context.Context, fn func(records []T) ([]T, error)) error {
	var lastErr error

	for attempt := 0; attempt < casRetries; attempt++ {
		data, version, err := c.store.Load(ctx, c.key)
		if err != nil {
			return err
		}

		var records []T
		if data != nil {
			if err := json.Unmarshal(data, &records); err != nil {
				return &PersistenceError{Op: "decode " + c.key, Err: err}
			}
		}

		updated, err := fn(records)
		if err != nil {
			return err
		}

		encoded, err := json.Marshal(updated)
		if err != nil {
			return &PersistenceError{Op: "encode " + c.key, Err: err}
		}

		if _, err := c.store.Save(ctx, c.key, encoded, version); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				lastErr = err
				continue
			}
			return err
		}
		return nil
	}

	return fmt.Errorf("update %q: retries exhausted: %w", c.key, lastErr)
}
