package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore keeps each document in a documents(key, version, data) row and
// guards saves with an optimistic version check in the UPDATE predicate.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// Migrate creates the documents table if it does not exist yet.
func (s *PgStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			key        text PRIMARY KEY,
			version    bigint NOT NULL,
			data       jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate documents table: %w", err)
	}
	return nil
}

func (s *PgStore) Load(ctx context.Context, key string) ([]byte, int64, error) {
	var data []byte
	var version int64

	err := s.pool.QueryRow(ctx, `
		SELECT data, version
		FROM documents
		WHERE key = $1
	`, key).Scan(&data, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, &PersistenceError{Op: "postgres load", Err: err}
	}

	return data, version, nil
}

func (s *PgStore) Save(ctx context.Context, key string, data []byte, expectedVersion int64) (int64, error) {
	if expectedVersion == 0 {
		ct, err := s.pool.Exec(ctx, `
			INSERT INTO documents (key, version, data, updated_at)
			VALUES ($1, 1, $2, now())
			ON CONFLICT (key) DO NOTHING
		`, key, data)
		if err != nil {
			return 0, &PersistenceError{Op: "postgres save", Err: err}
		}
		if ct.RowsAffected() == 0 {
			return 0, fmt.Errorf("save %q: %w", key, ErrVersionConflict)
		}
		return 1, nil
	}

	ct, err := s.pool.Exec(ctx, `
		UPDATE documents
		SET data = $2,
		    version = version + 1,
		    updated_at = now()
		WHERE key = $1
		  AND version = $3
	`, key, data, expectedVersion)
	if err != nil {
		return 0, &PersistenceError{Op: "postgres save", Err: err}
	}
	if ct.RowsAffected() == 0 {
		return 0, fmt.Errorf("save %q: %w", key, ErrVersionConflict)
	}

	return expectedVersion + 1, nil
}
