package schedule

import (
	"context"
	"errors"

	"github.com/caresched/caresched/internal/docstore"
)

var (
	ErrProviderNotFound = errors.New("provider availability not found")
	ErrBlackoutNotFound = errors.New("blackout date not found")
)

// Repository holds the full provider-availability record list as one
// document. Mutations go through Update so the list is replaced atomically.
type Repository interface {
	LoadAll(ctx context.Context) ([]ProviderAvailability, error)
	Update(ctx context.Context, fn func([]ProviderAvailability) ([]ProviderAvailability, error)) error
}

const documentKey = "caresched:availability"

func NewRepository(store docstore.Store) Repository {
	return docstore.NewCollection[ProviderAvailability](store, documentKey)
}
