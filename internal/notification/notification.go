package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/caresched/caresched/internal/docstore"
)

var ErrNotificationNotFound = errors.New("notification not found")

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// Notification is one entry in a user's feed.
type Notification struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Role          Role      `json:"role"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	Message       string    `json:"message"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"created_at"`
}

// Repository holds every user's notification feed as one document.
type Repository interface {
	LoadAll(ctx context.Context) ([]Notification, error)
	Update(ctx context.Context, fn func(records []Notification) ([]Notification, error)) error
}

const documentKey = "caresched:notifications"

func NewRepository(store docstore.Store) Repository {
	return docstore.NewCollection[Notification](store, documentKey)
}
