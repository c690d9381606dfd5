package booking

import (
	"context"
	"errors"

	"github.com/caresched/caresched/internal/docstore"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrSlotTaken           = errors.New("slot already has an active appointment")
	ErrDailyLimit          = errors.New("patient already has an active appointment that day")
	ErrInvalidStatus       = errors.New("unknown appointment status")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrBookingInProgress   = errors.New("slot is currently being booked, please retry")
)

// Repository holds the appointment ledger as one document. All writes replace
// the full list atomically.
type Repository interface {
	LoadAll(ctx context.Context) ([]Appointment, error)
	Update(ctx context.Context, fn func(records []Appointment) ([]Appointment, error)) error
}

const documentKey = "caresched:appointments"

func NewRepository(store docstore.Store) Repository {
	return docstore.NewCollection[Appointment](store, documentKey)
}
