package notification

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/caresched/caresched/internal/booking"
)

// Directory resolves a provider id to a display name for feed messages.
type Directory interface {
	ProviderName(ctx context.Context, providerID uuid.UUID) (string, error)
}

// NopDirectory makes messages fall back to a generic provider reference.
type NopDirectory struct{}

func (NopDirectory) ProviderName(context.Context, uuid.UUID) (string, error) { return "", nil }

// Service turns committed status transitions into patient-facing feed
// entries. Only the patient side is implemented; provider-facing feeds are a
// separate concern.
type Service struct {
	repo      Repository
	directory Directory
	logger    zerolog.Logger
}

func NewService(repo Repository, directory Directory, logger zerolog.Logger) *Service {
	if directory == nil {
		directory = NopDirectory{}
	}
	return &Service{
		repo:      repo,
		directory: directory,
		logger:    logger.With().Str("component", "notification").Logger(),
	}
}

// AppointmentStatusChanged implements booking.Notifier: it derives a message
// from the new status and appends it to the patient's feed.
func (s *Service) AppointmentStatusChanged(ctx context.Context, appt booking.Appointment, oldStatus booking.Status, actorID uuid.UUID) error {
	n := Notification{
		ID:            uuid.New(),
		UserID:        appt.PatientID,
		Role:          RolePatient,
		AppointmentID: appt.ID,
		Message:       s.message(ctx, appt),
		CreatedAt:     time.Now().UTC(),
	}

	err := s.repo.Update(ctx, func(records []Notification) ([]Notification, error) {
		return append(records, n), nil
	})
	if err != nil {
		return fmt.Errorf("append notification: %w", err)
	}

	s.logger.Debug().
		Str("appointment_id", appt.ID.String()).
		Str("from", string(oldStatus)).
		Str("to", string(appt.Status)).
		Msg("status notification appended")
	return nil
}

func (s *Service) message(ctx context.Context, appt booking.Appointment) string {
	provider, err := s.directory.ProviderName(ctx, appt.ProviderID)
	if err != nil || provider == "" {
		provider = "your provider"
	}

	when := fmt.Sprintf("%s at %s", appt.Date, appt.Time)

	switch appt.Status {
	case booking.StatusConfirmed:
		return fmt.Sprintf("Your appointment with %s on %s has been confirmed.", provider, when)
	case booking.StatusRejected:
		return fmt.Sprintf("Your appointment request with %s on %s was declined.", provider, when)
	case booking.StatusCancelled:
		return fmt.Sprintf("Your appointment with %s on %s has been cancelled.", provider, when)
	case booking.StatusCompleted:
		return fmt.Sprintf("Your appointment with %s on %s has been marked completed.", provider, when)
	default:
		return fmt.Sprintf("Your appointment with %s on %s changed status to %s.", provider, when, appt.Status)
	}
}

// ListFor returns a user's feed, newest first.
func (s *Service) ListFor(ctx context.Context, userID uuid.UUID, role Role) ([]Notification, error) {
	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load notifications: %w", err)
	}

	var result []Notification
	for _, n := range records {
		if n.UserID == userID && n.Role == role {
			result = append(result, n)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// MarkRead marks one notification read. Idempotent: marking an already-read
// entry succeeds without change.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.Update(ctx, func(records []Notification) ([]Notification, error) {
		for i := range records {
			if records[i].ID == id {
				records[i].Read = true
				return records, nil
			}
		}
		return nil, ErrNotificationNotFound
	})
}
