package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/caresched/caresched/internal/timegrid"
)

// DefaultDurationMinutes is applied when a booking request carries no
// explicit duration.
const DefaultDurationMinutes = 30

// Service is the booking ledger with its conflict guard. Every insert runs
// both invariant checks against the current ledger inside a per
// (provider, date) lock, so validation and commit form one atomic unit.
type Service struct {
	repo     Repository
	locker   Locker
	records  PatientRecords
	notifier Notifier
	logger   zerolog.Logger
}

func NewService(repo Repository, locker Locker, records PatientRecords, logger zerolog.Logger) *Service {
	if records == nil {
		records = NopPatientRecords{}
	}
	return &Service{
		repo:    repo,
		locker:  locker,
		records: records,
		logger:  logger.With().Str("component", "booking").Logger(),
	}
}

// SetNotifier wires the status-change notifier. Set after construction
// because the notifier itself needs the ledger to resolve appointments.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Create validates the candidate against the active ledger and appends it.
// The slot-uniqueness and one-per-day checks are evaluated independently;
// both must pass. The candidate keeps its caller-supplied status, defaulting
// to pending.
func (s *Service) Create(ctx context.Context, candidate Appointment) (*Appointment, error) {
	if candidate.PatientID == uuid.Nil {
		return nil, errors.New("patient id is required")
	}
	if candidate.ProviderID == uuid.Nil {
		return nil, errors.New("provider id is required")
	}
	if _, err := timegrid.ParseDate(candidate.Date); err != nil {
		return nil, err
	}
	if _, err := timegrid.ToMinutes(candidate.Time); err != nil {
		return nil, err
	}
	if candidate.DurationMinutes <= 0 {
		candidate.DurationMinutes = DefaultDurationMinutes
	}
	if candidate.Status == "" {
		candidate.Status = StatusPending
	}
	if !candidate.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, candidate.Status)
	}

	var created Appointment

	err := s.locker.WithBookingLock(ctx, candidate.ProviderID, candidate.Date, func(lockCtx context.Context) error {
		return s.repo.Update(lockCtx, func(records []Appointment) ([]Appointment, error) {
			for _, a := range records {
				if !a.Status.Active() {
					continue
				}
				if a.ProviderID == candidate.ProviderID && a.Date == candidate.Date && a.Time == candidate.Time {
					return nil, ErrSlotTaken
				}
			}

			for _, a := range records {
				if !a.Status.Active() {
					continue
				}
				if a.PatientID == candidate.PatientID && a.Date == candidate.Date {
					return nil, ErrDailyLimit
				}
			}

			now := time.Now().UTC()
			created = candidate
			created.ID = uuid.New()
			created.CreatedAt = now
			created.UpdatedAt = now

			return append(records, created), nil
		})
	})
	if err != nil {
		if errors.Is(err, ErrLockNotAcquired) {
			return nil, ErrBookingInProgress
		}
		return nil, err
	}

	s.logger.Info().
		Str("appointment_id", created.ID.String()).
		Str("provider_id", created.ProviderID.String()).
		Str("date", created.Date).
		Str("time", created.Time).
		Msg("appointment created")

	if err := s.records.OnAppointmentCreated(ctx, created); err != nil {
		s.logger.Warn().Err(err).
			Str("appointment_id", created.ID.String()).
			Msg("patient records hook failed on create")
	}

	return &created, nil
}

// UpdateStatus moves an appointment through its lifecycle, enforcing the
// transition table. On success it stamps UpdatedAt, replaces the notes when a
// note is supplied, and informs the notifier.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus Status, actorID uuid.UUID, note string) (*Appointment, error) {
	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, newStatus)
	}

	var updated Appointment
	var oldStatus Status

	err := s.repo.Update(ctx, func(records []Appointment) ([]Appointment, error) {
		idx := -1
		for i := range records {
			if records[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, ErrAppointmentNotFound
		}

		oldStatus = records[idx].Status
		if !oldStatus.CanTransitionTo(newStatus) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, oldStatus, newStatus)
		}

		records[idx].Status = newStatus
		if note != "" {
			records[idx].Notes = note
		}
		records[idx].UpdatedAt = time.Now().UTC()

		updated = records[idx]
		return records, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("appointment_id", id.String()).
		Str("from", string(oldStatus)).
		Str("to", string(newStatus)).
		Msg("appointment status updated")

	if s.notifier != nil {
		if err := s.notifier.AppointmentStatusChanged(ctx, updated, oldStatus, actorID); err != nil {
			s.logger.Warn().Err(err).
				Str("appointment_id", id.String()).
				Msg("status notification failed")
		}
	}

	if newStatus == StatusCompleted {
		if err := s.records.OnAppointmentCompleted(ctx, updated); err != nil {
			s.logger.Warn().Err(err).
				Str("appointment_id", id.String()).
				Msg("patient records hook failed on complete")
		}
	}

	return &updated, nil
}

// Cancel withdraws an appointment, recording the reason in its notes.
func (s *Service) Cancel(ctx context.Context, id, actorID uuid.UUID, reason string) (*Appointment, error) {
	return s.UpdateStatus(ctx, id, StatusCancelled, actorID, reason)
}

// Complete closes out a confirmed appointment with an optional visit note.
func (s *Service) Complete(ctx context.Context, id, actorID uuid.UUID, note string) (*Appointment, error) {
	return s.UpdateStatus(ctx, id, StatusCompleted, actorID, note)
}

// Get returns one appointment by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	for i := range records {
		if records[i].ID == id {
			return &records[i], nil
		}
	}
	return nil, ErrAppointmentNotFound
}

// ListByPatient returns a patient's appointments, most recent date first.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error) {
	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	var result []Appointment
	for _, a := range records {
		if a.PatientID == patientID {
			result = append(result, a)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date > result[j].Date
		}
		return result[i].Time > result[j].Time
	})
	return result, nil
}

// ListByProviderDate returns a provider's appointments for one date in
// chronological order.
func (s *Service) ListByProviderDate(ctx context.Context, providerID uuid.UUID, date string) ([]Appointment, error) {
	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	var result []Appointment
	for _, a := range records {
		if a.ProviderID == providerID && a.Date == date {
			result = append(result, a)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Time < result[j].Time })
	return result, nil
}

// ConfirmedTimes returns the start times of confirmed appointments for a
// provider and date. Pending bookings do not reserve their slot, so the
// availability resolver subtracts only these.
func (s *Service) ConfirmedTimes(ctx context.Context, providerID uuid.UUID, date string) ([]string, error) {
	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	var times []string
	for _, a := range records {
		if a.ProviderID == providerID && a.Date == date && a.Status == StatusConfirmed {
			times = append(times, a.Time)
		}
	}
	return times, nil
}
