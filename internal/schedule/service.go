package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/caresched/caresched/internal/timegrid"
)

// Service manages provider availability records: the weekly schedule,
// date-specific overrides, and blackout dates.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "schedule").Logger(),
	}
}

// Get returns the availability record for a provider, or ErrProviderNotFound
// if the provider never configured one.
func (s *Service) Get(ctx context.Context, providerID uuid.UUID) (*ProviderAvailability, error) {
	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load availability records: %w", err)
	}

	for i := range records {
		if records[i].ProviderID == providerID {
			return &records[i], nil
		}
	}
	return nil, ErrProviderNotFound
}

// ReplaceSchedule swaps the provider's full weekly schedule, creating the
// availability record on first save. Windows must be validated by the caller.
func (s *Service) ReplaceSchedule(ctx context.Context, providerID uuid.UUID, weekly WeeklySchedule) (*ProviderAvailability, error) {
	var saved ProviderAvailability

	err := s.mutate(ctx, providerID, func(rec *ProviderAvailability) error {
		rec.Weekly = weekly
		saved = *rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("provider_id", providerID.String()).Msg("weekly schedule replaced")
	return &saved, nil
}

// SetOverride replaces the window list for one date. An empty list removes
// the override, reverting the date to the weekly schedule; an override is
// never stored empty. Windows are not validated here, callers run
// ValidateWindows first.
func (s *Service) SetOverride(ctx context.Context, providerID uuid.UUID, date string, windows []TimeWindow) error {
	if _, err := timegrid.ParseDate(date); err != nil {
		return err
	}

	err := s.mutate(ctx, providerID, func(rec *ProviderAvailability) error {
		if len(windows) == 0 {
			delete(rec.Overrides, date)
			return nil
		}
		rec.Overrides[date] = windows
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("provider_id", providerID.String()).
		Str("date", date).
		Int("windows", len(windows)).
		Msg("calendar override set")
	return nil
}

// GetOverride returns the override windows for a date. The second result is
// false when no override exists.
func (s *Service) GetOverride(ctx context.Context, providerID uuid.UUID, date string) ([]TimeWindow, bool, error) {
	rec, err := s.Get(ctx, providerID)
	if err != nil {
		return nil, false, err
	}

	windows, ok := rec.Overrides[date]
	return windows, ok, nil
}

// HasOverride reports whether a non-empty override exists for the date.
func (s *Service) HasOverride(ctx context.Context, providerID uuid.UUID, date string) (bool, error) {
	_, ok, err := s.GetOverride(ctx, providerID, date)
	return ok, err
}

// AddBlackout appends a blackout entry for the date. Entries are not
// deduplicated: independent blackout reasons may coexist on the same date.
func (s *Service) AddBlackout(ctx context.Context, providerID uuid.UUID, date, reason string, category BlackoutCategory) (*BlackoutDate, error) {
	if _, err := timegrid.ParseDate(date); err != nil {
		return nil, err
	}
	if !category.Valid() {
		return nil, &ValidationError{Violations: []string{fmt.Sprintf("unknown blackout category %q", category)}}
	}

	blackout := BlackoutDate{
		ID:       uuid.New(),
		Date:     date,
		Reason:   reason,
		Category: category,
	}

	err := s.mutate(ctx, providerID, func(rec *ProviderAvailability) error {
		rec.Blackouts = append(rec.Blackouts, blackout)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("provider_id", providerID.String()).
		Str("date", date).
		Str("category", string(category)).
		Msg("blackout date added")
	return &blackout, nil
}

// RemoveBlackout deletes a blackout entry by id. ErrBlackoutNotFound when the
// id does not match any entry for the provider.
func (s *Service) RemoveBlackout(ctx context.Context, providerID, blackoutID uuid.UUID) error {
	return s.mutate(ctx, providerID, func(rec *ProviderAvailability) error {
		for i, b := range rec.Blackouts {
			if b.ID == blackoutID {
				rec.Blackouts = append(rec.Blackouts[:i], rec.Blackouts[i+1:]...)
				return nil
			}
		}
		return ErrBlackoutNotFound
	})
}

// IsBlackedOut reports whether any blackout entry matches the date. A
// provider without an availability record is not considered blacked out.
func (s *Service) IsBlackedOut(ctx context.Context, providerID uuid.UUID, date string) (bool, error) {
	rec, err := s.Get(ctx, providerID)
	if err != nil {
		return false, err
	}

	for _, b := range rec.Blackouts {
		if b.Date == date {
			return true, nil
		}
	}
	return false, nil
}

// mutate applies fn to the provider's record inside one atomic list update,
// creating the record on first save.
func (s *Service) mutate(ctx context.Context, providerID uuid.UUID, fn func(rec *ProviderAvailability) error) error {
	return s.repo.Update(ctx, func(records []ProviderAvailability) ([]ProviderAvailability, error) {
		now := time.Now().UTC()

		idx := -1
		for i := range records {
			if records[i].ProviderID == providerID {
				idx = i
				break
			}
		}

		if idx < 0 {
			records = append(records, ProviderAvailability{
				ProviderID: providerID,
				Weekly:     emptyWeekly(),
				Overrides:  make(map[string][]TimeWindow),
				Blackouts:  []BlackoutDate{},
				CreatedAt:  now,
			})
			idx = len(records) - 1
		}

		rec := &records[idx]
		if rec.Overrides == nil {
			rec.Overrides = make(map[string][]TimeWindow)
		}

		if err := fn(rec); err != nil {
			return nil, err
		}

		rec.UpdatedAt = now
		return records, nil
	})
}
