package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/caresched/caresched/internal/schedule"
	"github.com/caresched/caresched/internal/timegrid"
)

// ErrScheduleNotSet distinguishes a provider who never configured a schedule
// from one whose day is simply full: callers surface the two differently.
var ErrScheduleNotSet = errors.New("provider has not configured a schedule")

// DefaultSlotMinutes is the slot duration used when the caller passes 0.
const DefaultSlotMinutes = 30

// ScheduleSource yields the availability record the resolver merges.
type ScheduleSource interface {
	Get(ctx context.Context, providerID uuid.UUID) (*schedule.ProviderAvailability, error)
}

// BookingSource yields the confirmed start times that already occupy slots.
type BookingSource interface {
	ConfirmedTimes(ctx context.Context, providerID uuid.UUID, date string) ([]string, error)
}

// Resolver derives the concrete bookable slots for a provider and date by
// reconciling blackout dates, calendar overrides, the weekly schedule, and
// the booking ledger. It holds no state of its own; every call re-reads both
// sources.
type Resolver struct {
	schedules ScheduleSource
	bookings  BookingSource
	logger    zerolog.Logger
}

func NewResolver(schedules ScheduleSource, bookings BookingSource, logger zerolog.Logger) *Resolver {
	return &Resolver{
		schedules: schedules,
		bookings:  bookings,
		logger:    logger.With().Str("component", "availability").Logger(),
	}
}

// ResolveSlots returns the ordered bookable slot start times for the date.
//
// Precedence, short-circuiting: blackout beats everything, an override beats
// the weekly schedule, and confirmed bookings are subtracted last. A slot is
// emitted only when it fits entirely inside its window; no trailing partial
// slot is offered.
func (r *Resolver) ResolveSlots(ctx context.Context, providerID uuid.UUID, date string, slotMinutes int) ([]string, error) {
	if slotMinutes <= 0 {
		slotMinutes = DefaultSlotMinutes
	}

	rec, err := r.schedules.Get(ctx, providerID)
	if err != nil {
		if errors.Is(err, schedule.ErrProviderNotFound) {
			return nil, ErrScheduleNotSet
		}
		return nil, fmt.Errorf("load provider schedule: %w", err)
	}

	windows, err := effectiveWindows(rec, date)
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return []string{}, nil
	}

	slots := make(map[int]struct{})
	for _, w := range windows {
		start, err := timegrid.ToMinutes(w.Start)
		if err != nil {
			return nil, fmt.Errorf("window start: %w", err)
		}
		end, err := timegrid.ToMinutes(w.End)
		if err != nil {
			return nil, fmt.Errorf("window end: %w", err)
		}

		for m := start; m+slotMinutes <= end; m += slotMinutes {
			slots[m] = struct{}{}
		}
	}

	booked, err := r.bookings.ConfirmedTimes(ctx, providerID, date)
	if err != nil {
		return nil, fmt.Errorf("load confirmed bookings: %w", err)
	}
	for _, t := range booked {
		m, err := timegrid.ToMinutes(t)
		if err != nil {
			// A malformed time in the ledger cannot match any slot.
			r.logger.Warn().Str("time", t).Msg("skipping malformed booked time")
			continue
		}
		delete(slots, m)
	}

	result := make([]string, 0, len(slots))
	for m := range slots {
		result = append(result, timegrid.ToClock(m))
	}
	sort.Strings(result)

	return result, nil
}

// IsAvailable reports whether the clock time falls inside the provider's
// effective windows for the date, [start, end). It deliberately ignores
// existing bookings: it answers "could this slot exist", not "is it free".
func (r *Resolver) IsAvailable(ctx context.Context, providerID uuid.UUID, date, clock string) (bool, error) {
	t, err := timegrid.ToMinutes(clock)
	if err != nil {
		return false, err
	}

	rec, err := r.schedules.Get(ctx, providerID)
	if err != nil {
		if errors.Is(err, schedule.ErrProviderNotFound) {
			return false, ErrScheduleNotSet
		}
		return false, fmt.Errorf("load provider schedule: %w", err)
	}

	windows, err := effectiveWindows(rec, date)
	if err != nil {
		return false, err
	}

	for _, w := range windows {
		start, err := timegrid.ToMinutes(w.Start)
		if err != nil {
			continue
		}
		end, err := timegrid.ToMinutes(w.End)
		if err != nil {
			continue
		}
		if t >= start && t < end {
			return true, nil
		}
	}
	return false, nil
}

// effectiveWindows applies the precedence rules: a blacked-out date has no
// windows at all, a date with an override uses exactly the override windows,
// and otherwise the weekly schedule for the date's weekday applies.
func effectiveWindows(rec *schedule.ProviderAvailability, date string) ([]schedule.TimeWindow, error) {
	for _, b := range rec.Blackouts {
		if b.Date == date {
			return nil, nil
		}
	}

	if windows, ok := rec.Overrides[date]; ok && len(windows) > 0 {
		return windows, nil
	}

	weekday, err := timegrid.Weekday(date)
	if err != nil {
		return nil, err
	}

	day, ok := rec.Weekly[weekday]
	if !ok || !day.Available {
		return nil, nil
	}
	return day.Windows, nil
}
