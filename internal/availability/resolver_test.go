package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caresched/caresched/internal/booking"
	"github.com/caresched/caresched/internal/docstore"
	"github.com/caresched/caresched/internal/schedule"
)

const (
	monday = "2025-06-23"
	sunday = "2025-06-29"
)

type fixture struct {
	schedules *schedule.Service
	bookings  *booking.Service
	resolver  *Resolver
	provider  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := docstore.NewMemoryStore()
	schedules := schedule.NewService(schedule.NewRepository(store), zerolog.Nop())
	bookings := booking.NewService(booking.NewRepository(store), booking.NewLocalLocker(), nil, zerolog.Nop())

	return &fixture{
		schedules: schedules,
		bookings:  bookings,
		resolver:  NewResolver(schedules, bookings, zerolog.Nop()),
		provider:  uuid.New(),
	}
}

func (f *fixture) setDefaultSchedule(t *testing.T) {
	t.Helper()
	_, err := f.schedules.ReplaceSchedule(context.Background(), f.provider, schedule.DefaultSchedule())
	require.NoError(t, err)
}

func TestResolveSlotsScheduleNotSet(t *testing.T) {
	f := newFixture(t)

	_, err := f.resolver.ResolveSlots(context.Background(), f.provider, monday, 30)
	assert.ErrorIs(t, err, ErrScheduleNotSet)
}

func TestResolveSlotsMondayMorning(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Monday 08:00-12:00 only, 30 minute slots.
	weekly := schedule.DefaultSchedule()
	for d := range weekly {
		weekly[d] = schedule.DaySchedule{Available: false, Windows: []schedule.TimeWindow{}}
	}
	weekly[time.Monday] = schedule.DaySchedule{
		Available: true,
		Windows:   []schedule.TimeWindow{{Start: "08:00", End: "12:00"}},
	}
	_, err := f.schedules.ReplaceSchedule(ctx, f.provider, weekly)
	require.NoError(t, err)

	slots, err := f.resolver.ResolveSlots(ctx, f.provider, monday, 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"08:00", "08:30", "09:00", "09:30", "10:00", "10:30", "11:00", "11:30"}, slots)

	// Booking 09:00 as confirmed removes exactly that slot.
	_, err = f.bookings.Create(ctx, booking.Appointment{
		PatientID:  uuid.New(),
		ProviderID: f.provider,
		Date:       monday,
		Time:       "09:00",
		Status:     booking.StatusConfirmed,
	})
	require.NoError(t, err)

	slots, err = f.resolver.ResolveSlots(ctx, f.provider, monday, 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"08:00", "08:30", "09:30", "10:00", "10:30", "11:00", "11:30"}, slots)
}

func TestResolveSlotsPendingDoesNotReserve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setDefaultSchedule(t)

	_, err := f.bookings.Create(ctx, booking.Appointment{
		PatientID:  uuid.New(),
		ProviderID: f.provider,
		Date:       monday,
		Time:       "08:00",
		Status:     booking.StatusPending,
	})
	require.NoError(t, err)

	slots, err := f.resolver.ResolveSlots(ctx, f.provider, monday, 30)
	require.NoError(t, err)
	assert.Contains(t, slots, "08:00")
}

func TestResolveSlotsBlackoutWinsOverEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setDefaultSchedule(t)

	// Even an explicit override loses to a blackout.
	err := f.schedules.SetOverride(ctx, f.provider, monday, []schedule.TimeWindow{{Start: "09:00", End: "11:00"}})
	require.NoError(t, err)
	_, err = f.schedules.AddBlackout(ctx, f.provider, monday, "out sick", schedule.BlackoutSick)
	require.NoError(t, err)

	slots, err := f.resolver.ResolveSlots(ctx, f.provider, monday, 30)
	require.NoError(t, err)
	assert.Empty(t, slots)

	available, err := f.resolver.IsAvailable(ctx, f.provider, monday, "09:00")
	require.NoError(t, err)
	assert.False(t, available)
}

func TestResolveSlotsOverrideSupersedesWeekly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setDefaultSchedule(t)

	// Sunday is unavailable in the weekly schedule, but an override opens it.
	err := f.schedules.SetOverride(ctx, f.provider, sunday, []schedule.TimeWindow{{Start: "09:00", End: "10:00"}})
	require.NoError(t, err)

	slots, err := f.resolver.ResolveSlots(ctx, f.provider, sunday, 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30"}, slots)
}

func TestResolveSlotsUnavailableWeekday(t *testing.T) {
	f := newFixture(t)
	f.setDefaultSchedule(t)

	slots, err := f.resolver.ResolveSlots(context.Background(), f.provider, sunday, 30)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestResolveSlotsNoTrailingPartialSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 09:00-10:15 with 30 minute slots: 09:45 would run past the window end
	// and must not be offered.
	err := f.schedules.SetOverride(ctx, f.provider, monday, []schedule.TimeWindow{{Start: "09:00", End: "10:15"}})
	require.NoError(t, err)

	slots, err := f.resolver.ResolveSlots(ctx, f.provider, monday, 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30"}, slots)
}

func TestResolveSlotsCustomDuration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.schedules.SetOverride(ctx, f.provider, monday, []schedule.TimeWindow{{Start: "09:00", End: "12:00"}})
	require.NoError(t, err)

	slots, err := f.resolver.ResolveSlots(ctx, f.provider, monday, 60)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00", "11:00"}, slots)
}

func TestResolveSlotsCancelledBookingFreesSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setDefaultSchedule(t)

	appt, err := f.bookings.Create(ctx, booking.Appointment{
		PatientID:  uuid.New(),
		ProviderID: f.provider,
		Date:       monday,
		Time:       "08:00",
		Status:     booking.StatusConfirmed,
	})
	require.NoError(t, err)

	slots, err := f.resolver.ResolveSlots(ctx, f.provider, monday, 30)
	require.NoError(t, err)
	assert.NotContains(t, slots, "08:00")

	_, err = f.bookings.Cancel(ctx, appt.ID, appt.PatientID, "cannot make it")
	require.NoError(t, err)

	slots, err = f.resolver.ResolveSlots(ctx, f.provider, monday, 30)
	require.NoError(t, err)
	assert.Contains(t, slots, "08:00")
}

func TestIsAvailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setDefaultSchedule(t)

	tests := []struct {
		date  string
		clock string
		want  bool
	}{
		{monday, "08:00", true},
		{monday, "11:59", true},
		{monday, "12:00", false}, // window end is exclusive
		{monday, "13:00", false}, // between windows
		{monday, "14:00", true},
		{sunday, "09:00", false}, // weekly unavailable
	}

	for _, tt := range tests {
		got, err := f.resolver.IsAvailable(ctx, f.provider, tt.date, tt.clock)
		require.NoError(t, err, "%s %s", tt.date, tt.clock)
		assert.Equal(t, tt.want, got, "%s %s", tt.date, tt.clock)
	}
}

func TestIsAvailableIgnoresBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setDefaultSchedule(t)

	_, err := f.bookings.Create(ctx, booking.Appointment{
		PatientID:  uuid.New(),
		ProviderID: f.provider,
		Date:       monday,
		Time:       "08:00",
		Status:     booking.StatusConfirmed,
	})
	require.NoError(t, err)

	// The predicate answers "could this slot exist", not "is it free".
	available, err := f.resolver.IsAvailable(ctx, f.provider, monday, "08:00")
	require.NoError(t, err)
	assert.True(t, available)
}
