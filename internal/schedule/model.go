package schedule

import (
	"time"

	"github.com/google/uuid"
)

// TimeWindow is a contiguous [Start, End) interval of clock time during which
// a provider is reachable. Both bounds are HH:MM strings.
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type DaySchedule struct {
	Available bool         `json:"available"`
	Windows   []TimeWindow `json:"windows"`
}

// WeeklySchedule maps every weekday to its availability. All seven keys are
// always present; an unavailable day carries an empty window list.
type WeeklySchedule map[time.Weekday]DaySchedule

type BlackoutCategory string

const (
	BlackoutVacation   BlackoutCategory = "vacation"
	BlackoutSick       BlackoutCategory = "sick"
	BlackoutConference BlackoutCategory = "conference"
	BlackoutOther      BlackoutCategory = "other"
)

func (c BlackoutCategory) Valid() bool {
	switch c {
	case BlackoutVacation, BlackoutSick, BlackoutConference, BlackoutOther:
		return true
	}
	return false
}

// BlackoutDate excludes a date from availability regardless of the weekly
// schedule or any override. Multiple entries may target the same date; any
// match blacks the date out.
type BlackoutDate struct {
	ID       uuid.UUID        `json:"id"`
	Date     string           `json:"date"`
	Reason   string           `json:"reason"`
	Category BlackoutCategory `json:"category"`
}

// ProviderAvailability owns everything that determines when a provider can be
// booked: the recurring weekly schedule, date-specific overrides, and blackout
// dates. One record per provider, created on first save.
type ProviderAvailability struct {
	ProviderID uuid.UUID               `json:"provider_id"`
	Weekly     WeeklySchedule          `json:"weekly"`
	Overrides  map[string][]TimeWindow `json:"overrides"`
	Blackouts  []BlackoutDate          `json:"blackouts"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

// DefaultSchedule returns the starter weekly schedule offered to a provider
// who has not configured one: Monday through Thursday with a morning and an
// afternoon window, Friday through Sunday off. Seed value only, nothing
// enforces it.
func DefaultSchedule() WeeklySchedule {
	working := DaySchedule{
		Available: true,
		Windows: []TimeWindow{
			{Start: "08:00", End: "12:00"},
			{Start: "14:00", End: "18:00"},
		},
	}

	return WeeklySchedule{
		time.Monday:    working,
		time.Tuesday:   working,
		time.Wednesday: working,
		time.Thursday:  working,
		time.Friday:    {Available: false, Windows: []TimeWindow{}},
		time.Saturday:  {Available: false, Windows: []TimeWindow{}},
		time.Sunday:    {Available: false, Windows: []TimeWindow{}},
	}
}

func emptyWeekly() WeeklySchedule {
	w := make(WeeklySchedule, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		w[d] = DaySchedule{Available: false, Windows: []TimeWindow{}}
	}
	return w
}
