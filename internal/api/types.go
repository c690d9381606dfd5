package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/caresched/caresched/internal/schedule"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type ValidationErrorResponse struct {
	Error      string   `json:"error"`
	Violations []string `json:"violations"`
}

type DayScheduleRequest struct {
	Available bool                  `json:"available"`
	Windows   []schedule.TimeWindow `json:"windows"`
}

// ReplaceScheduleRequest carries a full weekly schedule keyed by lowercase
// weekday name; all seven days must be present.
type ReplaceScheduleRequest struct {
	Weekly map[string]DayScheduleRequest `json:"weekly"`
}

type SetOverrideRequest struct {
	Windows []schedule.TimeWindow `json:"windows"`
}

type AddBlackoutRequest struct {
	Date     string `json:"date"`
	Reason   string `json:"reason"`
	Category string `json:"category"`
}

type CreateAppointmentRequest struct {
	PatientID       string  `json:"patient_id"`
	ProviderID      string  `json:"provider_id"`
	Date            string  `json:"date"`
	Time            string  `json:"time"`
	DurationMinutes int     `json:"duration_minutes"`
	Type            string  `json:"type"`
	Status          string  `json:"status"`
	Notes           string  `json:"notes"`
	Fee             float64 `json:"fee"`
}

type UpdateStatusRequest struct {
	Status  string `json:"status"`
	ActorID string `json:"actor_id"`
	Note    string `json:"note"`
}

type SlotsResponse struct {
	ProviderID string   `json:"provider_id"`
	Date       string   `json:"date"`
	Slots      []string `json:"slots"`
}

type AvailableResponse struct {
	ProviderID string `json:"provider_id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Available  bool   `json:"available"`
}

var weekdayByName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func (r ReplaceScheduleRequest) toWeekly() (schedule.WeeklySchedule, error) {
	weekly := make(schedule.WeeklySchedule, 7)
	for name, day := range r.Weekly {
		wd, ok := weekdayByName[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		windows := day.Windows
		if windows == nil {
			windows = []schedule.TimeWindow{}
		}
		weekly[wd] = schedule.DaySchedule{Available: day.Available, Windows: windows}
	}
	return weekly, nil
}

func weeklyToJSON(weekly schedule.WeeklySchedule) map[string]DayScheduleRequest {
	out := make(map[string]DayScheduleRequest, len(weekly))
	for wd, day := range weekly {
		out[strings.ToLower(wd.String())] = DayScheduleRequest{
			Available: day.Available,
			Windows:   day.Windows,
		}
	}
	return out
}
