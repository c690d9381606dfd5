package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caresched/caresched/internal/timegrid"
)

// MinWindowMinutes is the narrowest window a provider may configure.
const MinWindowMinutes = 30

// ValidationError collects every violation found in a window list so callers
// can surface the full list at once instead of fixing one problem per round.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid time windows: " + strings.Join(e.Violations, "; ")
}

// ValidateWindows checks that every window parses, starts before it ends, is
// at least MinWindowMinutes wide, and that no two windows overlap. It returns
// nil when the list is clean, otherwise a *ValidationError with all
// violations.
func ValidateWindows(windows []TimeWindow) error {
	var violations []string

	type span struct {
		start, end int
		ok         bool
	}
	spans := make([]span, len(windows))

	for i, w := range windows {
		start, err := timegrid.ToMinutes(w.Start)
		if err != nil {
			violations = append(violations, fmt.Sprintf("window %d: %v", i+1, err))
			continue
		}
		end, err := timegrid.ToMinutes(w.End)
		if err != nil {
			violations = append(violations, fmt.Sprintf("window %d: %v", i+1, err))
			continue
		}

		if start >= end {
			violations = append(violations, fmt.Sprintf("window %d: start %s must be before end %s", i+1, w.Start, w.End))
			continue
		}
		if end-start < MinWindowMinutes {
			violations = append(violations, fmt.Sprintf("window %d: %s-%s is shorter than %d minutes", i+1, w.Start, w.End, MinWindowMinutes))
		}

		spans[i] = span{start: start, end: end, ok: true}
	}

	for i := range spans {
		if !spans[i].ok {
			continue
		}
		for j := i + 1; j < len(spans); j++ {
			if !spans[j].ok {
				continue
			}
			if spans[i].start < spans[j].end && spans[j].start < spans[i].end {
				violations = append(violations, fmt.Sprintf("windows %d and %d overlap (%s-%s, %s-%s)",
					i+1, j+1, windows[i].Start, windows[i].End, windows[j].Start, windows[j].End))
			}
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// ValidateWeekly checks a full weekly schedule: all seven weekdays present,
// unavailable days carry no windows, and each day's windows pass
// ValidateWindows.
func ValidateWeekly(weekly WeeklySchedule) error {
	var violations []string

	for d := time.Sunday; d <= time.Saturday; d++ {
		day, ok := weekly[d]
		if !ok {
			violations = append(violations, fmt.Sprintf("%s: missing", strings.ToLower(d.String())))
			continue
		}

		if !day.Available {
			if len(day.Windows) > 0 {
				violations = append(violations, fmt.Sprintf("%s: unavailable day must not have windows", strings.ToLower(d.String())))
			}
			continue
		}

		if err := ValidateWindows(day.Windows); err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				for _, v := range verr.Violations {
					violations = append(violations, fmt.Sprintf("%s: %s", strings.ToLower(d.String()), v))
				}
			} else {
				violations = append(violations, fmt.Sprintf("%s: %v", strings.ToLower(d.String()), err))
			}
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}
