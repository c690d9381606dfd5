package timegrid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidFormat = errors.New("invalid clock time, expected HH:MM")

const dateLayout = "2006-01-02"

// ToMinutes parses an HH:MM clock string into the minute offset from midnight.
func ToMinutes(clock string) (int, error) {
	hh, mm, ok := strings.Cut(clock, ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, clock)
	}

	hours, err := strconv.Atoi(hh)
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, clock)
	}

	minutes, err := strconv.Atoi(mm)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, clock)
	}

	return hours*60 + minutes, nil
}

// ToClock formats a minute offset as a zero-padded HH:MM string.
// Offsets outside 0..1439 are not normalized; callers keep values in range.
func ToClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate parses an ISO YYYY-MM-DD wall-clock date.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}

// Weekday returns the weekday for an ISO YYYY-MM-DD date.
func Weekday(date string) (time.Weekday, error) {
	t, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	return t.Weekday(), nil
}

// FormatDate renders t as an ISO YYYY-MM-DD date.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
