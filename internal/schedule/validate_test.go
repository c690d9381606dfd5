package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWindowsClean(t *testing.T) {
	err := ValidateWindows([]TimeWindow{
		{Start: "08:00", End: "12:00"},
		{Start: "14:00", End: "18:00"},
	})
	assert.NoError(t, err)
}

func TestValidateWindowsReportsAllViolations(t *testing.T) {
	err := ValidateWindows([]TimeWindow{
		{Start: "12:00", End: "08:00"}, // start after end
		{Start: "09:00", End: "09:15"}, // too narrow
		{Start: "10:00", End: "11:00"},
		{Start: "10:30", End: "11:30"}, // overlaps previous
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Violations, 3)
}

func TestValidateWindowsOverlap(t *testing.T) {
	tests := []struct {
		name    string
		windows []TimeWindow
		overlap bool
	}{
		{"touching windows are fine", []TimeWindow{{Start: "08:00", End: "10:00"}, {Start: "10:00", End: "12:00"}}, false},
		{"contained window", []TimeWindow{{Start: "08:00", End: "12:00"}, {Start: "09:00", End: "10:00"}}, true},
		{"partial overlap", []TimeWindow{{Start: "08:00", End: "10:00"}, {Start: "09:30", End: "11:00"}}, true},
		{"identical windows", []TimeWindow{{Start: "08:00", End: "10:00"}, {Start: "08:00", End: "10:00"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWindows(tt.windows)
			if tt.overlap {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateWindowsMinimumWidth(t *testing.T) {
	assert.NoError(t, ValidateWindows([]TimeWindow{{Start: "08:00", End: "08:30"}}))
	assert.Error(t, ValidateWindows([]TimeWindow{{Start: "08:00", End: "08:29"}}))
}

func TestValidateWindowsMalformedClock(t *testing.T) {
	err := ValidateWindows([]TimeWindow{{Start: "8am", End: "noon"}})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Violations)
}

func TestValidateWeekly(t *testing.T) {
	require.NoError(t, ValidateWeekly(DefaultSchedule()))

	missing := DefaultSchedule()
	delete(missing, time.Wednesday)
	assert.Error(t, ValidateWeekly(missing))

	inconsistent := DefaultSchedule()
	inconsistent[time.Friday] = DaySchedule{
		Available: false,
		Windows:   []TimeWindow{{Start: "08:00", End: "10:00"}},
	}
	assert.Error(t, ValidateWeekly(inconsistent))
}

func TestDefaultSchedule(t *testing.T) {
	weekly := DefaultSchedule()
	require.Len(t, weekly, 7)

	for _, d := range []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday} {
		assert.True(t, weekly[d].Available, d.String())
		assert.Len(t, weekly[d].Windows, 2, d.String())
	}
	for _, d := range []time.Weekday{time.Friday, time.Saturday, time.Sunday} {
		assert.False(t, weekly[d].Available, d.String())
		assert.Empty(t, weekly[d].Windows, d.String())
	}
}
