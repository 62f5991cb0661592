package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCalendar(t *testing.T) {
	t.Parallel()

	assert.Equal(t, CalendarNoLeap, ParseCalendar("noleap"))
	assert.Equal(t, CalendarNoLeap, ParseCalendar("NOLEAP"))
	assert.Equal(t, CalendarNoLeap, ParseCalendar("365_day"))
	assert.Equal(t, CalendarGregorian, ParseCalendar("gregorian"))
	assert.Equal(t, CalendarGregorian, ParseCalendar("standard"))
	assert.Equal(t, CalendarGregorian, ParseCalendar(""))
}

func TestTimeAxisDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		units     string
		calendar  string
		value     float64
		wantYear  int
		wantMonth time.Month
	}{
		{
			name:      "gregorian_counts_leap_day",
			units:     "days since 2000-01-01",
			calendar:  "gregorian",
			value:     59,
			wantYear:  2000,
			wantMonth: time.February,
		},
		{
			name:      "noleap_skips_leap_day",
			units:     "days since 2000-01-01",
			calendar:  "noleap",
			value:     59,
			wantYear:  2000,
			wantMonth: time.March,
		},
		{
			name:      "noleap_mid_month_next_year",
			units:     "days since 0001-01-01 00:00:00",
			calendar:  "noleap",
			value:     365 + 45,
			wantYear:  2,
			wantMonth: time.February,
		},
		{
			name:      "gregorian_before_base",
			units:     "days since 2000-01-01",
			calendar:  "standard",
			value:     -1,
			wantYear:  1999,
			wantMonth: time.December,
		},
		{
			name:      "noleap_before_base",
			units:     "days since 2000-01-01",
			calendar:  "noleap",
			value:     -1,
			wantYear:  1999,
			wantMonth: time.December,
		},
		{
			name:      "hours_unit",
			units:     "hours since 1900-01-01 00:00:00",
			calendar:  "gregorian",
			value:     31 * 24,
			wantYear:  1900,
			wantMonth: time.February,
		},
		{
			name:      "seconds_unit",
			units:     "seconds since 1900-01-01",
			calendar:  "noleap",
			value:     86400 * 31,
			wantYear:  1900,
			wantMonth: time.February,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ax, err := NewTimeAxis(tc.units, tc.calendar, []float64{tc.value})
			require.NoError(t, err)
			require.Equal(t, 1, ax.Len())

			year, month := ax.Date(0)
			assert.Equal(t, tc.wantYear, year)
			assert.Equal(t, tc.wantMonth, month)
		})
	}
}

func TestNewTimeAxisRejectsBadUnits(t *testing.T) {
	t.Parallel()

	bad := []string{
		"",
		"days",
		"days until 2000-01-01",
		"fortnights since 2000-01-01",
		"days since 2000/01/01",
		"days since 2000-13-01",
		"days since 2000-01-40",
	}

	for _, units := range bad {
		_, err := NewTimeAxis(units, "noleap", nil)
		require.ErrorIs(t, err, ErrTimeUnits, "units %q", units)
	}
}
