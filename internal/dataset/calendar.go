package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tidewater-labs/oceanstat/internal/ncio"
)

// Calendar identifies the date arithmetic of a model time axis.
type Calendar int

// Supported calendars.
const (
	CalendarGregorian Calendar = iota
	CalendarNoLeap
)

const (
	timeVarName = "time"

	daysPerNoLeapYear = 365
	hoursPerDay       = 24
	minutesPerDay     = 24 * 60
	secondsPerDay     = 24 * 60 * 60

	monthsPerYear  = 12
	maxDaysInMonth = 31
)

// noLeapMonthStart is the day of year each month begins on in a 365-day
// calendar, zero-based.
var noLeapMonthStart = [monthsPerYear]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

// Sentinel errors for time decoding.
var (
	// ErrTimeUnits indicates a time units string this package cannot decode.
	ErrTimeUnits = errors.New("unsupported time units")

	// ErrNoTimeAxis indicates a variable whose leading axis is not the
	// file's time coordinate.
	ErrNoTimeAxis = errors.New("variable has no time axis")
)

// ParseCalendar maps a CF calendar attribute to a Calendar. Unknown values
// fall back to gregorian.
func ParseCalendar(attr string) Calendar {
	switch strings.ToLower(attr) {
	case "noleap", "365_day":
		return CalendarNoLeap
	default:
		return CalendarGregorian
	}
}

// TimeAxis decodes CF-style numeric time values into calendar dates.
type TimeAxis struct {
	Calendar Calendar
	Values   []float64

	unitDays  float64
	baseYear  int
	baseMonth time.Month
	baseDay   int
}

// NewTimeAxis parses a units string like "days since 1850-01-01 00:00:00"
// and binds it to raw axis values.
func NewTimeAxis(units, calendar string, values []float64) (*TimeAxis, error) {
	fields := strings.Fields(units)
	if len(fields) < 3 || fields[1] != "since" {
		return nil, fmt.Errorf("%w: %q", ErrTimeUnits, units)
	}

	var unitDays float64

	switch strings.ToLower(fields[0]) {
	case "days", "day":
		unitDays = 1
	case "hours", "hour":
		unitDays = 1.0 / hoursPerDay
	case "minutes", "minute":
		unitDays = 1.0 / minutesPerDay
	case "seconds", "second":
		unitDays = 1.0 / secondsPerDay
	default:
		return nil, fmt.Errorf("%w: %q", ErrTimeUnits, units)
	}

	year, month, day, err := parseBaseDate(fields[2])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrTimeUnits, units)
	}

	return &TimeAxis{
		Calendar:  ParseCalendar(calendar),
		Values:    values,
		unitDays:  unitDays,
		baseYear:  year,
		baseMonth: month,
		baseDay:   day,
	}, nil
}

// TimeAxisFromFile reads the time coordinate of an open file.
func TimeAxisFromFile(f *ncio.File) (*TimeAxis, error) {
	values, err := f.Floats1D(timeVarName)
	if err != nil {
		return nil, err
	}

	units := f.AttrString(timeVarName, "units")
	calendar := f.AttrString(timeVarName, "calendar")

	return NewTimeAxis(units, calendar, values)
}

// Len returns the number of records on the axis.
func (ax *TimeAxis) Len() int {
	return len(ax.Values)
}

// Date returns the calendar year and month of record i.
func (ax *TimeAxis) Date(i int) (int, time.Month) {
	days := int(math.Floor(ax.Values[i] * ax.unitDays))

	if ax.Calendar == CalendarNoLeap {
		return noLeapDate(ax.baseYear, ax.baseMonth, ax.baseDay, days)
	}

	t := time.Date(ax.baseYear, ax.baseMonth, ax.baseDay, 0, 0, 0, 0, time.UTC)
	t = t.AddDate(0, 0, days)

	return t.Year(), t.Month()
}

// noLeapDate advances a date by offset days on a fixed 365-day calendar.
func noLeapDate(year int, month time.Month, day, offset int) (int, time.Month) {
	total := year*daysPerNoLeapYear + noLeapMonthStart[month-1] + day - 1 + offset

	y := total / daysPerNoLeapYear
	doy := total % daysPerNoLeapYear

	if doy < 0 {
		doy += daysPerNoLeapYear
		y--
	}

	m := time.January

	for i, start := range noLeapMonthStart {
		if doy >= start {
			m = time.Month(i + 1)
		}
	}

	return y, m
}

// parseBaseDate splits a YYYY-MM-DD reference date.
func parseBaseDate(s string) (int, time.Month, int, error) {
	parts := strings.SplitN(s, "-", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("malformed date %q", s)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, err
	}

	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, err
	}

	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, err
	}

	if month < 1 || month > monthsPerYear || day < 1 || day > maxDaysInMonth {
		return 0, 0, 0, fmt.Errorf("date %q out of range", s)
	}

	return year, time.Month(month), day, nil
}
