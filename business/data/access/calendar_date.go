package access

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// CalendarDateLayout is the layout accepted by ParseCalendarDate, e.g. 2021/04/02
const CalendarDateLayout = "2006/01/02"

var calendarDatePattern = regexp.MustCompile(`^([0-9]{4})/([0-9]{2})/([0-9]{2})$`)

// CalendarDate is an immutable Gregorian date without time of day or location.
// The zero value is not a valid date, use NewCalendarDate, DateOf or ParseCalendarDate.
type CalendarDate struct {
	year  int
	month time.Month
	day   int
}

// NewCalendarDate builds a CalendarDate, returning a ValidationError if year, month and day
// do not form a real date
func NewCalendarDate(year int, month time.Month, day int) (CalendarDate, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return CalendarDate{}, newValidationError("date",
			fmt.Sprintf("%04d/%02d/%02d", year, int(month), day), "not a calendar date")
	}
	return CalendarDate{year: year, month: month, day: day}, nil
}

// DateOf returns the CalendarDate of t in t's own location
func DateOf(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{year: y, month: m, day: d}
}

// ParseCalendarDate parses a date in YYYY/MM/DD format
func ParseCalendarDate(value string) (CalendarDate, error) {
	parts := calendarDatePattern.FindStringSubmatch(value)
	if parts == nil {
		return CalendarDate{}, newValidationError("date", value, "expected format YYYY/MM/DD, for example 2021/04/02")
	}
	year, _ := strconv.Atoi(parts[1])
	month, _ := strconv.Atoi(parts[2])
	day, _ := strconv.Atoi(parts[3])
	date, err := NewCalendarDate(year, time.Month(month), day)
	if err != nil {
		return CalendarDate{}, newValidationError("date", value, "not a calendar date")
	}
	return date, nil
}

func (d CalendarDate) Year() int {
	return d.year
}

func (d CalendarDate) Month() time.Month {
	return d.month
}

func (d CalendarDate) Day() int {
	return d.day
}

// Time returns midnight UTC of the date
func (d CalendarDate) Time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

func (d CalendarDate) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// AddDays returns the date n days after d, or before it when n is negative
func (d CalendarDate) AddDays(n int) CalendarDate {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Before reports whether d is earlier than other
func (d CalendarDate) Before(other CalendarDate) bool {
	return d.Time().Before(other.Time())
}

func (d CalendarDate) IsZero() bool {
	return d == CalendarDate{}
}

// String formats the date as YYYY/MM/DD
func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d/%02d/%02d", d.year, int(d.month), d.day)
}

// MarshalText implements encoding.TextMarshaler so dates can be used as json values and map keys
func (d CalendarDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
