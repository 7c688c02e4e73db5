package access

import (
	"fmt"
	"regexp"
	"strconv"
)

var clockTimePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// ClockTime is an immutable 24 hour time of day with minute precision, 00:00 to 23:59
type ClockTime struct {
	hour   int
	minute int
}

// NewClockTime builds a ClockTime, returning a ValidationError when out of range
func NewClockTime(hour, minute int) (ClockTime, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return ClockTime{}, newValidationError("time", fmt.Sprintf("%02d:%02d", hour, minute),
			"hour must be 00-23 and minute 00-59")
	}
	return ClockTime{hour: hour, minute: minute}, nil
}

// ParseClockTime parses a time in HH:MM format, for example 08:31, 14:22, 00:01
func ParseClockTime(value string) (ClockTime, error) {
	parts := clockTimePattern.FindStringSubmatch(value)
	if parts == nil {
		return ClockTime{}, newValidationError("time", value, "expected format HH:MM, for example 08:31, 14:22, 00:01")
	}
	hour, _ := strconv.Atoi(parts[1])
	minute, _ := strconv.Atoi(parts[2])
	return ClockTime{hour: hour, minute: minute}, nil
}

func (c ClockTime) Hour() int {
	return c.hour
}

func (c ClockTime) Minute() int {
	return c.minute
}

// Minutes returns minutes since midnight
func (c ClockTime) Minutes() int {
	return c.hour*60 + c.minute
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.hour, c.minute)
}

func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
