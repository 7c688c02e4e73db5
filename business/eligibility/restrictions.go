package eligibility

import (
	"time"

	"github.com/bonoaccess/accesscheck/business/data/access"
)

// restrictions holds the trailing identity digits barred from withdrawing on each weekday.
// Weekends are unrestricted.
var restrictions = map[time.Weekday][]int{
	time.Monday:    {1, 2},
	time.Tuesday:   {3, 4},
	time.Wednesday: {5, 6},
	time.Thursday:  {7, 8},
	time.Friday:    {9, 0},
	time.Saturday:  {},
	time.Sunday:    {},
}

// band is an inclusive range of minutes since midnight
type band struct {
	from, to int
}

// businessHours are the bands during which weekday restrictions are enforced, 07:30-11:59 and 13:00-16:30
var businessHours = []band{
	{from: 7*60 + 30, to: 11*60 + 59},
	{from: 13 * 60, to: 16*60 + 30},
}

// RestrictedDigits returns a copy of the trailing digits restricted on weekday
func RestrictedDigits(weekday time.Weekday) []int {
	return append([]int{}, restrictions[weekday]...)
}

// IsRestricted reports whether identities ending in digit are restricted on weekday
func IsRestricted(weekday time.Weekday, digit int) bool {
	for _, d := range restrictions[weekday] {
		if d == digit {
			return true
		}
	}
	return false
}

// InBusinessHours reports whether clock falls inside a restricted business hour band
func InBusinessHours(clock access.ClockTime) bool {
	minutes := clock.Minutes()
	for _, b := range businessHours {
		if minutes >= b.from && minutes <= b.to {
			return true
		}
	}
	return false
}
