package holiday

import (
	"context"

	"github.com/bonoaccess/accesscheck/business/data/access"
)

// Lookup answers whether a date is a holiday
type Lookup interface {
	IsHoliday(ctx context.Context, date access.CalendarDate) (bool, error)
}

// CalendarLookup answers from the locally computed holiday calendar of a region
type CalendarLookup struct {
	region Region
}

// NewCalendarLookup creates a CalendarLookup for region
func NewCalendarLookup(region Region) *CalendarLookup {
	return &CalendarLookup{region: region}
}

// IsHoliday recomputes the holidays of date's year and reports whether date is one of them. Never fails.
func (c *CalendarLookup) IsHoliday(_ context.Context, date access.CalendarDate) (bool, error) {
	_, found := HolidaysForYear(date.Year(), c.region)[date]
	return found, nil
}

func (c *CalendarLookup) Region() Region {
	return c.region
}
