// Package holiday computes Ecuador's public holidays, including the holidays whose observed
// date is bridged towards a long weekend, and answers whether a date is a holiday
package holiday

import (
	"sort"
	"time"

	"github.com/bonoaccess/accesscheck/business/data/access"
	"github.com/rickar/cal/v2"
)

// lastUnbridgedYear is the last year movable holidays were observed on their nominal date,
// the LOSEP reform (R.O. 906) bridges them from 2016 onwards
const lastUnbridgedYear = 2015

// bridgeRules moves a holiday towards the nearest long weekend
var bridgeRules = []cal.AltDay{
	{Day: time.Saturday, Offset: -1},
	{Day: time.Tuesday, Offset: -1},
	{Day: time.Sunday, Offset: 1},
	{Day: time.Wednesday, Offset: 2},
	{Day: time.Thursday, Offset: 1},
}

// dayOfTheDeadRules bridges November 2nd together with November 3rd, keyed on November 2nd's weekday.
// Nov 2 Sat/Nov 3 Sun moves back to Nov 1, Nov 3 Thu or Mon moves forward to Nov 4, otherwise unchanged.
var dayOfTheDeadRules = []cal.AltDay{
	{Day: time.Saturday, Offset: -1},
	{Day: time.Wednesday, Offset: 2},
	{Day: time.Sunday, Offset: 2},
}

var (
	NewYear = fixed("New Year's Day", time.January, 1)

	CarnivalMonday  = easterOffset("Carnival Monday", -48)
	CarnivalTuesday = easterOffset("Carnival Tuesday", -47)
	GoodFriday      = easterOffset("Good Friday", -2)
	EasterSunday    = easterOffset("Easter Sunday", 0)

	LabourDay = bridged("Labour Day", time.May, 1)

	SantoDomingoCantonization = fixed("Cantonization of Santo Domingo", time.July, 3)
	PatronSaintFestivities    = fixed("Patron Saint Festivities", time.August, 2)

	FirstCryOfIndependence = bridged("First Cry of Independence", time.August, 10)
	GuayaquilIndependence  = bridged("Independence of Guayaquil", time.October, 9)

	DayOfTheDead = &cal.Holiday{
		Name:     "Day of the Dead",
		Type:     cal.ObservancePublic,
		Month:    time.November,
		Day:      2,
		Observed: dayOfTheDeadRules,
		Func:     cal.CalcDayOfMonth,
	}

	SantoDomingoProvincialization = fixed("Provincialization of Santo Domingo", time.November, 6)

	// FoundationOfQuito is only observed in RegionPichincha
	FoundationOfQuito = bridged("Foundation of Quito", time.December, 6)

	Christmas = fixed("Christmas Day", time.December, 25)
)

// national holidays observed in every region
var national = concat(
	[]*cal.Holiday{NewYear, CarnivalMonday, CarnivalTuesday, GoodFriday, EasterSunday},
	LabourDay,
	[]*cal.Holiday{SantoDomingoCantonization, PatronSaintFestivities},
	FirstCryOfIndependence,
	GuayaquilIndependence,
	[]*cal.Holiday{DayOfTheDead, SantoDomingoProvincialization, Christmas},
)

// regional holidays added to the national ones
var regional = map[Region][]*cal.Holiday{
	RegionPichincha: FoundationOfQuito,
}

// Observance is a holiday as observed in a given year
type Observance struct {
	// Date is the day the holiday is observed
	Date access.CalendarDate `json:"date"`
	// Nominal is the day the holiday commemorates, differs from Date when bridged
	Nominal access.CalendarDate `json:"nominal"`
	Name    string              `json:"name"`
}

// Bridged reports whether the observed date differs from the nominal one
func (o Observance) Bridged() bool {
	return o.Date != o.Nominal
}

// Observances returns the holidays observed in year by region, ordered by observed date.
// Holidays are computed from scratch on every call.
func Observances(year int, region Region) []Observance {
	var result []Observance
	for _, h := range definitions(region) {
		if !activeIn(h, year) {
			continue
		}
		actual, observed := h.Calc(year)
		result = append(result, Observance{
			Date:    access.DateOf(observed),
			Nominal: access.DateOf(actual),
			Name:    h.Name,
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result
}

// HolidaysForYear maps each date observed as a holiday in year by region to its name.
// Holidays sharing an observed date have their names joined.
// Entries belong to the year they were requested for even when bridging crosses into another year.
func HolidaysForYear(year int, region Region) map[access.CalendarDate]string {
	result := make(map[access.CalendarDate]string)
	for _, o := range Observances(year, region) {
		if name, present := result[o.Date]; present {
			result[o.Date] = name + " / " + o.Name
			continue
		}
		result[o.Date] = o.Name
	}
	return result
}

// definitions returns the holiday definitions in effect for region
func definitions(region Region) []*cal.Holiday {
	return concat(national, regional[region])
}

// activeIn reports whether h applies to year, mirroring cal.Holiday's StartYear and EndYear bounds
func activeIn(h *cal.Holiday, year int) bool {
	return (h.StartYear == 0 || year >= h.StartYear) && (h.EndYear == 0 || year <= h.EndYear)
}

func fixed(name string, month time.Month, day int) *cal.Holiday {
	return &cal.Holiday{Name: name, Type: cal.ObservancePublic, Month: month, Day: day, Func: cal.CalcDayOfMonth}
}

func easterOffset(name string, offset int) *cal.Holiday {
	return &cal.Holiday{Name: name, Type: cal.ObservancePublic, Offset: offset, Func: cal.CalcEasterOffset}
}

// bridged declares a movable holiday: observed on its nominal date up to lastUnbridgedYear,
// moved by bridgeRules afterwards
func bridged(name string, month time.Month, day int) []*cal.Holiday {
	return []*cal.Holiday{
		{
			Name:    name,
			Type:    cal.ObservancePublic,
			Month:   month,
			Day:     day,
			EndYear: lastUnbridgedYear,
			Func:    cal.CalcDayOfMonth,
		},
		{
			Name:      name,
			Type:      cal.ObservancePublic,
			Month:     month,
			Day:       day,
			StartYear: lastUnbridgedYear + 1,
			Observed:  bridgeRules,
			Func:      cal.CalcDayOfMonth,
		},
	}
}

func concat(groups ...[]*cal.Holiday) []*cal.Holiday {
	var result []*cal.Holiday
	for _, g := range groups {
		result = append(result, g...)
	}
	return result
}
