package holiday

import (
	"errors"
	"testing"
	"time"

	"github.com/bonoaccess/accesscheck/business/data/access"
	"github.com/matryer/is"
)

func makeDate(t *testing.T, year int, month time.Month, day int) access.CalendarDate {
	d, err := access.NewCalendarDate(year, month, day)
	if err != nil {
		t.Fatalf("invalid test date %d-%d-%d: %v", year, month, day, err)
	}
	return d
}

// observedDate returns the observed date of the holiday named name in year, ok is false when not observed
func observedDate(year int, region Region, name string) (access.CalendarDate, bool) {
	for _, o := range Observances(year, region) {
		if o.Name == name {
			return o.Date, true
		}
	}
	return access.CalendarDate{}, false
}

func TestHolidaysForYear_2021Pichincha(t *testing.T) {
	is := is.New(t)
	want := map[access.CalendarDate]string{
		makeDate(t, 2021, time.January, 1):   "New Year's Day",
		makeDate(t, 2021, time.February, 15): "Carnival Monday",
		makeDate(t, 2021, time.February, 16): "Carnival Tuesday",
		makeDate(t, 2021, time.April, 2):     "Good Friday",
		makeDate(t, 2021, time.April, 4):     "Easter Sunday",
		makeDate(t, 2021, time.April, 30):    "Labour Day",
		makeDate(t, 2021, time.July, 3):      "Cantonization of Santo Domingo",
		makeDate(t, 2021, time.August, 2):    "Patron Saint Festivities",
		makeDate(t, 2021, time.August, 9):    "First Cry of Independence",
		makeDate(t, 2021, time.October, 8):   "Independence of Guayaquil",
		makeDate(t, 2021, time.November, 2):  "Day of the Dead",
		makeDate(t, 2021, time.November, 6):  "Provincialization of Santo Domingo",
		makeDate(t, 2021, time.December, 6):  "Foundation of Quito",
		makeDate(t, 2021, time.December, 25): "Christmas Day",
	}
	got := HolidaysForYear(2021, RegionPichincha)
	is.Equal(len(got), len(want))
	for date, name := range want {
		is.Equal(got[date], name) // holiday on date
	}
}

func TestHolidaysForYear_RegionalHoliday(t *testing.T) {
	is := is.New(t)
	dec6 := makeDate(t, 2021, time.December, 6)

	_, national := HolidaysForYear(2021, RegionNational)[dec6]
	is.True(!national) // foundation of quito is not a national holiday

	_, pichincha := HolidaysForYear(2021, RegionPichincha)[dec6]
	is.True(pichincha)
}

func TestMovableHolidays(t *testing.T) {
	tests := []struct {
		name    string
		holiday string
		region  Region
		year    int
		want    access.CalendarDate
	}{
		{"labour day saturday to friday", "Labour Day", RegionNational, 2021, makeDate(t, 2021, time.April, 30)},
		{"labour day sunday to monday", "Labour Day", RegionNational, 2022, makeDate(t, 2022, time.May, 2)},
		{"labour day wednesday to friday", "Labour Day", RegionNational, 2019, makeDate(t, 2019, time.May, 3)},
		{"labour day thursday to friday", "Labour Day", RegionNational, 2025, makeDate(t, 2025, time.May, 2)},
		{"labour day tuesday to monday", "Labour Day", RegionNational, 2018, makeDate(t, 2018, time.April, 30)},
		{"labour day friday unchanged", "Labour Day", RegionNational, 2015, makeDate(t, 2015, time.May, 1)},
		{"labour day before reform", "Labour Day", RegionNational, 2014, makeDate(t, 2014, time.May, 1)},
		{"first cry saturday to friday", "First Cry of Independence", RegionNational, 2019, makeDate(t, 2019, time.August, 9)},
		{"first cry monday unchanged", "First Cry of Independence", RegionNational, 2020, makeDate(t, 2020, time.August, 10)},
		{"first cry saturday before reform", "First Cry of Independence", RegionNational, 2013, makeDate(t, 2013, time.August, 10)},
		{"guayaquil wednesday to friday", "Independence of Guayaquil", RegionNational, 2019, makeDate(t, 2019, time.October, 11)},
		{"guayaquil sunday to monday", "Independence of Guayaquil", RegionNational, 2016, makeDate(t, 2016, time.October, 10)},
		{"quito sunday to monday", "Foundation of Quito", RegionPichincha, 2020, makeDate(t, 2020, time.December, 7)},
		{"quito monday unchanged", "Foundation of Quito", RegionPichincha, 2027, makeDate(t, 2027, time.December, 6)},
		{"quito before reform", "Foundation of Quito", RegionPichincha, 2010, makeDate(t, 2010, time.December, 6)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			got, ok := observedDate(tt.year, tt.region, tt.holiday)
			is.True(ok)
			is.Equal(got, tt.want)
		})
	}
}

func TestMovableHolidays_BridgingRule(t *testing.T) {
	movable := []struct {
		name  string
		month time.Month
		day   int
	}{
		{"Labour Day", time.May, 1},
		{"First Cry of Independence", time.August, 10},
		{"Independence of Guayaquil", time.October, 9},
		{"Foundation of Quito", time.December, 6},
	}
	for year := 1900; year <= 2100; year++ {
		for _, m := range movable {
			nominal := makeDate(t, year, m.month, m.day)
			want := nominal
			if year > 2015 {
				switch nominal.Weekday() {
				case time.Saturday, time.Tuesday:
					want = nominal.AddDays(-1)
				case time.Sunday:
					want = nominal.AddDays(1)
				case time.Wednesday:
					want = nominal.AddDays(2)
				case time.Thursday:
					want = nominal.AddDays(1)
				}
			}
			got, ok := observedDate(year, RegionPichincha, m.name)
			if !ok {
				t.Fatalf("%s not observed in %d", m.name, year)
			}
			if got != want {
				t.Errorf("%s in %d (nominal %s, %s) observed %s, want %s",
					m.name, year, nominal, nominal.Weekday(), got, want)
			}
			if year > 2015 && got.Weekday() != time.Monday && got.Weekday() != time.Friday {
				t.Errorf("%s in %d observed on %s, want a monday or friday", m.name, year, got.Weekday())
			}
		}
	}
}

func TestDayOfTheDead(t *testing.T) {
	tests := []struct {
		name string
		year int
		want access.CalendarDate
	}{
		{"saturday back to friday", 2019, makeDate(t, 2019, time.November, 1)},
		{"tuesday unchanged", 2021, makeDate(t, 2021, time.November, 2)},
		{"wednesday forward to friday", 2022, makeDate(t, 2022, time.November, 4)},
		{"friday unchanged", 2018, makeDate(t, 2018, time.November, 2)},
		{"sunday forward to tuesday", 2025, makeDate(t, 2025, time.November, 4)},
		{"monday unchanged", 2020, makeDate(t, 2020, time.November, 2)},
		{"thursday unchanged", 2023, makeDate(t, 2023, time.November, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			got, ok := observedDate(tt.year, RegionNational, "Day of the Dead")
			is.True(ok)
			is.Equal(got, tt.want)
		})
	}
}

// TestDayOfTheDead_Enumeration checks every year against the rule as enumerated on November 3rd's weekday
func TestDayOfTheDead_Enumeration(t *testing.T) {
	for year := 1800; year <= 2200; year++ {
		nov2 := makeDate(t, year, time.November, 2)
		nov3 := nov2.AddDays(1)
		var want access.CalendarDate
		switch {
		case nov2.Weekday() == time.Saturday && nov3.Weekday() == time.Sunday:
			want = nov2.AddDays(-1)
		case nov3.Weekday() == time.Wednesday:
			want = nov2
		case nov3.Weekday() == time.Thursday:
			want = nov2.AddDays(2)
		case nov3.Weekday() == time.Saturday:
			want = nov2
		case nov3.Weekday() == time.Monday:
			want = nov2.AddDays(2)
		default:
			want = nov2
		}
		got, ok := observedDate(year, RegionNational, "Day of the Dead")
		if !ok || got != want {
			t.Errorf("day of the dead %d observed %s, want %s", year, got, want)
		}
	}
}

func TestEasterRelativeHolidays(t *testing.T) {
	easterSundays := []access.CalendarDate{
		makeDate(t, 2016, time.March, 27),
		makeDate(t, 2017, time.April, 16),
		makeDate(t, 2018, time.April, 1),
		makeDate(t, 2019, time.April, 21),
		makeDate(t, 2020, time.April, 12),
		makeDate(t, 2021, time.April, 4),
		makeDate(t, 2022, time.April, 17),
		makeDate(t, 2023, time.April, 9),
		makeDate(t, 2024, time.March, 31),
		makeDate(t, 2025, time.April, 20),
	}
	for _, easter := range easterSundays {
		t.Run(easter.String(), func(t *testing.T) {
			is := is.New(t)
			year := easter.Year()
			got, _ := observedDate(year, RegionNational, "Easter Sunday")
			is.Equal(got, easter)
			got, _ = observedDate(year, RegionNational, "Good Friday")
			is.Equal(got, easter.AddDays(-2))
			is.Equal(got.Weekday(), time.Friday)
			got, _ = observedDate(year, RegionNational, "Carnival Monday")
			is.Equal(got, easter.AddDays(-48))
			is.Equal(got.Weekday(), time.Monday)
			got, _ = observedDate(year, RegionNational, "Carnival Tuesday")
			is.Equal(got, easter.AddDays(-47))
			is.Equal(got.Weekday(), time.Tuesday)
		})
	}
}

func TestHolidaysForYear_KeysWithinYear(t *testing.T) {
	for year := 1600; year <= 2600; year++ {
		for _, region := range Regions {
			holidays := HolidaysForYear(year, region)
			if len(holidays) < 13 {
				t.Errorf("%d %s: only %d holidays", year, region, len(holidays))
			}
			for date := range holidays {
				if date.Year() != year {
					t.Errorf("%d %s: holiday %s filed under another year", year, region, date)
				}
			}
		}
	}
}

func TestObservances_Ordered(t *testing.T) {
	is := is.New(t)
	observances := Observances(2019, RegionPichincha)
	is.Equal(len(observances), 14)
	for i := 1; i < len(observances); i++ {
		is.True(observances[i-1].Date.Before(observances[i].Date))
	}
	labourDay := observances[5]
	is.Equal(labourDay.Name, "Labour Day")
	is.True(labourDay.Bridged())
	is.Equal(labourDay.Nominal, makeDate(t, 2019, time.May, 1))
}

func TestParseRegion(t *testing.T) {
	is := is.New(t)
	region, err := ParseRegion("EC-P")
	is.NoErr(err)
	is.Equal(region, RegionPichincha)

	region, err = ParseRegion("")
	is.NoErr(err)
	is.Equal(region, RegionNational)
	is.Equal(region.String(), "EC")

	region, err = ParseRegion("EC")
	is.NoErr(err)
	is.Equal(region, RegionNational)

	_, err = ParseRegion("EC-G")
	var validationErr *access.ValidationError
	is.True(errors.As(err, &validationErr))
}
