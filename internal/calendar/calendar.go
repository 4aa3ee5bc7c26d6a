// Package calendar maps elapsed simulation time to years, seasons, months and days.
// Everything here is a pure function of time; nothing holds state.
package calendar

import (
	"fmt"
	"math"
)

// Time constants in simulated seconds.
const (
	TimePerDay      = 10.0
	DaysPerMonth    = 10
	MonthsPerSeason = 3
	SeasonsPerYear  = 4

	TimePerMonth  = TimePerDay * DaysPerMonth      // 100
	TimePerSeason = TimePerMonth * MonthsPerSeason // 300
	TimePerYear   = TimePerSeason * SeasonsPerYear // 1200
)

// Season indices.
const (
	Spring = 0
	Summer = 1
	Autumn = 2
	Winter = 3
)

// Season is a decoded point in the calendar.
type Season struct {
	Year    int     `json:"year"`
	Season  int     `json:"season"`  // 0–3
	Month   int     `json:"month"`   // 1–3 within the season
	Day     int     `json:"day"`     // 1–DaysPerMonth within the month
	Percent float64 `json:"percent"` // progress through the season, [0,1)
}

// SeasonName returns a human-readable season name.
func SeasonName(season int) string {
	switch season {
	case Spring:
		return "Spring"
	case Summer:
		return "Summer"
	case Autumn:
		return "Autumn"
	case Winter:
		return "Winter"
	default:
		return "Unknown"
	}
}

// SeasonFromTime decodes an elapsed simulation time.
// Negative, NaN and infinite times decode as time zero.
func SeasonFromTime(t float64) Season {
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		t = 0
	}

	year := math.Floor(t / TimePerYear)
	inYear := math.Mod(t, TimePerYear)
	season := int(inYear / TimePerSeason)
	if season > Winter {
		// Float rounding right below a year boundary.
		season = Winter
	}
	inSeason := math.Mod(inYear, TimePerSeason)
	month := int(inSeason/TimePerMonth) + 1
	if month > MonthsPerSeason {
		month = MonthsPerSeason
	}
	inMonth := math.Mod(inSeason, TimePerMonth)
	day := int(inMonth/TimePerDay) + 1
	if day > DaysPerMonth {
		day = DaysPerMonth
	}
	percent := inSeason / TimePerSeason
	if percent >= 1 {
		percent = math.Nextafter(1, 0)
	}

	return Season{
		Year:    int(year),
		Season:  season,
		Month:   month,
		Day:     day,
		Percent: percent,
	}
}

// Display renders "Year {year}, {Season}, Month {month}", dropping the year
// clause during year zero.
func (s Season) Display() string {
	if s.Year == 0 {
		return fmt.Sprintf("%s, Month %d", SeasonName(s.Season), s.Month)
	}
	return fmt.Sprintf("Year %d, %s, Month %d", s.Year, SeasonName(s.Season), s.Month)
}

// String includes the day for logs.
func (s Season) String() string {
	return fmt.Sprintf("%s, Day %d", s.Display(), s.Day)
}

// Display is shorthand for SeasonFromTime(t).Display().
func Display(t float64) string {
	return SeasonFromTime(t).Display()
}

// Crossed reports whether a boundary at a multiple of period lies in (prev, now].
func Crossed(prev, now, period float64) bool {
	if period <= 0 || now <= prev {
		return false
	}
	return math.Floor(now/period) > math.Floor(prev/period)
}
