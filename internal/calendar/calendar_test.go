package calendar

import (
	"math"
	"testing"
)

func TestConstantsRelation(t *testing.T) {
	day, month, season, year := float64(TimePerDay), float64(TimePerMonth), float64(TimePerSeason), float64(TimePerYear)
	if year != 4*season || year != 12*month {
		t.Fatalf("year constants inconsistent: year=%v season=%v month=%v", year, season, month)
	}
	if !(day < month && month < season && season < year) {
		t.Fatal("time constants not strictly increasing")
	}
}

func TestSeasonFromTimeYearBoundaries(t *testing.T) {
	for n := 0; n < 50; n++ {
		s := SeasonFromTime(float64(n) * TimePerYear)
		if s.Year != n {
			t.Errorf("n=%d: year = %d", n, s.Year)
		}
		if s.Season != Spring {
			t.Errorf("n=%d: season = %d, want spring", n, s.Season)
		}
		if s.Percent != 0 {
			t.Errorf("n=%d: percent = %v, want 0", n, s.Percent)
		}
		if s.Month != 1 || s.Day != 1 {
			t.Errorf("n=%d: month/day = %d/%d, want 1/1", n, s.Month, s.Day)
		}
	}
}

func TestSeasonFromTimeRanges(t *testing.T) {
	for i := 0; i < 5000; i++ {
		tm := float64(i) * 1.37
		s := SeasonFromTime(tm)
		if s.Season < 0 || s.Season > 3 {
			t.Fatalf("t=%v: season %d out of range", tm, s.Season)
		}
		if s.Month < 1 || s.Month > MonthsPerSeason {
			t.Fatalf("t=%v: month %d out of range", tm, s.Month)
		}
		if s.Day < 1 || s.Day > DaysPerMonth {
			t.Fatalf("t=%v: day %d out of range", tm, s.Day)
		}
		if s.Percent < 0 || s.Percent >= 1 {
			t.Fatalf("t=%v: percent %v out of range", tm, s.Percent)
		}
		want := int(math.Floor(math.Mod(tm, TimePerYear) / TimePerSeason))
		if s.Season != want {
			t.Fatalf("t=%v: season %d, want %d", tm, s.Season, want)
		}
	}
}

func TestSeasonFromTimeMidYear(t *testing.T) {
	// Year 2, Autumn, month 2, day 4, halfway through the season.
	tm := 2*TimePerYear + 2*TimePerSeason + TimePerMonth + 3*TimePerDay + 5
	s := SeasonFromTime(tm)
	want := Season{Year: 2, Season: Autumn, Month: 2, Day: 4, Percent: 135.0 / 300.0}
	if s.Year != want.Year || s.Season != want.Season || s.Month != want.Month || s.Day != want.Day {
		t.Fatalf("got %+v, want %+v", s, want)
	}
	if math.Abs(s.Percent-want.Percent) > 1e-12 {
		t.Fatalf("percent %v, want %v", s.Percent, want.Percent)
	}
}

func TestSeasonFromTimeNegative(t *testing.T) {
	if s := SeasonFromTime(-5); s != SeasonFromTime(0) {
		t.Fatalf("negative time decoded as %+v", s)
	}
	if s := SeasonFromTime(math.NaN()); s != SeasonFromTime(0) {
		t.Fatalf("NaN time decoded as %+v", s)
	}
	for _, inf := range []float64{math.Inf(1), math.Inf(-1)} {
		if s := SeasonFromTime(inf); s != SeasonFromTime(0) {
			t.Fatalf("%v time decoded as %+v", inf, s)
		}
	}
}

func TestDisplay(t *testing.T) {
	tests := []struct {
		time float64
		want string
	}{
		{0, "Spring, Month 1"},
		{TimePerSeason + TimePerMonth, "Summer, Month 2"},
		{TimePerYear, "Year 1, Spring, Month 1"},
		{3*TimePerYear + 3*TimePerSeason + 2*TimePerMonth, "Year 3, Winter, Month 3"},
	}
	for _, tt := range tests {
		if got := Display(tt.time); got != tt.want {
			t.Errorf("Display(%v) = %q, want %q", tt.time, got, tt.want)
		}
	}
	if got := SeasonFromTime(TimePerYear + 25).String(); got != "Year 1, Spring, Month 1, Day 3" {
		t.Errorf("String() = %q", got)
	}
}

func TestCrossed(t *testing.T) {
	if !Crossed(9.5, 10, TimePerDay) {
		t.Error("expected day boundary at 10")
	}
	if Crossed(10, 19.9, TimePerDay) {
		t.Error("no boundary between 10 and 19.9")
	}
	if Crossed(5, 5, TimePerDay) {
		t.Error("zero-length interval crosses nothing")
	}
	if !Crossed(299, 301, TimePerSeason) {
		t.Error("expected season boundary at 300")
	}
}
