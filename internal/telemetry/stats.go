// Package telemetry collects per-day colony statistics and writes them as CSV.
package telemetry

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/talgya/cell-colony/internal/calendar"
	"github.com/talgya/cell-colony/internal/colony"
)

// ColonyStats is one row of colony telemetry, sampled at a day boundary.
type ColonyStats struct {
	Day     int     `csv:"day"`
	SimTime float64 `csv:"sim_time"`
	Season  string  `csv:"season"`
	Colony  string  `csv:"colony"`
	Species string  `csv:"species"`

	// Occupancy
	Cells   int `csv:"cells"`
	Terrain int `csv:"terrain"`
	Empty   int `csv:"empty"`

	// Events since the previous row
	Births int `csv:"births"`
	Deaths int `csv:"deaths"`

	// Resource pools (for conservation checks)
	TotalWater float64 `csv:"total_water"`
	TotalSugar float64 `csv:"total_sugar"`
	CellWater  float64 `csv:"cell_water"`
	CellSugar  float64 `csv:"cell_sugar"`

	// Per-cell sugar distribution
	SugarMean float64 `csv:"sugar_mean"`
	SugarStd  float64 `csv:"sugar_std"`
	SugarP10  float64 `csv:"sugar_p10"`
	SugarP50  float64 `csv:"sugar_p50"`
	SugarP90  float64 `csv:"sugar_p90"`
}

// Collect samples a colony world into a stats row. births and deaths are
// the counts accumulated since the last sample.
func Collect(name, speciesName string, w *colony.World, births, deaths int) ColonyStats {
	c := w.Census()
	s := ColonyStats{
		Day:        int(w.Elapsed / calendar.TimePerDay),
		SimTime:    w.Elapsed,
		Season:     calendar.SeasonName(calendar.SeasonFromTime(w.Elapsed).Season),
		Colony:     name,
		Species:    speciesName,
		Cells:      c.Cells,
		Terrain:    c.Terrain,
		Empty:      c.Empty,
		Births:     births,
		Deaths:     deaths,
		TotalWater: c.Water,
		TotalSugar: c.Sugar,
		CellWater:  floats.Sum(c.CellWater),
		CellSugar:  floats.Sum(c.CellSugar),
	}

	sugar := c.CellSugar
	if len(sugar) == 0 {
		return s
	}
	sort.Float64s(sugar)
	s.SugarMean, s.SugarStd = stat.MeanStdDev(sugar, nil)
	if len(sugar) == 1 {
		s.SugarStd = 0
	}
	s.SugarP10 = Percentile(sugar, 0.10)
	s.SugarP50 = Percentile(sugar, 0.50)
	s.SugarP90 = Percentile(sugar, 0.90)
	return s
}

// Percentile returns the p-th quantile of a sorted slice, 0 if empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}
