// Package profile derives display statistics for the compiled table.
package profile

import (
	"strconv"

	"sheetstack/domain/table"

	"github.com/montanaflynn/stats"
)

// ColumnProfile summarizes one column for the status view.
type ColumnProfile struct {
	Name        string  `json:"name"`
	Missing     int     `json:"missing"`
	MissingRate float64 `json:"missing_rate"`
	Numeric     bool    `json:"numeric"`
	Min         float64 `json:"min,omitempty"`
	Max         float64 `json:"max,omitempty"`
	Mean        float64 `json:"mean,omitempty"`
	Median      float64 `json:"median,omitempty"`
}

// Columns profiles every column of the table in column order. A column is
// numeric when every non-empty cell parses as a float and at least one cell
// is non-empty; only numeric columns carry summary statistics.
func Columns(t *table.Table) []ColumnProfile {
	profiles := make([]ColumnProfile, 0, len(t.Columns))
	for _, col := range t.Columns {
		profiles = append(profiles, profileColumn(t, col))
	}
	return profiles
}

func profileColumn(t *table.Table, col string) ColumnProfile {
	p := ColumnProfile{Name: col}

	values := make([]float64, 0, len(t.Rows))
	numeric := true
	for _, row := range t.Rows {
		cell := row[col]
		if cell == "" {
			p.Missing++
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			numeric = false
			continue
		}
		values = append(values, v)
	}

	if len(t.Rows) > 0 {
		p.MissingRate = float64(p.Missing) / float64(len(t.Rows))
	}
	if !numeric || len(values) == 0 {
		return p
	}

	p.Numeric = true
	// stats only errors on empty input, which is excluded above.
	p.Min, _ = stats.Min(values)
	p.Max, _ = stats.Max(values)
	p.Mean, _ = stats.Mean(values)
	p.Median, _ = stats.Median(values)
	return p
}
