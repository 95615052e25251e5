// Package profiling summarizes tables column by column for operator
// visibility between pipeline stages.
package profiling

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"

	"surveypipe/domain/table"
)

// ColumnProfile summarizes one column. Numeric fields are only
// populated for numeric columns, the top-value fields only for
// categorical ones.
type ColumnProfile struct {
	Name     string
	Numeric  bool
	Rows     int
	Missing  int
	Distinct int

	Mean   float64
	StdDev float64
	Median float64
	Min    float64
	Max    float64

	TopValue string
	TopCount int
}

// Profile summarizes every column of the table in column order
func Profile(t *table.Table) []ColumnProfile {
	profiles := make([]ColumnProfile, 0, t.NumCols())
	for i := 0; i < t.NumCols(); i++ {
		profiles = append(profiles, profileColumn(t.ColumnAt(i)))
	}
	return profiles
}

func profileColumn(col *table.Column) ColumnProfile {
	p := ColumnProfile{
		Name:     col.Name,
		Numeric:  col.IsNumeric(),
		Rows:     col.Len(),
		Missing:  col.MissingCount(),
		Distinct: col.DistinctNonMissing(),
	}

	if p.Numeric {
		data := make(stats.Float64Data, 0, col.Len())
		for _, v := range col.Values {
			if v.IsNumeric() {
				data = append(data, v.Num)
			}
		}
		if len(data) > 0 {
			p.Mean, _ = stats.Mean(data)
			p.StdDev, _ = stats.StandardDeviation(data)
			p.Median, _ = stats.Median(data)
			p.Min, _ = stats.Min(data)
			p.Max, _ = stats.Max(data)
		}
		return p
	}

	counts := make(map[string]int)
	for _, v := range col.Values {
		if !v.IsMissing() {
			counts[v.Text()]++
		}
	}
	for text, n := range counts {
		if n > p.TopCount || (n == p.TopCount && text < p.TopValue) {
			p.TopValue = text
			p.TopCount = n
		}
	}
	return p
}

// Render formats the profiles as a plain-text report
func Render(name string, profiles []ColumnProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Profile: %s (%d columns)\n", name, len(profiles))
	for _, p := range profiles {
		if p.Numeric {
			fmt.Fprintf(&b, "  %-40s numeric  rows=%d missing=%d distinct=%d mean=%.3f sd=%.3f median=%.3f min=%.3f max=%.3f\n",
				p.Name, p.Rows, p.Missing, p.Distinct, p.Mean, p.StdDev, p.Median, p.Min, p.Max)
			continue
		}
		fmt.Fprintf(&b, "  %-40s category rows=%d missing=%d distinct=%d top=%q (%d)\n",
			p.Name, p.Rows, p.Missing, p.Distinct, p.TopValue, p.TopCount)
	}
	return b.String()
}
