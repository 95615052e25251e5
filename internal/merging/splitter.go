package merging

import (
	"surveypipe/domain/table"
)

// Range selects columns by positional index, end-exclusive
type Range struct {
	Start int
	End   int
}

// Split divides a table into two by positional column ranges. The
// first output holds the columns inside the ranges, the second holds
// everything else. Preserved columns appear first in both outputs even
// when they also fall inside a range.
func Split(t *table.Table, ranges []Range, preserve []string) (*table.Table, *table.Table) {
	names := t.ColumnNames()

	inRanges := make(map[string]struct{})
	var rangeCols []string
	for _, r := range ranges {
		start, end := r.Start, r.End
		if start < 0 {
			start = 0
		}
		if end > len(names) {
			end = len(names)
		}
		for i := start; i < end; i++ {
			if _, ok := inRanges[names[i]]; !ok {
				inRanges[names[i]] = struct{}{}
				rangeCols = append(rangeCols, names[i])
			}
		}
	}

	var remaining []string
	for _, name := range names {
		if _, ok := inRanges[name]; !ok {
			remaining = append(remaining, name)
		}
	}

	selected := dedup(append(append([]string{}, preserve...), rangeCols...))
	rest := dedup(append(append([]string{}, preserve...), remaining...))

	return t.Select(selected), t.Select(rest)
}

func dedup(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := names[:0]
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
