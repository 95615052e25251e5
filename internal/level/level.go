// Package level maps numeric mathematics scores onto the PISA
// proficiency bands.
package level

import (
	"surveypipe/domain/table"
)

// Band cutoffs, inclusive on the lower bound
const (
	Level1Cutoff = 358.77
	Level2Cutoff = 420.07
	Level3Cutoff = 482.38
	Level4Cutoff = 544.68
	Level5Cutoff = 607.04
	Level6Cutoff = 669.30
)

// ColumnSuffix is appended to the score column's name for its levels
const ColumnSuffix = "_level"

// Assign converts a score value into its proficiency band. Missing and
// non-numeric values stay missing.
func Assign(v table.Value) table.Value {
	if !v.IsNumeric() {
		return table.Missing()
	}
	score := v.Num
	switch {
	case score >= Level6Cutoff:
		return table.Str("Level 6")
	case score >= Level5Cutoff:
		return table.Str("Level 5")
	case score >= Level4Cutoff:
		return table.Str("Level 4")
	case score >= Level3Cutoff:
		return table.Str("Level 3")
	case score >= Level2Cutoff:
		return table.Str("Level 2")
	case score >= Level1Cutoff:
		return table.Str("Level 1")
	default:
		return table.Str("Below Level 1")
	}
}

// AppendLevelColumn adds a "<score>_level" column derived from the
// named score column. Tables without the score column are left alone.
func AppendLevelColumn(t *table.Table, scoreColumn string) error {
	col, ok := t.Column(scoreColumn)
	if !ok {
		return nil
	}
	levels := make([]table.Value, col.Len())
	for i, v := range col.Values {
		levels[i] = Assign(v)
	}
	return t.AddColumn(scoreColumn+ColumnSuffix, levels)
}
