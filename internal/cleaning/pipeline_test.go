package cleaning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveypipe/domain/table"
)

func buildTable(t *testing.T, cols map[string][]table.Value, order []string) *table.Table {
	t.Helper()
	tbl := table.New()
	for _, name := range order {
		require.NoError(t, tbl.AddColumn(name, cols[name]))
	}
	return tbl
}

func TestNormalizeStripsDisruptiveCharacters(t *testing.T) {
	tbl := buildTable(t, map[string][]table.Value{
		` "Student, ID"	`: {table.Str(`a"b`), table.Str("c,d\ne"), table.Missing()},
	}, []string{` "Student, ID"	`})

	p := New(DefaultThresholds())
	cleaned, _ := p.Clean(tbl)

	require.Equal(t, []string{"Student ID"}, cleaned.ColumnNames())
	col, _ := cleaned.Column("Student ID")
	assert.Equal(t, table.Str("ab"), col.Values[0])
	assert.Equal(t, table.Str("cd e"), col.Values[1])
	assert.True(t, col.Values[2].IsMissing())
}

func TestSentinelMaskingSkipsProtectedColumns(t *testing.T) {
	tbl := buildTable(t, map[string][]table.Value{
		"SCHID":   {table.Num(9999), table.Num(10001)},
		"PV1MATH": {table.Num(9999), table.Num(404.4)},
	}, []string{"SCHID", "PV1MATH"})

	th := DefaultThresholds()
	th.Protected = []string{"SCHID"}
	cleaned, _ := New(th).Clean(tbl)

	ids, _ := cleaned.Column("SCHID")
	assert.Equal(t, table.Num(9999), ids.Values[0])
	assert.Equal(t, table.Num(10001), ids.Values[1])

	scores, _ := cleaned.Column("PV1MATH")
	assert.True(t, scores.Values[0].IsMissing())
	assert.Equal(t, table.Num(404.4), scores.Values[1])
}

func TestCoercionConvertsFullyNumericColumns(t *testing.T) {
	tbl := buildTable(t, map[string][]table.Value{
		"numeric": {table.Str("1"), table.Str(" 2.5 "), table.Missing()},
		"mixed":   {table.Str("1"), table.Str("often"), table.Num(3)},
		"markers": {table.Str("Missing"), table.Str("Invalid"), table.Str("N/A")},
	}, []string{"numeric", "mixed", "markers"})

	cleaned, _ := New(DefaultThresholds()).Clean(tbl)

	num, _ := cleaned.Column("numeric")
	assert.Equal(t, table.Num(1), num.Values[0])
	assert.Equal(t, table.Num(2.5), num.Values[1])
	assert.True(t, num.Values[2].IsMissing())

	mixed, _ := cleaned.Column("mixed")
	assert.Equal(t, table.Str("1"), mixed.Values[0])
	assert.Equal(t, table.Str("often"), mixed.Values[1])

	markers, _ := cleaned.Column("markers")
	for _, v := range markers.Values {
		assert.True(t, v.IsMissing())
	}
}

func TestCorrelationDropsExactlyOneOfDuplicatePair(t *testing.T) {
	a := []table.Value{table.Num(1), table.Num(2), table.Num(3), table.Num(4)}
	b := []table.Value{table.Num(1), table.Num(2), table.Num(3), table.Num(4)}
	c := []table.Value{table.Num(4), table.Num(1), table.Num(3), table.Num(2)}

	tbl := buildTable(t, map[string][]table.Value{"a": a, "b": b, "c": c},
		[]string{"a", "b", "c"})

	th := DefaultThresholds()
	th.Correlation = 0.99
	cleaned, report := New(th).Clean(tbl)

	survivors := 0
	for _, name := range []string{"a", "b"} {
		if cleaned.HasColumn(name) {
			survivors++
		}
	}
	assert.Equal(t, 1, survivors, "exactly one of the duplicate pair must survive")
	assert.True(t, cleaned.HasColumn("c"))
	assert.Equal(t, 1, report.TotalDropped())
}

func TestCorrelationTargetTieBreakDropsWeakerPredictor(t *testing.T) {
	// a and b are duplicates; a tracks the target perfectly while b is
	// shifted away from it on one row after masking, so b must go.
	target := []table.Value{table.Num(10), table.Num(20), table.Num(30), table.Num(41)}
	a := []table.Value{table.Num(1), table.Num(2), table.Num(3), table.Num(4.1)}
	b := []table.Value{table.Num(1), table.Num(2), table.Num(3), table.Num(4)}

	tbl := buildTable(t, map[string][]table.Value{"target": target, "a": a, "b": b},
		[]string{"target", "a", "b"})

	th := DefaultThresholds()
	th.Correlation = 0.99
	th.TargetColumn = "target"
	cleaned, _ := New(th).Clean(tbl)

	assert.True(t, cleaned.HasColumn("a"))
	assert.False(t, cleaned.HasColumn("b"))
	assert.True(t, cleaned.HasColumn("target"))
}

func TestCorrelationStageFailureIsNoOp(t *testing.T) {
	tbl := table.New()

	th := DefaultThresholds()
	th.Correlation = 0.5
	cleaned, report := New(th).Clean(tbl)

	assert.Equal(t, 0, cleaned.NumCols())
	var corrStage *StageReport
	for i := range report.Stages {
		if report.Stages[i].Stage == "correlation" {
			corrStage = &report.Stages[i]
		}
	}
	require.NotNil(t, corrStage)
	assert.True(t, corrStage.Skipped)
}

func TestUniformityBoundaries(t *testing.T) {
	// 4 of 5 non-missing values are identical: ratio 0.8.
	values := []table.Value{
		table.Num(7), table.Num(7), table.Num(7), table.Num(7), table.Num(1),
	}
	varied := []table.Value{
		table.Num(1), table.Num(2), table.Num(3), table.Num(4), table.Num(5),
	}

	t.Run("ratio at threshold drops", func(t *testing.T) {
		tbl := buildTable(t, map[string][]table.Value{"u": values, "v": varied},
			[]string{"u", "v"})
		th := DefaultThresholds()
		th.UniformityRatio = 0.8
		cleaned, _ := New(th).Clean(tbl)
		assert.False(t, cleaned.HasColumn("u"))
		assert.True(t, cleaned.HasColumn("v"))
	})

	t.Run("threshold one never drops", func(t *testing.T) {
		uniform := []table.Value{table.Num(7), table.Num(7), table.Num(7)}
		tbl := buildTable(t, map[string][]table.Value{"u": uniform}, []string{"u"})
		th := DefaultThresholds()
		th.UniformityRatio = 1.0
		cleaned, _ := New(th).Clean(tbl)
		assert.True(t, cleaned.HasColumn("u"))
	})

	t.Run("all missing column is kept", func(t *testing.T) {
		empty := []table.Value{table.Missing(), table.Missing()}
		other := []table.Value{table.Num(1), table.Num(2)}
		tbl := buildTable(t, map[string][]table.Value{"e": empty, "o": other},
			[]string{"e", "o"})
		th := DefaultThresholds()
		th.UniformityRatio = 0.5
		cleaned, _ := New(th).Clean(tbl)
		assert.True(t, cleaned.HasColumn("e"))
	})
}

func TestMissingnessStrictBoundary(t *testing.T) {
	half := []table.Value{table.Num(1), table.Missing(), table.Num(3), table.Missing()}

	t.Run("ratio at threshold keeps", func(t *testing.T) {
		tbl := buildTable(t, map[string][]table.Value{"h": half}, []string{"h"})
		th := DefaultThresholds()
		th.MissingRatio = 0.5
		cleaned, _ := New(th).Clean(tbl)
		assert.True(t, cleaned.HasColumn("h"))
	})

	t.Run("ratio above threshold drops", func(t *testing.T) {
		tbl := buildTable(t, map[string][]table.Value{"h": half}, []string{"h"})
		th := DefaultThresholds()
		th.MissingRatio = 0.49
		cleaned, _ := New(th).Clean(tbl)
		assert.False(t, cleaned.HasColumn("h"))
	})
}

func TestProtectedColumnsSurviveEveryStage(t *testing.T) {
	sparse := []table.Value{table.Missing(), table.Missing(), table.Num(1)}
	tbl := buildTable(t, map[string][]table.Value{"STUDID": sparse}, []string{"STUDID"})

	th := Thresholds{
		MissingRatio:    0.1,
		UniformityRatio: 0.1,
		Correlation:     0.5,
		Protected:       []string{"STUDID"},
	}
	cleaned, _ := New(th).Clean(tbl)
	assert.True(t, cleaned.HasColumn("STUDID"))
}

func TestCleaningIsIdempotent(t *testing.T) {
	tbl := buildTable(t, map[string][]table.Value{
		"id":     {table.Num(4), table.Num(1), table.Num(3), table.Num(2)},
		"dup_a":  {table.Num(5), table.Num(6), table.Num(7), table.Num(8)},
		"dup_b":  {table.Num(5), table.Num(6), table.Num(7), table.Num(8)},
		"flat":   {table.Str("x"), table.Str("x"), table.Str("x"), table.Str("x")},
		"sparse": {table.Missing(), table.Missing(), table.Missing(), table.Num(1)},
	}, []string{"id", "dup_a", "dup_b", "flat", "sparse"})

	th := Thresholds{
		MissingRatio:    0.5,
		UniformityRatio: 0.9,
		Correlation:     0.95,
	}
	p := New(th)

	first, firstReport := p.Clean(tbl)
	assert.Greater(t, firstReport.TotalDropped(), 0)

	namesAfterFirst := first.ColumnNames()
	second, secondReport := p.Clean(first)

	assert.Equal(t, 0, secondReport.TotalDropped())
	assert.Equal(t, namesAfterFirst, second.ColumnNames())
}
