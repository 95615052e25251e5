package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveypipe/domain/table"
)

func tableWith(t *testing.T, cols map[string][]table.Value, order []string) *table.Table {
	t.Helper()
	tbl := table.New()
	for _, name := range order {
		require.NoError(t, tbl.AddColumn(name, cols[name]))
	}
	return tbl
}

func seq(n int) []table.Value {
	out := make([]table.Value, n)
	for i := range out {
		out[i] = table.Num(float64(i))
	}
	return out
}

func repeated(v float64, n int) []table.Value {
	out := make([]table.Value, n)
	for i := range out {
		out[i] = table.Num(v)
	}
	return out
}

func TestDetectExactRoleNames(t *testing.T) {
	tbl := tableWith(t, map[string][]table.Value{
		"Student ID":  seq(4),
		"Score_Value": seq(4),
		"Country":     seq(4),
		"Grade":       seq(4),
	}, []string{"Country", "Student ID", "Grade", "Score_Value"})

	det := New(DefaultKeywords()).Detect(tbl)

	assert.Equal(t, "Score_Value", det.Score)
	assert.Equal(t, "Student ID", det.Student)
}

func TestDetectWholeWordBeatsSubstring(t *testing.T) {
	// "schoolish" only matches "school" as a compressed substring (+1),
	// "School ID" matches both keywords as whole words (+4).
	tbl := tableWith(t, map[string][]table.Value{
		"schoolish": seq(4),
		"School ID": seq(4),
	}, []string{"schoolish", "School ID"})

	det := New(DefaultKeywords()).Detect(tbl)
	assert.Equal(t, "School ID", det.School)
}

func TestDetectTieBreakPrefersHigherCardinality(t *testing.T) {
	tbl := tableWith(t, map[string][]table.Value{
		"school_id_a": repeated(1, 6),
		"school_id_b": seq(6),
	}, []string{"school_id_a", "school_id_b"})

	det := New(DefaultKeywords()).Detect(tbl)
	assert.Equal(t, "school_id_b", det.School)
}

func TestDetectUndetectedRoleIsEmpty(t *testing.T) {
	tbl := tableWith(t, map[string][]table.Value{
		"alpha": seq(2),
		"beta":  seq(2),
	}, []string{"alpha", "beta"})

	det := New(DefaultKeywords()).Detect(tbl)
	assert.Empty(t, det.Score)
	assert.Empty(t, det.School)
	assert.Empty(t, det.Student)
}

func TestDetectLeveled(t *testing.T) {
	tbl := tableWith(t, map[string][]table.Value{
		"PV1MATH":       seq(3),
		"PV1MATH_level": seq(3),
		"reading_level": seq(3),
	}, []string{"PV1MATH", "reading_level", "PV1MATH_level"})

	d := New(DefaultKeywords())
	assert.Equal(t, "PV1MATH_level", d.DetectLeveled(tbl, "PV1MATH"))
	assert.Empty(t, d.DetectLeveled(tbl, ""))
}

func TestDetectAcrossTables(t *testing.T) {
	students := tableWith(t, map[string][]table.Value{
		"Student ID":                       seq(100),
		"School ID":                        repeated(3, 100),
		"Plausible Value 1 in Mathematics": seq(100),
	}, []string{"Student ID", "School ID", "Plausible Value 1 in Mathematics"})

	schools := tableWith(t, map[string][]table.Value{
		"School ID": seq(40),
	}, []string{"School ID"})

	c := table.NewCollection()
	require.NoError(t, c.Add("students", students))
	require.NoError(t, c.Add("schools", schools))

	det := New(DefaultKeywords()).DetectAcross(c)

	// Score is first-found; School ID comes from the schools table
	// where its cardinality is higher.
	assert.Equal(t, "Plausible Value 1 in Mathematics", det.Score)
	assert.Equal(t, "School ID", det.School)
	assert.Equal(t, "Student ID", det.Student)
}
