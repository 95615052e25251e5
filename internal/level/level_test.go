package level

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveypipe/domain/table"
)

func TestAssignBands(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{200, "Below Level 1"},
		{358.76, "Below Level 1"},
		{358.77, "Level 1"},
		{420.07, "Level 2"},
		{482.38, "Level 3"},
		{544.68, "Level 4"},
		{607.04, "Level 5"},
		{669.29999, "Level 5"},
		{669.30, "Level 6"},
		{812, "Level 6"},
	}
	for _, tc := range cases {
		got := Assign(table.Num(tc.score))
		assert.Equal(t, table.Str(tc.want), got, "score %v", tc.score)
	}
}

func TestAssignMissingStaysMissing(t *testing.T) {
	assert.True(t, Assign(table.Missing()).IsMissing())
	assert.True(t, Assign(table.Str("often")).IsMissing())
}

func TestAppendLevelColumn(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.AddColumn("PV1MATH", []table.Value{
		table.Num(700), table.Missing(), table.Num(300),
	}))

	require.NoError(t, AppendLevelColumn(tbl, "PV1MATH"))

	col, ok := tbl.Column("PV1MATH_level")
	require.True(t, ok)
	assert.Equal(t, table.Str("Level 6"), col.Values[0])
	assert.True(t, col.Values[1].IsMissing())
	assert.Equal(t, table.Str("Below Level 1"), col.Values[2])
}

func TestAppendLevelColumnWithoutScoreIsNoOp(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.AddColumn("other", []table.Value{table.Num(1)}))

	require.NoError(t, AppendLevelColumn(tbl, "PV1MATH"))
	assert.Equal(t, []string{"other"}, tbl.ColumnNames())
}
