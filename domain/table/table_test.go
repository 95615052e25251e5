package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveypipe/domain/core"
)

func TestAddColumnRejectsDuplicatesAndLengthMismatch(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.AddColumn("a", []Value{Num(1), Num(2)}))

	err := tbl.AddColumn("a", []Value{Num(3), Num(4)})
	assert.ErrorIs(t, err, core.ErrDuplicateColumn)

	err = tbl.AddColumn("b", []Value{Num(3)})
	assert.ErrorIs(t, err, core.ErrLengthMismatch)
}

func TestDropColumnsReturnsOnlyPresentNames(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.AddColumn("a", []Value{Num(1)}))
	require.NoError(t, tbl.AddColumn("b", []Value{Num(2)}))

	dropped := tbl.DropColumns("b", "ghost")
	assert.Equal(t, []string{"b"}, dropped)
	assert.Equal(t, []string{"a"}, tbl.ColumnNames())

	// Index stays consistent after removal.
	col, ok := tbl.Column("a")
	require.True(t, ok)
	assert.Equal(t, Num(1), col.Values[0])
}

func TestMoveToEnd(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.AddColumn("a", []Value{Num(1)}))
	require.NoError(t, tbl.AddColumn("b", []Value{Num(2)}))
	require.NoError(t, tbl.AddColumn("c", []Value{Num(3)}))

	tbl.MoveToEnd("a")
	assert.Equal(t, []string{"b", "c", "a"}, tbl.ColumnNames())

	tbl.MoveToEnd("ghost")
	assert.Equal(t, []string{"b", "c", "a"}, tbl.ColumnNames())
}

func TestSelectDeepCopies(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.AddColumn("a", []Value{Num(1)}))
	require.NoError(t, tbl.AddColumn("b", []Value{Num(2)}))

	sel := tbl.Select([]string{"b", "ghost"})
	assert.Equal(t, []string{"b"}, sel.ColumnNames())

	col, _ := sel.Column("b")
	col.Values[0] = Num(99)
	orig, _ := tbl.Column("b")
	assert.Equal(t, Num(2), orig.Values[0])
}

func TestValueText(t *testing.T) {
	assert.Equal(t, "1", Num(1).Text())
	assert.Equal(t, "404.4", Num(404.4).Text())
	assert.Equal(t, "x", Str("x").Text())
	assert.Equal(t, "", Missing().Text())
}

func TestCollectionPreservesInsertionOrder(t *testing.T) {
	c := NewCollection()
	require.NoError(t, c.Add("b", New()))
	require.NoError(t, c.Add("a", New()))

	assert.Equal(t, []string{"b", "a"}, c.Names())
	assert.ErrorIs(t, c.Add("a", New()), core.ErrDuplicateTable)
}
