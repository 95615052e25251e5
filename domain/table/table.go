// Package table defines the in-memory tabular data model shared by every
// pipeline stage: typed cell values, named columns of equal length, tables
// with unique column names, and ordered collections of named tables.
package table

import (
	"fmt"

	"surveypipe/domain/core"
)

// Column is a named sequence of typed values
type Column struct {
	Name   string
	Values []Value
}

// Len returns the number of rows in the column
func (c *Column) Len() int {
	return len(c.Values)
}

// MissingCount returns the number of missing values
func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.Values {
		if v.IsMissing() {
			n++
		}
	}
	return n
}

// DistinctNonMissing returns the count of distinct non-missing values
func (c *Column) DistinctNonMissing() int {
	seen := make(map[Value]struct{})
	for _, v := range c.Values {
		if !v.IsMissing() {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}

// IsNumeric reports whether every non-missing value is numeric
func (c *Column) IsNumeric() bool {
	for _, v := range c.Values {
		if v.IsString() {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the column
func (c *Column) Clone() *Column {
	values := make([]Value, len(c.Values))
	copy(values, c.Values)
	return &Column{Name: c.Name, Values: values}
}

// Table is an ordered set of named columns of equal length.
// Column names are unique within a table.
type Table struct {
	cols  []*Column
	index map[string]int
}

// New creates an empty table
func New() *Table {
	return &Table{index: make(map[string]int)}
}

// AddColumn appends a column. The name must be unique and the length
// must match the existing columns.
func (t *Table) AddColumn(name string, values []Value) error {
	if _, ok := t.index[name]; ok {
		return fmt.Errorf("%w: %q", core.ErrDuplicateColumn, name)
	}
	if len(t.cols) > 0 && len(values) != t.NumRows() {
		return fmt.Errorf("%w: column %q has %d rows, table has %d",
			core.ErrLengthMismatch, name, len(values), t.NumRows())
	}
	t.index[name] = len(t.cols)
	t.cols = append(t.cols, &Column{Name: name, Values: values})
	return nil
}

// Column returns the named column
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// ColumnAt returns the column at positional index i
func (t *Table) ColumnAt(i int) *Column {
	return t.cols[i]
}

// HasColumn reports whether the table contains the named column
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// ColumnNames returns the column names in table order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// NumCols returns the number of columns
func (t *Table) NumCols() int {
	return len(t.cols)
}

// NumRows returns the number of rows
func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return len(t.cols[0].Values)
}

// IsEmpty reports whether the table has no columns or no rows
func (t *Table) IsEmpty() bool {
	return t.NumCols() == 0 || t.NumRows() == 0
}

// DropColumns removes the named columns and returns the names that
// were actually present and removed
func (t *Table) DropColumns(names ...string) []string {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	var dropped []string
	kept := t.cols[:0]
	for _, c := range t.cols {
		if _, ok := drop[c.Name]; ok {
			dropped = append(dropped, c.Name)
			continue
		}
		kept = append(kept, c)
	}
	t.cols = kept
	t.rebuildIndex()
	return dropped
}

// RenameColumn renames a column; the new name must not collide
func (t *Table) RenameColumn(old, new string) error {
	i, ok := t.index[old]
	if !ok {
		return fmt.Errorf("%w: %q", core.ErrColumnNotFound, old)
	}
	if old == new {
		return nil
	}
	if _, exists := t.index[new]; exists {
		return fmt.Errorf("%w: %q", core.ErrDuplicateColumn, new)
	}
	delete(t.index, old)
	t.cols[i].Name = new
	t.index[new] = i
	return nil
}

// MoveToEnd relocates the named column to the last position.
// No-op when the column is absent.
func (t *Table) MoveToEnd(name string) {
	i, ok := t.index[name]
	if !ok || i == len(t.cols)-1 {
		return
	}
	col := t.cols[i]
	t.cols = append(t.cols[:i], t.cols[i+1:]...)
	t.cols = append(t.cols, col)
	t.rebuildIndex()
}

// Select returns a new table with deep copies of the named columns,
// in the given order. Unknown names are skipped.
func (t *Table) Select(names []string) *Table {
	out := New()
	for _, name := range names {
		if c, ok := t.Column(name); ok {
			_ = out.AddColumn(c.Name, c.Clone().Values)
		}
	}
	return out
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	out := New()
	for _, c := range t.cols {
		_ = out.AddColumn(c.Name, c.Clone().Values)
	}
	return out
}

func (t *Table) rebuildIndex() {
	t.index = make(map[string]int, len(t.cols))
	for i, c := range t.cols {
		t.index[c.Name] = i
	}
}
