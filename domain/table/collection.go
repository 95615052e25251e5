package table

import (
	"fmt"

	"surveypipe/domain/core"
)

// Collection maps unique names (derived from source filenames) to tables.
// Insertion order is preserved so iteration is deterministic.
type Collection struct {
	names  []string
	tables map[string]*Table
}

// NewCollection creates an empty collection
func NewCollection() *Collection {
	return &Collection{tables: make(map[string]*Table)}
}

// Add inserts a table under a unique name
func (c *Collection) Add(name string, t *Table) error {
	if _, ok := c.tables[name]; ok {
		return fmt.Errorf("%w: %q", core.ErrDuplicateTable, name)
	}
	c.names = append(c.names, name)
	c.tables[name] = t
	return nil
}

// Get returns the named table
func (c *Collection) Get(name string) (*Table, bool) {
	t, ok := c.tables[name]
	return t, ok
}

// Names returns the table names in insertion order
func (c *Collection) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len returns the number of tables
func (c *Collection) Len() int {
	return len(c.names)
}

// IsEmpty reports whether the collection holds no tables
func (c *Collection) IsEmpty() bool {
	return len(c.names) == 0
}
