// Package ports declares the interfaces between the pipeline core and its
// I/O collaborators: windowed readers over statistical containers and
// table writers for persisted stage outputs.
package ports

import (
	"surveypipe/domain/table"
)

// SourceMeta describes the columns of a statistical container: the raw
// column names, optional per-column display labels, and per-column
// value-code to category dictionaries. Value codes are keyed by the
// canonical text form of the coded value (see table.Value.Text).
type SourceMeta struct {
	Columns     []string
	Labels      map[string]string
	ValueLabels map[string]map[string]string
}

// WindowReader streams a container in row-count windows so the caller
// never holds the whole file in memory.
type WindowReader interface {
	// Meta returns the column metadata for the source.
	Meta() SourceMeta

	// Next returns the next window of at most n rows. It returns an
	// empty table (zero rows) when the source is exhausted.
	Next(n int) (*table.Table, error)

	// Close releases the underlying file handle.
	Close() error
}

// Source opens statistical containers for windowed reading. When columns
// is non-empty the returned windows are projected onto that subset.
type Source interface {
	Open(path string, columns []string) (WindowReader, error)
}

// TableWriter persists a table to a file
type TableWriter interface {
	Write(t *table.Table, path string) error
}

// TableReader loads a whole table from a file
type TableReader interface {
	Read(path string) (*table.Table, error)
}
