// Package csvio reads and writes tables as Windows-1252 CSV files with
// every field quoted, the exchange format of the downstream analysis
// tools.
package csvio

import (
	"bufio"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"surveypipe/domain/table"
	"surveypipe/internal/errors"
)

// Writer persists tables as quote-all CSV
type Writer struct{}

// NewWriter creates a CSV table writer
func NewWriter() *Writer {
	return &Writer{}
}

// Write saves the table to path, creating parent directories. Every
// field is quoted, with embedded quotes doubled. Missing values are
// written as empty fields.
func (w *Writer) Write(t *table.Table, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating directory for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	enc := transform.NewWriter(f, charmap.Windows1252.NewEncoder())
	buf := bufio.NewWriter(enc)

	if err := writeRecord(buf, t.ColumnNames()); err != nil {
		return errors.Wrapf(err, "writing header of %s", path)
	}
	rows := t.NumRows()
	cols := t.NumCols()
	record := make([]string, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			record[c] = t.ColumnAt(c).Values[r].Text()
		}
		if err := writeRecord(buf, record); err != nil {
			return errors.Wrapf(err, "writing row %d of %s", r, path)
		}
	}
	if err := buf.Flush(); err != nil {
		return errors.Wrapf(err, "flushing %s", path)
	}
	return enc.Close()
}

// writeRecord emits one CSV line with every field quoted
func writeRecord(buf *bufio.Writer, fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if err := buf.WriteByte(','); err != nil {
				return err
			}
		}
		if err := buf.WriteByte('"'); err != nil {
			return err
		}
		if _, err := buf.WriteString(strings.ReplaceAll(field, `"`, `""`)); err != nil {
			return err
		}
		if err := buf.WriteByte('"'); err != nil {
			return err
		}
	}
	return buf.WriteByte('\n')
}

// Reader loads tables from CSV files
type Reader struct{}

// NewReader creates a CSV table reader
func NewReader() *Reader {
	return &Reader{}
}

// Read loads a CSV file into a table. Empty fields and the common NaN
// markers become missing values; fields that parse as numbers become
// numeric.
func (r *Reader) Read(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	cr := csv.NewReader(transform.NewReader(f, charmap.Windows1252.NewDecoder()))
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.DecodeFailed(path, err)
	}
	if len(records) == 0 {
		return table.New(), nil
	}

	header := records[0]
	columns := make([][]table.Value, len(header))
	for _, record := range records[1:] {
		for c := range header {
			if c < len(record) {
				columns[c] = append(columns[c], parseField(record[c]))
			} else {
				columns[c] = append(columns[c], table.Missing())
			}
		}
	}

	out := table.New()
	for c, name := range header {
		if err := out.AddColumn(name, columns[c]); err != nil {
			return nil, errors.DecodeFailed(path, err)
		}
	}
	return out, nil
}

func parseField(field string) table.Value {
	switch strings.TrimSpace(field) {
	case "", "NaN", "nan":
		return table.Missing()
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(field), 64); err == nil {
		return table.Num(f)
	}
	return table.Str(field)
}
