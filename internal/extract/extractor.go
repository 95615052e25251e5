// Package extract pulls the rows of a single country out of large
// statistical containers without loading whole files into memory, then
// applies the source's display labels to the result.
package extract

import (
	"log"
	"strings"

	"surveypipe/domain/core"
	"surveypipe/domain/table"
	"surveypipe/internal/errors"
	"surveypipe/ports"
)

// Default window sizes: the scan pass reads only the key column so it
// can afford much larger windows than the load pass.
const (
	DefaultScanWindow = 100000
	DefaultLoadWindow = 10000
	DefaultKeyColumn  = "CNT"
)

// Options tunes the extraction passes
type Options struct {
	KeyColumn  string
	ScanWindow int
	LoadWindow int
}

// Extractor performs two-pass country extraction over a windowed source
type Extractor struct {
	source     ports.Source
	keyColumn  string
	scanWindow int
	loadWindow int
}

// New creates an extractor over the given source. Zero option fields
// fall back to the defaults.
func New(source ports.Source, opts Options) *Extractor {
	e := &Extractor{
		source:     source,
		keyColumn:  opts.KeyColumn,
		scanWindow: opts.ScanWindow,
		loadWindow: opts.LoadWindow,
	}
	if e.keyColumn == "" {
		e.keyColumn = DefaultKeyColumn
	}
	if e.scanWindow <= 0 {
		e.scanWindow = DefaultScanWindow
	}
	if e.loadWindow <= 0 {
		e.loadWindow = DefaultLoadWindow
	}
	return e
}

// Result is the extracted country table together with the source
// metadata needed for labeling.
type Result struct {
	Table *table.Table
	Meta  ports.SourceMeta
}

// Extract loads the rows whose key column matches countryCode. When
// columns is non-empty the result is limited to those columns (plus the
// key column). Matching is case-insensitive on trimmed text. A country
// with no rows yields an empty table, not an error.
func (e *Extractor) Extract(path, countryCode string, columns []string) (*Result, error) {
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	if code == "" {
		return nil, errors.InvalidInput("country code must not be empty")
	}

	first, last, meta, err := e.scan(path, code)
	if err != nil {
		return nil, err
	}
	if first < 0 {
		log.Printf("[Extract] %s: no rows for country %s", path, code)
		return &Result{Table: table.New(), Meta: meta}, nil
	}
	log.Printf("[Extract] %s: country %s spans rows %d..%d", path, code, first, last)

	return e.load(path, code, columns, first, last)
}

// scan reads only the key column in large windows and returns the span
// of global row indexes that match the country code. A span of (-1, -1)
// means no row matched.
func (e *Extractor) scan(path, code string) (first, last int, meta ports.SourceMeta, err error) {
	reader, err := e.source.Open(path, []string{e.keyColumn})
	if err != nil {
		return 0, 0, meta, errors.DecodeFailed(path, err)
	}
	defer reader.Close()

	first, last = -1, -1
	offset := 0
	for {
		win, err := reader.Next(e.scanWindow)
		if err != nil {
			return 0, 0, meta, errors.DecodeFailed(path, err)
		}
		if win.NumRows() == 0 {
			break
		}
		col, ok := win.Column(e.keyColumn)
		if !ok {
			return 0, 0, meta, core.NewColumnNotFoundError(path, e.keyColumn)
		}
		for i, v := range col.Values {
			if matchesCode(v, code) {
				if first < 0 {
					first = offset + i
				}
				last = offset + i
			}
		}
		offset += win.NumRows()
	}
	return first, last, reader.Meta(), nil
}

// load re-reads the source in small windows, skipping windows entirely
// outside the matched span, and keeps only the rows whose key matches
func (e *Extractor) load(path, code string, columns []string, first, last int) (*Result, error) {
	requested := columns
	if len(requested) > 0 && !contains(requested, e.keyColumn) {
		requested = append(append([]string{}, requested...), e.keyColumn)
	}

	reader, err := e.source.Open(path, requested)
	if err != nil {
		return nil, errors.DecodeFailed(path, err)
	}
	defer reader.Close()

	out := table.New()
	offset := 0
	for {
		win, err := reader.Next(e.loadWindow)
		if err != nil {
			return nil, errors.DecodeFailed(path, err)
		}
		n := win.NumRows()
		if n == 0 {
			break
		}
		start := offset
		offset += n
		if offset <= first {
			continue
		}
		if start > last {
			break
		}

		keyCol, ok := win.Column(e.keyColumn)
		if !ok {
			return nil, core.NewColumnNotFoundError(path, e.keyColumn)
		}
		var keep []int
		for i := 0; i < n; i++ {
			global := start + i
			if global < first || global > last {
				continue
			}
			if matchesCode(keyCol.Values[i], code) {
				keep = append(keep, i)
			}
		}
		if len(keep) == 0 {
			continue
		}
		if err := appendRows(out, win, keep); err != nil {
			return nil, err
		}
	}

	return &Result{Table: out, Meta: reader.Meta()}, nil
}

// matchesCode compares the trimmed, uppercased text form of a value
// against the already-uppercased country code
func matchesCode(v table.Value, code string) bool {
	if v.IsMissing() {
		return false
	}
	return strings.ToUpper(strings.TrimSpace(v.Text())) == code
}

// appendRows copies the selected window rows onto the destination
// table, creating its columns from the first contributing window
func appendRows(dst, win *table.Table, rows []int) error {
	if dst.NumCols() == 0 {
		for _, name := range win.ColumnNames() {
			src, _ := win.Column(name)
			values := make([]table.Value, 0, len(rows))
			for _, r := range rows {
				values = append(values, src.Values[r])
			}
			if err := dst.AddColumn(name, values); err != nil {
				return err
			}
		}
		return nil
	}
	for _, name := range dst.ColumnNames() {
		src, ok := win.Column(name)
		if !ok {
			return core.NewColumnNotFoundError("window", name)
		}
		dstCol, _ := dst.Column(name)
		for _, r := range rows {
			dstCol.Values = append(dstCol.Values, src.Values[r])
		}
	}
	return nil
}

func contains(names []string, target string) bool {
	for _, n := range names {
		if n == target {
			return true
		}
	}
	return false
}
