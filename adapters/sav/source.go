// Package sav adapts SAS7BDAT statistical containers to the pipeline's
// windowed source contract. Display labels come from the container
// itself; value-code dictionaries come from an optional sidecar
// codebook, since the binary format does not carry them.
package sav

import (
	"io"
	"math"
	"os"
	"time"

	"github.com/kshedden/datareader"

	"surveypipe/domain/table"
	"surveypipe/internal/errors"
	"surveypipe/ports"
)

// Source opens SAS7BDAT files for windowed reading
type Source struct{}

// NewSource creates a SAS7BDAT source
func NewSource() *Source {
	return &Source{}
}

// Open prepares a windowed reader over the file. When columns is
// non-empty, windows are projected onto that subset; unknown names are
// ignored.
func (s *Source) Open(path string, columns []string) (ports.WindowReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	sas, err := datareader.NewSAS7BDATReader(f)
	if err != nil {
		f.Close()
		return nil, errors.DecodeFailed(path, err)
	}
	sas.TrimStrings = true
	sas.ConvertDates = true

	codebook, err := loadCodebook(path)
	if err != nil {
		f.Close()
		return nil, err
	}

	meta := ports.SourceMeta{
		Columns:     sas.ColumnNames(),
		Labels:      make(map[string]string),
		ValueLabels: codebook.ValueLabels,
	}
	for i, label := range sas.ColumnLabels() {
		if label != "" && i < len(meta.Columns) {
			meta.Labels[meta.Columns[i]] = label
		}
	}
	for name, label := range codebook.Labels {
		meta.Labels[name] = label
	}
	if meta.ValueLabels == nil {
		meta.ValueLabels = make(map[string]map[string]string)
	}

	var selected map[string]struct{}
	if len(columns) > 0 {
		selected = make(map[string]struct{}, len(columns))
		for _, name := range columns {
			selected[name] = struct{}{}
		}
	}

	return &reader{file: f, sas: sas, meta: meta, selected: selected}, nil
}

type reader struct {
	file     *os.File
	sas      *datareader.SAS7BDAT
	meta     ports.SourceMeta
	selected map[string]struct{}
}

func (r *reader) Meta() ports.SourceMeta {
	return r.meta
}

// Next decodes the next window of at most n rows. An exhausted source
// yields an empty table.
func (r *reader) Next(n int) (*table.Table, error) {
	series, err := r.sas.Read(n)
	if err == io.EOF {
		return table.New(), nil
	}
	if err != nil {
		return nil, errors.DecodeFailed(r.file.Name(), err)
	}

	win := table.New()
	for _, ser := range series {
		if r.selected != nil {
			if _, ok := r.selected[ser.Name]; !ok {
				continue
			}
		}
		values, err := seriesValues(ser)
		if err != nil {
			return nil, errors.DecodeFailed(r.file.Name(), err)
		}
		if err := win.AddColumn(ser.Name, values); err != nil {
			return nil, errors.DecodeFailed(r.file.Name(), err)
		}
	}
	return win, nil
}

func (r *reader) Close() error {
	return r.file.Close()
}

// seriesValues converts one decoded series into typed cells. NaN
// numerics and flagged entries become missing; dates render as
// ISO 8601 text.
func seriesValues(ser *datareader.Series) ([]table.Value, error) {
	missing := ser.Missing()

	isMissing := func(i int) bool {
		return missing != nil && i < len(missing) && missing[i]
	}

	switch data := ser.Data().(type) {
	case []float64:
		values := make([]table.Value, len(data))
		for i, f := range data {
			if isMissing(i) || math.IsNaN(f) {
				values[i] = table.Missing()
			} else {
				values[i] = table.Num(f)
			}
		}
		return values, nil
	case []string:
		values := make([]table.Value, len(data))
		for i, s := range data {
			if isMissing(i) || s == "" {
				values[i] = table.Missing()
			} else {
				values[i] = table.Str(s)
			}
		}
		return values, nil
	case []time.Time:
		values := make([]table.Value, len(data))
		for i, ts := range data {
			if isMissing(i) {
				values[i] = table.Missing()
			} else {
				values[i] = table.Str(ts.Format("2006-01-02"))
			}
		}
		return values, nil
	default:
		return nil, errors.New(errors.CodeDecodeFailed, "unsupported series type")
	}
}
