// Package excel exports tables as xlsx workbooks for manual review.
package excel

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"surveypipe/domain/table"
	"surveypipe/internal/errors"
)

const sheetName = "Data"

// Writer persists tables as single-sheet xlsx files
type Writer struct{}

// NewWriter creates an xlsx table writer
func NewWriter() *Writer {
	return &Writer{}
}

// Write saves the table to path, creating parent directories. Numeric
// cells keep their numeric type; missing cells are left empty.
func (w *Writer) Write(t *table.Table, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating directory for %s", path)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return errors.Wrapf(err, "creating sheet for %s", path)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return errors.Wrapf(err, "removing default sheet for %s", path)
	}

	names := t.ColumnNames()
	for c, name := range names {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return errors.Wrapf(err, "addressing header cell for %s", path)
		}
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return errors.Wrapf(err, "writing header of %s", path)
		}
	}

	for c := 0; c < t.NumCols(); c++ {
		col := t.ColumnAt(c)
		for r, v := range col.Values {
			if v.IsMissing() {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return errors.Wrapf(err, "addressing cell for %s", path)
			}
			var cellValue interface{}
			if v.IsNumeric() {
				cellValue = v.Num
			} else {
				cellValue = v.Str
			}
			if err := f.SetCellValue(sheetName, cell, cellValue); err != nil {
				return errors.Wrapf(err, "writing cell of %s", path)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "saving %s", path)
	}
	return nil
}
