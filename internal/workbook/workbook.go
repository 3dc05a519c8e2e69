package workbook

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/nconklindev/ttvfill/internal/types"

	"github.com/xuri/excelize/v2"
)

// Workbook is an opened template. Only single-column ranges are ever
// modified; sheet structure, formulas and styles are left alone.
type Workbook struct {
	file *excelize.File
}

// Open opens an existing xlsx template.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, types.IOError(err, "cannot open template %s", path)
	}
	return &Workbook{file: f}, nil
}

func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// RequireSheets fails with the list of available sheets if any name is
// missing. Matching is exact.
func (w *Workbook) RequireSheets(names ...string) error {
	available := w.SheetNames()
	for _, name := range names {
		if !slices.Contains(available, name) {
			return sheetNotFound(name, available)
		}
	}
	return nil
}

// WriteColumn writes values to target.Column starting at target.StartRow,
// one row per value. Existing cell styles are kept. Returns the number of
// cells written.
func (w *Workbook) WriteColumn(target types.SheetTarget, values []float64) (int, error) {
	if err := w.RequireSheets(target.Sheet); err != nil {
		return 0, err
	}
	col, err := ParseColumn(target.Column)
	if err != nil {
		return 0, err
	}
	target.Column = col
	if target.StartRow < 1 {
		return 0, types.ConfigError("Start row must be between 1 and %d.", excelize.TotalRows)
	}
	if last := target.StartRow + len(values) - 1; last > excelize.TotalRows {
		return 0, types.ConfigError("%d values starting at row %d run past the last row (%d).",
			len(values), target.StartRow, excelize.TotalRows)
	}

	for i, v := range values {
		cell := target.Cell(i)
		if err := w.file.SetCellFloat(target.Sheet, cell, v, -1, 64); err != nil {
			return i, cellError("write", target.Sheet, cell, err)
		}
	}

	return len(values), nil
}

// ReadColumn reads n numeric cells back from target. Empty cells read as 0.
func (w *Workbook) ReadColumn(target types.SheetTarget, n int) ([]float64, error) {
	if err := w.RequireSheets(target.Sheet); err != nil {
		return nil, err
	}

	values := make([]float64, n)
	for i := range values {
		cell := target.Cell(i)
		raw, err := w.file.GetCellValue(target.Sheet, cell, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, cellError("read", target.Sheet, cell, err)
		}
		if strings.TrimSpace(raw) == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, types.FormatError("%s!%s: %q is not a number", target.Sheet, cell, raw)
		}
		values[i] = v
	}

	return values, nil
}

// SaveAs writes the workbook to path. The template file itself is not touched.
func (w *Workbook) SaveAs(path string) error {
	if err := w.file.SaveAs(path); err != nil {
		return types.IOError(err, "cannot save %s", path)
	}
	return nil
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

func sheetNotFound(name string, available []string) error {
	return types.ConfigError("Sheet %q not found. Available sheets: %s", name, strings.Join(available, ", "))
}

// cellError reports a cell reference excelize refused. The reference is
// built from the sheet target, so it is a configuration problem.
func cellError(op, sheet, cell string, err error) error {
	return &types.Error{
		Kind: types.KindConfiguration,
		Msg:  fmt.Sprintf("cannot %s %s!%s", op, sheet, cell),
		Err:  err,
	}
}
