// Package report renders the variable store as a tab-separated table or an
// xlsx workbook, one row per variable in store order.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/itsmostafa/modelrun/internal/store"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "results"

// Row is one reported variable.
type Row struct {
	Name  string
	Cells []string
}

// Included reports whether a variable appears in reports. LL and names of
// at most one character are internal.
func Included(name string) bool {
	return name != store.LengthKey && len(name) > 1
}

// Rows returns the reportable rows of s in store order.
func Rows(s *store.Store) []Row {
	var rows []Row
	s.Each(func(name string, v store.Value) bool {
		if Included(name) {
			rows = append(rows, Row{Name: name, Cells: v.Cells()})
		}
		return true
	})
	return rows
}

// WriteTSV writes name<TAB>v1<TAB>...<TAB>vn lines for every reportable variable.
func WriteTSV(w io.Writer, s *store.Store) error {
	bw := bufio.NewWriter(w)
	for _, row := range Rows(s) {
		bw.WriteString(row.Name)
		for _, cell := range row.Cells {
			bw.WriteByte('\t')
			bw.WriteString(cell)
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// TSV returns the tab-separated report as a string.
func TSV(s *store.Store) string {
	var b strings.Builder
	_ = WriteTSV(&b, s)
	return b.String()
}

// WriteXLSX writes the report rows to a single-sheet workbook. Numeric cells
// are stored as numbers.
func WriteXLSX(w io.Writer, s *store.Store) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	rowIdx := 0
	var writeErr error
	s.Each(func(name string, v store.Value) bool {
		if !Included(name) {
			return true
		}
		rowIdx++
		cell, err := excelize.CoordinatesToCellName(1, rowIdx)
		if err != nil {
			writeErr = err
			return false
		}
		values := append([]any{name}, xlsxCells(v)...)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			writeErr = fmt.Errorf("failed to write row %s: %w", name, err)
			return false
		}
		return true
	})
	if writeErr != nil {
		return writeErr
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func xlsxCells(v store.Value) []any {
	switch v.Kind() {
	case store.KindIntegerSeries:
		ints := v.Ints()
		out := make([]any, len(ints))
		for i, n := range ints {
			out[i] = n
		}
		return out
	case store.KindNumericSeries:
		floats := v.Floats()
		out := make([]any, len(floats))
		for i, f := range floats {
			out[i] = f
		}
		return out
	default:
		if f, ok := store.AsFloat(v.Any()); ok {
			return []any{f}
		}
		return []any{v.String()}
	}
}
