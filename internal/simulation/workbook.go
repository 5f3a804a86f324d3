package simulation

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/robyistrate/hsc-to-lci/internal/apperr"
)

// Sheet names expected in the simulation results workbook.
const (
	InputSheet  = "Input Streams"
	OutputSheet = "Output Streams"
)

// Column headers used by the extractor. The simulator export carries more
// columns ("Use Exergy", "LCA Equivalent", …); those are ignored.
const (
	ColUnitName       = "Unit Name"
	ColStreamName     = "Stream Name"
	ColProperty       = "Stream Properties"
	ColPropertyAmount = "Stream Property Amount"
	ColPropertyUnit   = "Stream Property Unit"
	ColAmount         = "Amount"
	ColUnit           = "Unit"
)

// Table is one parsed worksheet: a header row plus data rows. Rows may be
// shorter than the header; missing trailing cells read as empty.
type Table struct {
	Sheet  string
	Header []string
	Rows   [][]string
}

// Col returns the index of a header column, or -1 when absent.
func (t *Table) Col(name string) int {
	for i, h := range t.Header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// Cell returns the trimmed cell at (row, col index), empty when out of range.
func (t *Table) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// requireCols verifies that every named column is present.
func (t *Table) requireCols(names ...string) error {
	var missing []string
	for _, n := range names {
		if t.Col(n) < 0 {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return &apperr.SchemaError{Sheet: t.Sheet, Missing: missing}
	}
	return nil
}

// Workbook holds the two stream tables of one simulation export.
type Workbook struct {
	Inputs  Table
	Outputs Table
}

// ReadWorkbook opens a simulation results file and reads both stream sheets.
func ReadWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening simulation file: %w", err)
	}
	defer f.Close()

	wb := &Workbook{}
	for _, s := range []struct {
		name string
		dst  *Table
	}{
		{InputSheet, &wb.Inputs},
		{OutputSheet, &wb.Outputs},
	} {
		rows, err := f.GetRows(s.name)
		if err != nil {
			return nil, &apperr.SchemaError{Sheet: s.name, Missing: []string{"sheet"}}
		}
		if len(rows) == 0 {
			return nil, &apperr.SchemaError{Sheet: s.name, Missing: []string{"header row"}}
		}
		s.dst.Sheet = s.name
		s.dst.Header = rows[0]
		s.dst.Rows = rows[1:]
	}
	return wb, nil
}
