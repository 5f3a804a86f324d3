// Package background provides read-only access to the background inventory
// database and the environmental-flow reference list. Both are loaded once
// per run from xlsx exports and never mutated.
package background

import (
	"fmt"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/robyistrate/hsc-to-lci/internal/apperr"
)

// Dataset is one background inventory entry.
type Dataset struct {
	Name             string
	ReferenceProduct string
	Location         string
	Unit             string
	Database         string
	Code             string
}

// Flow is one environmental-flow reference entry.
type Flow struct {
	Name       string
	Unit       string
	Categories []string
	Code       string
}

// CategorySeparator joins category tuples in the reference spreadsheet
// ("air::urban air close to ground").
const CategorySeparator = "::"

// Store holds the background inventory entries for one database.
type Store struct {
	Database string
	Entries  []Dataset
}

// NewStore builds an in-memory store, stamping every entry with the
// database name.
func NewStore(database string, entries []Dataset) *Store {
	stamped := make([]Dataset, len(entries))
	for i, e := range entries {
		e.Database = database
		stamped[i] = e
	}
	return &Store{Database: database, Entries: stamped}
}

// Flows holds the environmental-flow reference list.
type Flows struct {
	Entries []Flow
}

// Find returns the flows matching name, unit and category tuple exactly.
func (f *Flows) Find(name, unit string, categories []string) []Flow {
	var out []Flow
	for _, e := range f.Entries {
		if e.Name == name && e.Unit == unit && slices.Equal(e.Categories, categories) {
			out = append(out, e)
		}
	}
	return out
}

// background export columns, matched by header text
const (
	colName       = "Name"
	colRefProduct = "Reference product"
	colLocation   = "Location"
	colUnit       = "Unit"
	colCode       = "Code"
	colCategories = "Categories"
)

// LoadStore reads a background inventory export: one sheet, one dataset per
// row with Name / Reference product / Location / Unit / Code columns.
func LoadStore(path, database string) (*Store, error) {
	rows, header, sheet, err := readSheet(path, colName, colRefProduct, colLocation, colUnit, colCode)
	if err != nil {
		return nil, err
	}

	var entries []Dataset
	for _, row := range rows {
		name := cell(row, header[colName])
		if name == "" {
			continue
		}
		entries = append(entries, Dataset{
			Name:             name,
			ReferenceProduct: cell(row, header[colRefProduct]),
			Location:         cell(row, header[colLocation]),
			Unit:             cell(row, header[colUnit]),
			Code:             cell(row, header[colCode]),
		})
	}
	if len(entries) == 0 {
		return nil, &apperr.SchemaError{Sheet: sheet, Missing: []string{"dataset rows"}}
	}
	return NewStore(database, entries), nil
}

// LoadFlows reads the environmental-flow reference export: Name / Unit /
// Categories / Code columns, categories joined with "::".
func LoadFlows(path string) (*Flows, error) {
	rows, header, sheet, err := readSheet(path, colName, colUnit, colCategories, colCode)
	if err != nil {
		return nil, err
	}

	var entries []Flow
	for _, row := range rows {
		name := cell(row, header[colName])
		if name == "" {
			continue
		}
		entries = append(entries, Flow{
			Name:       name,
			Unit:       cell(row, header[colUnit]),
			Categories: splitCategories(cell(row, header[colCategories])),
			Code:       cell(row, header[colCode]),
		})
	}
	if len(entries) == 0 {
		return nil, &apperr.SchemaError{Sheet: sheet, Missing: []string{"flow rows"}}
	}
	return &Flows{Entries: entries}, nil
}

func splitCategories(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, CategorySeparator)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func readSheet(path string, required ...string) (rows [][]string, header map[string]int, sheet string, err error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	sheet = f.GetSheetName(0)
	all, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, sheet, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(all) == 0 {
		return nil, nil, sheet, &apperr.SchemaError{Sheet: sheet, Missing: []string{"header row"}}
	}

	header = map[string]int{}
	for i, c := range all[0] {
		header[strings.TrimSpace(c)] = i
	}
	var missing []string
	for _, col := range required {
		if _, ok := header[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, nil, sheet, &apperr.SchemaError{Sheet: sheet, Missing: missing}
	}
	return all[1:], header, sheet, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
