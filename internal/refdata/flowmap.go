package refdata

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/robyistrate/hsc-to-lci/internal/apperr"
)

// FlowType distinguishes technosphere from biosphere flows in the mapping.
type FlowType string

const (
	Technosphere FlowType = "technosphere"
	Biosphere    FlowType = "biosphere"
)

// FlowMapEntry maps one simulator stream name onto an LCI flow.
type FlowMapEntry struct {
	Name             string // simulator stream name (mapping index)
	FlowType         FlowType
	MatchedName      string // background dataset or biosphere flow name
	ReferenceProduct string // technosphere only
	Category         string // biosphere only
	Subcategory      string // biosphere only, may be empty
}

// Categories returns the biosphere category tuple for the entry: one element
// when the subcategory is absent, two otherwise.
func (e FlowMapEntry) Categories() []string {
	if strings.TrimSpace(e.Subcategory) == "" {
		return []string{e.Category}
	}
	return []string{e.Category, e.Subcategory}
}

// FlowMap indexes FlowMapEntry by simulator stream name.
type FlowMap map[string]FlowMapEntry

// Lookup returns the entry for a stream name.
func (m FlowMap) Lookup(streamName string) (FlowMapEntry, bool) {
	e, ok := m[streamName]
	return e, ok
}

// IsTechnosphere reports whether the stream maps to a technosphere flow.
func (m FlowMap) IsTechnosphere(streamName string) bool {
	e, ok := m[streamName]
	return ok && e.FlowType == Technosphere
}

// IsBiosphere reports whether the stream maps to a biosphere flow.
func (m FlowMap) IsBiosphere(streamName string) bool {
	e, ok := m[streamName]
	return ok && e.FlowType == Biosphere
}

// mapping sheet columns, matched by header text
const (
	colFlowType    = "LCI flow type"
	colMatchedName = "Name"
	colRefProduct  = "Reference product"
	colCategory    = "Category"
	colSubcategory = "Subcategory"
)

// LoadFlowMap reads the stream-to-flow mapping from the first sheet of an
// xlsx file. The first column is the stream name (index). Duplicate stream
// names are a fatal configuration error.
func LoadFlowMap(path string) (FlowMap, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening mapping file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading mapping sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, &apperr.SchemaError{Sheet: sheet, Missing: []string{"header row"}}
	}

	header := map[string]int{}
	for i, cell := range rows[0] {
		header[strings.TrimSpace(cell)] = i
	}
	var missing []string
	for _, col := range []string{colFlowType, colMatchedName, colRefProduct, colCategory, colSubcategory} {
		if _, ok := header[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &apperr.SchemaError{Sheet: sheet, Missing: missing}
	}

	cell := func(row []string, col string) string {
		i := header[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	m := FlowMap{}
	seen := map[string]int{}
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			continue
		}
		seen[name]++

		m[name] = FlowMapEntry{
			Name:             name,
			FlowType:         FlowType(strings.ToLower(cell(row, colFlowType))),
			MatchedName:      cell(row, colMatchedName),
			ReferenceProduct: cell(row, colRefProduct),
			Category:         cell(row, colCategory),
			Subcategory:      cell(row, colSubcategory),
		}
	}

	var duplicated []string
	for name, n := range seen {
		if n > 1 {
			duplicated = append(duplicated, name)
		}
	}
	if len(duplicated) > 0 {
		sort.Strings(duplicated)
		return nil, apperr.Config(strings.Join(duplicated, ", "), "mapping file contains duplicated stream names")
	}

	return m, nil
}
