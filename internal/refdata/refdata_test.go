package refdata

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/robyistrate/hsc-to-lci/internal/apperr"
)

func TestLoadUnitMap(t *testing.T) {
	m, err := LoadUnitMap()
	if err != nil {
		t.Fatalf("LoadUnitMap failed: %v", err)
	}
	if got := m.Canonical("kg"); got != "kilogram" {
		t.Errorf("Canonical(kg) = %q, want kilogram", got)
	}
	if got := m.Canonical("furlong"); got != "furlong" {
		t.Errorf("unmapped unit must pass through, got %q", got)
	}
}

func TestLoadGasTable(t *testing.T) {
	g, err := LoadGasTable()
	if err != nil {
		t.Fatalf("LoadGasTable failed: %v", err)
	}
	if _, ok := g.Density("Natural Gas"); !ok {
		t.Error("density lookup must be case-insensitive")
	}
	if _, ok := g.Density("steel"); ok {
		t.Error("unexpected density for a non-gas stream")
	}
}

// writeMapping creates a mapping workbook in the test's temp dir.
func writeMapping(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	header := []any{"Stream name", "LCI flow type", "Name", "Reference product", "Category", "Subcategory"}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatal(err)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}

	path := filepath.Join(t.TempDir(), "mapping.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFlowMap(t *testing.T) {
	path := writeMapping(t, [][]any{
		{"Natural gas", "technosphere", "market for natural gas, high pressure", "natural gas, high pressure", "", ""},
		{"Carbon dioxide", "biosphere", "Carbon dioxide, fossil", "", "air", ""},
		{"Heat, waste", "biosphere", "Heat, waste", "", "air", "urban air close to ground"},
	})

	m, err := LoadFlowMap(path)
	if err != nil {
		t.Fatalf("LoadFlowMap failed: %v", err)
	}
	if len(m) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(m))
	}

	gas, ok := m.Lookup("Natural gas")
	if !ok || gas.FlowType != Technosphere {
		t.Errorf("Natural gas entry wrong: %+v", gas)
	}

	co2, _ := m.Lookup("Carbon dioxide")
	if cats := co2.Categories(); len(cats) != 1 || cats[0] != "air" {
		t.Errorf("single-category tuple wrong: %v", cats)
	}

	heat, _ := m.Lookup("Heat, waste")
	if cats := heat.Categories(); len(cats) != 2 || cats[1] != "urban air close to ground" {
		t.Errorf("two-category tuple wrong: %v", cats)
	}
}

func TestLoadFlowMapDuplicateStream(t *testing.T) {
	path := writeMapping(t, [][]any{
		{"Steam", "technosphere", "market for steam", "steam", "", ""},
		{"Water", "technosphere", "market for water", "water", "", ""},
		{"Steam", "technosphere", "steam production", "steam", "", ""},
	})

	_, err := LoadFlowMap(path)

	var cfgErr *apperr.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if cfgErr.Key != "Steam" {
		t.Errorf("ConfigError must name the duplicated stream, got %q", cfgErr.Key)
	}
}

func TestLoadFlowMapMissingColumns(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	header := []any{"Stream name", "Name"}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "mapping.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFlowMap(path)
	var schemaErr *apperr.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}
