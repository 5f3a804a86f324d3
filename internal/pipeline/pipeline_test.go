package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/robyistrate/hsc-to-lci/internal/apperr"
	"github.com/robyistrate/hsc-to-lci/internal/classify"
	"github.com/robyistrate/hsc-to-lci/internal/config"
	"github.com/robyistrate/hsc-to-lci/internal/inventory"
	"github.com/robyistrate/hsc-to-lci/internal/simulation"
)

// writeSheet fills one sheet with a header and rows.
func writeSheet(t *testing.T, f *excelize.File, sheet string, header []any, rows [][]any) {
	t.Helper()
	if _, err := f.NewSheet(sheet); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		t.Fatal(err)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
}

func saveWorkbook(t *testing.T, f *excelize.File, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()
	return path
}

var streamHeader = []any{"Unit Name", "Stream Name", "Stream Properties",
	"Stream Property Amount", "Stream Property Unit", "Amount", "Unit"}

func writeSimulation(t *testing.T, dir string) string {
	f := excelize.NewFile()
	writeSheet(t, f, "Input Streams", streamHeader, [][]any{
		{"Reactor", "Oxygen", "", "", "", "2", "kg"},
		{"Reactor", "Cooling water", "", "", "", "5", "kg"},
		{"Separator", "Oxygen", "", "", "", "1,5", "kg"},
	})
	writeSheet(t, f, "Output Streams", streamHeader, [][]any{
		{"Reactor", "Flue gas", "Mass Flow", "100", "kg/h", "50", "kg"},
		{"", "", "Carbon dioxide", "20", "kg/h", "", ""},
		{"", "", "Nitrogen oxides", "0", "kg/h", "", ""},
	})
	f.DeleteSheet("Sheet1")
	return saveWorkbook(t, f, dir, "results.xlsx")
}

func writeMapping(t *testing.T, dir string, duplicate bool) string {
	f := excelize.NewFile()
	rows := [][]any{
		{"Oxygen", "technosphere", "market for oxygen", "oxygen", "", ""},
		{"Carbon dioxide", "biosphere", "Carbon dioxide, fossil", "", "air", ""},
		{"Nitrogen oxides", "biosphere", "Nitrogen oxides", "", "air", ""},
	}
	if duplicate {
		rows = append(rows, []any{"Steam", "technosphere", "market for steam", "steam", "", ""})
		rows = append(rows, []any{"Steam", "technosphere", "steam production", "steam", "", ""})
	}
	writeSheet(t, f, "Sheet1", []any{"Stream name", "LCI flow type", "Name", "Reference product", "Category", "Subcategory"}, rows)
	return saveWorkbook(t, f, dir, "mapping.xlsx")
}

func writeBackground(t *testing.T, dir string) string {
	f := excelize.NewFile()
	writeSheet(t, f, "Sheet1", []any{"Name", "Reference product", "Location", "Unit", "Code"}, [][]any{
		{"market for oxygen", "oxygen", "CH", "kilogram", "bg-ox"},
	})
	return saveWorkbook(t, f, dir, "background.xlsx")
}

func writeBiosphere(t *testing.T, dir string) string {
	f := excelize.NewFile()
	writeSheet(t, f, "Sheet1", []any{"Name", "Unit", "Categories", "Code"}, [][]any{
		{"Carbon dioxide, fossil", "kilogram", "air", "ef-co2"},
	})
	return saveWorkbook(t, f, dir, "biosphere.xlsx")
}

func testMetadata(t *testing.T, duplicateMapping bool) *config.Metadata {
	dir := t.TempDir()
	return &config.Metadata{
		System: config.SystemDescription{
			Database:         "my process",
			ActivityName:     "hydrogen production",
			ReferenceProduct: "hydrogen",
			Location:         "CH",
			Comment:          "test",
		},
		Project:           config.Project{Name: "test", BackgroundDatabase: "ei39"},
		BiosphereDatabase: "biosphere3",
		Inputs: config.InputFiles{
			SimulationFile: writeSimulation(t, dir),
			MappingFile:    writeMapping(t, dir, duplicateMapping),
			BackgroundFile: writeBackground(t, dir),
			BiosphereFile:  writeBiosphere(t, dir),
		},
	}
}

func sequentialCodes() inventory.CodeFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("code-%d", n)
	}
}

func TestRunProducesLinkedInventory(t *testing.T) {
	p, err := New(Options{Metadata: testMetadata(t, false), Codes: sequentialCodes()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	datasets, err := p.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Reactor + Separator + aggregate activity.
	if len(datasets) != 3 {
		t.Fatalf("expected 3 datasets, got %d", len(datasets))
	}
	if unlinked := inventory.Unlinked(datasets); len(unlinked) != 0 {
		t.Fatalf("%d exchanges unlinked after a successful run", len(unlinked))
	}

	reactor := datasets[0]
	if reactor.Name != "hydrogen production, Reactor" {
		t.Errorf("reactor dataset name = %q", reactor.Name)
	}
	// production + oxygen input + CO2 emission; the zero-amount NOx row
	// must not appear.
	if len(reactor.Exchanges) != 3 {
		t.Errorf("reactor has %d exchanges, want 3: %+v", len(reactor.Exchanges), reactor.Exchanges)
	}
	for _, exc := range reactor.Exchanges {
		if exc.Amount == 0 {
			t.Errorf("zero-amount exchange leaked into the inventory: %+v", exc)
		}
	}

	separator := datasets[1]
	var oxygen *inventory.Exchange
	for i := range separator.Exchanges {
		if separator.Exchanges[i].Type == inventory.TechnosphereExchange {
			oxygen = &separator.Exchanges[i]
		}
	}
	if oxygen == nil {
		t.Fatal("separator has no technosphere exchange")
	}
	if oxygen.Amount != 1.5 {
		t.Errorf("decimal-comma amount = %g, want 1.5", oxygen.Amount)
	}
	if oxygen.Unit != "kilogram" {
		t.Errorf("unit not canonicalized: %q", oxygen.Unit)
	}
	if oxygen.Input == nil || oxygen.Input.Code != "bg-ox" {
		t.Errorf("oxygen exchange linked to %+v, want bg-ox", oxygen.Input)
	}

	activity := datasets[2]
	if activity.Name != "hydrogen production" {
		t.Errorf("aggregate activity name = %q", activity.Name)
	}
	var refs int
	for _, exc := range activity.Exchanges {
		if exc.Type == inventory.TechnosphereExchange {
			refs++
			if exc.Amount != 1 {
				t.Errorf("aggregate reference amount = %g, want 1", exc.Amount)
			}
		}
	}
	if refs != 2 {
		t.Errorf("aggregate references %d unit processes, want 2", refs)
	}
}

func TestDuplicateMappingFailsBeforeSimulationParsing(t *testing.T) {
	meta := testMetadata(t, true)
	// Point the simulation file somewhere nonexistent: a duplicate mapping
	// row must fail the run before the simulation file is ever opened.
	meta.Inputs.SimulationFile = filepath.Join(t.TempDir(), "missing.xlsx")

	_, err := New(Options{Metadata: meta})

	var cfgErr *apperr.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if cfgErr.Key != "Steam" {
		t.Errorf("ConfigError must name the duplicated stream, got %q", cfgErr.Key)
	}
}

func TestExtractClassifiedRetainsUnmapped(t *testing.T) {
	meta := testMetadata(t, false)
	p, err := New(Options{Metadata: meta})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	streams, err := p.ExtractClassified()
	if err != nil {
		t.Fatalf("ExtractClassified failed: %v", err)
	}

	types := map[classify.LCIType]int{}
	for _, s := range streams {
		types[s.LCI]++
	}
	if types[classify.Technosphere] != 2 {
		t.Errorf("technosphere records = %d, want 2", types[classify.Technosphere])
	}
	if types[classify.Biosphere] != 1 {
		t.Errorf("biosphere records = %d, want 1", types[classify.Biosphere])
	}
	if types[classify.None] != 1 {
		t.Errorf("unmapped records = %d, want 1 (Cooling water)", types[classify.None])
	}

	for _, s := range streams {
		if s.Type == simulation.Output && s.Amount == 0 {
			t.Errorf("zero-amount output record survived extraction: %+v", s)
		}
	}
}
