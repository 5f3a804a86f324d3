// Package export writes a fully-linked inventory to a timestamped xlsx
// file in the configured export directory. It is the last step of a run
// and only ever sees a self-consistent inventory list.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/robyistrate/hsc-to-lci/internal/background"
	"github.com/robyistrate/hsc-to-lci/internal/inventory"
)

const sheetName = "Inventories"

// Filename returns the export file name for a database and date:
// <database>_<dd-mm-yyyy>.xlsx.
func Filename(database string, now time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", database, now.Format("02-01-2006"))
}

// Write persists the inventory list to exportDir, creating the directory if
// needed, and returns the written path.
func Write(datasets []*inventory.Dataset, database, exportDir string, now time.Time) (string, error) {
	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(exportDir, Filename(database, now))

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return "", err
	}

	row := 1
	set := func(values ...any) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return err
		}
		row++
		return nil
	}

	for _, ds := range datasets {
		if err := writeDataset(set, ds); err != nil {
			return "", err
		}
		if err := set(); err != nil { // blank separator row
			return "", err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("writing export file: %w", err)
	}
	return path, nil
}

func writeDataset(set func(...any) error, ds *inventory.Dataset) error {
	header := [][2]any{
		{"Activity", ds.Name},
		{"reference product", ds.ReferenceProduct},
		{"location", ds.Location},
		{"production amount", ds.ProductionAmount},
		{"unit", ds.Unit},
		{"database", ds.Database},
		{"code", ds.Code},
		{"comment", ds.Comment},
	}
	for _, h := range header {
		if err := set(h[0], h[1]); err != nil {
			return err
		}
	}

	if err := set("Exchanges"); err != nil {
		return err
	}
	if err := set("name", "amount", "unit", "type", "reference product",
		"location", "categories", "database", "input code"); err != nil {
		return err
	}

	for _, exc := range ds.Exchanges {
		code := ""
		if exc.Input != nil {
			code = exc.Input.Code
		}
		if err := set(
			exc.Name,
			formatAmount(exc.Amount),
			exc.Unit,
			string(exc.Type),
			exc.Product,
			exc.Location,
			strings.Join(exc.Categories, background.CategorySeparator),
			exc.Database,
			code,
		); err != nil {
			return err
		}
	}
	return nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
