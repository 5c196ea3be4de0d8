package recipe

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const shoppingSheet = "Shopping list"

// FormatShoppingList renders one "<name> (<unit>) — <amount>" line per item.
// No items give an empty document.
func FormatShoppingList(items []ShoppingItem) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%s (%s) — %d", item.Name, item.MeasurementUnit, item.Amount)
	}
	return strings.Join(lines, "\n")
}

// WriteShoppingListXLSX writes the same rows as a spreadsheet with a header row.
func WriteShoppingListXLSX(w io.Writer, items []ShoppingItem) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), shoppingSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := []interface{}{"Ingredient", "Unit", "Amount"}
	if err := f.SetSheetRow(shoppingSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, item := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{item.Name, item.MeasurementUnit, item.Amount}
		if err := f.SetSheetRow(shoppingSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(shoppingSheet, "A", "A", 40); err != nil {
		return err
	}

	_, err := f.WriteTo(w)
	return err
}
