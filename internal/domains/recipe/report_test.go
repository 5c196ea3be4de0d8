package recipe

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestFormatShoppingList(t *testing.T) {
	items := []ShoppingItem{
		{Name: "flour", MeasurementUnit: "g", Amount: 500},
		{Name: "salt", MeasurementUnit: "pinch", Amount: 2},
	}

	assert.Equal(t, "flour (g) — 500\nsalt (pinch) — 2", FormatShoppingList(items))
	assert.Equal(t, "", FormatShoppingList(nil))
}

func TestWriteShoppingListXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteShoppingListXLSX(&buf, []ShoppingItem{
		{Name: "flour", MeasurementUnit: "g", Amount: 500},
	}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(shoppingSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Ingredient", "Unit", "Amount"},
		{"flour", "g", "500"},
	}, rows)
}

func TestWriteShoppingListXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteShoppingListXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(shoppingSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
