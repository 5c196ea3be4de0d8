//go:build integration

package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodgram-backend/internal/testinfra"
)

func TestImportIngredients_Idempotent(t *testing.T) {
	pool := testinfra.StartPostgres(t)
	ctx := context.Background()
	input := "flour,g\nsugar,g\nflour,g\nbad row\n"

	res, err := ImportIngredients(ctx, pool, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, Result{Parsed: 3, Inserted: 2, Skipped: 1}, res)

	res, err = ImportIngredients(ctx, pool, strings.NewReader(input))
	require.NoError(t, err)
	assert.Zero(t, res.Inserted)
}

func TestImportTags(t *testing.T) {
	pool := testinfra.StartPostgres(t)
	ctx := context.Background()

	res, err := ImportTags(ctx, pool, strings.NewReader("Breakfast,breakfast\nLunch\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Inserted)

	var slug string
	require.NoError(t, pool.QueryRow(ctx, `SELECT slug FROM tags WHERE name = 'Lunch'`).Scan(&slug))
	assert.Equal(t, "lunch", slug)
}
