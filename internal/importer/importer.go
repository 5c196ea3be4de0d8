// Package importer loads the ingredient and tag catalogues from CSV files.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lib/pq"

	"foodgram-backend/internal/domains/recipe"
	"foodgram-backend/internal/shared/utils"
	"foodgram-backend/pkg/database"
	"foodgram-backend/pkg/logger"
)

// RowWarning is a skipped input row.
type RowWarning struct {
	Line   int
	Reason string
}

func (w RowWarning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Reason)
}

// ParseIngredients reads "name,measurement_unit" rows.
// Malformed rows are reported and skipped; only I/O errors abort.
func ParseIngredients(r io.Reader) ([]recipe.Ingredient, []RowWarning, error) {
	var (
		out      []recipe.Ingredient
		warnings []RowWarning
	)
	err := eachRow(r, func(line int, row []string) {
		if len(row) != 2 {
			warnings = append(warnings, RowWarning{line, fmt.Sprintf("expected 2 columns, got %d", len(row))})
			return
		}
		name, unit := strings.TrimSpace(row[0]), strings.TrimSpace(row[1])
		if name == "" || unit == "" {
			warnings = append(warnings, RowWarning{line, "blank name or measurement unit"})
			return
		}
		out = append(out, recipe.Ingredient{Name: name, MeasurementUnit: unit})
	}, &warnings)
	return out, warnings, err
}

// ParseTags reads "name[,slug]" rows; a blank slug is derived from the name.
func ParseTags(r io.Reader) ([]recipe.Tag, []RowWarning, error) {
	var (
		out      []recipe.Tag
		warnings []RowWarning
	)
	err := eachRow(r, func(line int, row []string) {
		if len(row) < 1 || len(row) > 2 {
			warnings = append(warnings, RowWarning{line, fmt.Sprintf("expected 1 or 2 columns, got %d", len(row))})
			return
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			warnings = append(warnings, RowWarning{line, "blank name"})
			return
		}
		slug := ""
		if len(row) == 2 {
			slug = strings.TrimSpace(row[1])
		}
		if slug == "" {
			slug = utils.GenerateSlug(name)
		}
		if !utils.IsValidSlug(slug) {
			warnings = append(warnings, RowWarning{line, fmt.Sprintf("invalid slug %q", slug)})
			return
		}
		out = append(out, recipe.Tag{Name: name, Slug: slug})
	}, &warnings)
	return out, warnings, err
}

func eachRow(r io.Reader, fn func(line int, row []string), warnings *[]RowWarning) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			*warnings = append(*warnings, RowWarning{parseErr.Line, parseErr.Err.Error()})
			continue
		}
		if err != nil {
			return fmt.Errorf("read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		fn(line, row)
	}
}

// ========================================
// STORE
// ========================================

// InsertIngredients bulk inserts, skipping (name, unit) pairs that exist.
// Returns the number of new rows.
func InsertIngredients(ctx context.Context, db database.DBTX, items []recipe.Ingredient) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	names := make([]string, len(items))
	units := make([]string, len(items))
	for i, item := range items {
		names[i], units[i] = item.Name, item.MeasurementUnit
	}

	tag, err := db.Exec(ctx, `
		INSERT INTO ingredients (name, measurement_unit)
		SELECT * FROM UNNEST($1::TEXT[], $2::TEXT[])
		ON CONFLICT DO NOTHING`,
		pq.Array(names), pq.Array(units),
	)
	if err != nil {
		return 0, fmt.Errorf("insert ingredients: %w", err)
	}
	return tag.RowsAffected(), nil
}

// InsertTags bulk inserts, skipping names or slugs that exist.
func InsertTags(ctx context.Context, db database.DBTX, items []recipe.Tag) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	names := make([]string, len(items))
	slugs := make([]string, len(items))
	for i, item := range items {
		names[i], slugs[i] = item.Name, item.Slug
	}

	tag, err := db.Exec(ctx, `
		INSERT INTO tags (name, slug)
		SELECT * FROM UNNEST($1::TEXT[], $2::TEXT[])
		ON CONFLICT DO NOTHING`,
		pq.Array(names), pq.Array(slugs),
	)
	if err != nil {
		return 0, fmt.Errorf("insert tags: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Result summarizes one import.
type Result struct {
	Parsed   int
	Inserted int64
	Skipped  int
}

// ImportIngredients parses r and inserts the valid rows, logging each skipped row.
func ImportIngredients(ctx context.Context, db database.DBTX, r io.Reader) (Result, error) {
	items, warnings, err := ParseIngredients(r)
	if err != nil {
		return Result{}, err
	}
	logWarnings("ingredients", warnings)

	inserted, err := InsertIngredients(ctx, db, items)
	if err != nil {
		return Result{}, err
	}
	return Result{Parsed: len(items), Inserted: inserted, Skipped: len(warnings)}, nil
}

func ImportTags(ctx context.Context, db database.DBTX, r io.Reader) (Result, error) {
	items, warnings, err := ParseTags(r)
	if err != nil {
		return Result{}, err
	}
	logWarnings("tags", warnings)

	inserted, err := InsertTags(ctx, db, items)
	if err != nil {
		return Result{}, err
	}
	return Result{Parsed: len(items), Inserted: inserted, Skipped: len(warnings)}, nil
}

func logWarnings(source string, warnings []RowWarning) {
	for _, w := range warnings {
		logger.Warn("row skipped", map[string]interface{}{
			"source": source,
			"line":   w.Line,
			"reason": w.Reason,
		})
	}
}
