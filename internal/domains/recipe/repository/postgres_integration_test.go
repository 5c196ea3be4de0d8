//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodgram-backend/internal/domains/recipe"
	"foodgram-backend/internal/testinfra"
)

type seed struct {
	pool              *pgxpool.Pool
	repo              recipe.Repository
	author, viewer    int64
	breakfast, dinner int64
	flour, egg        int64
}

func newSeed(t *testing.T) *seed {
	pool := testinfra.StartPostgres(t)
	return &seed{
		pool:      pool,
		repo:      NewPostgresRepository(pool),
		author:    testinfra.CreateUser(t, pool, "author"),
		viewer:    testinfra.CreateUser(t, pool, "viewer"),
		breakfast: testinfra.CreateTag(t, pool, "Breakfast", "breakfast"),
		dinner:    testinfra.CreateTag(t, pool, "Dinner", "dinner"),
		flour:     testinfra.CreateIngredient(t, pool, "flour", "g"),
		egg:       testinfra.CreateIngredient(t, pool, "egg", "pcs"),
	}
}

var codeSeq int

func (s *seed) create(t *testing.T, name string, tags []int64, ingredients ...recipe.IngredientRef) int64 {
	t.Helper()
	codeSeq++
	id, err := s.repo.Create(context.Background(), &recipe.Draft{
		AuthorID:    s.author,
		Name:        name,
		Text:        "text",
		Image:       "recipes/images/" + name + ".jpg",
		CookingTime: 10,
		TagIDs:      tags,
		Ingredients: ingredients,
	}, fmt.Sprintf("code%d", codeSeq))
	require.NoError(t, err)
	return id
}

func (s *seed) exec(t *testing.T, sql string, args ...any) {
	t.Helper()
	_, err := s.pool.Exec(context.Background(), sql, args...)
	require.NoError(t, err)
}

func TestPostgres_CreateAndAnnotate(t *testing.T) {
	s := newSeed(t)
	ctx := context.Background()

	id := s.create(t, "pancakes", []int64{s.breakfast},
		recipe.IngredientRef{IngredientID: s.flour, Amount: 200},
		recipe.IngredientRef{IngredientID: s.egg, Amount: 2},
	)
	s.exec(t, `INSERT INTO favorites (user_id, recipe_id) VALUES ($1, $2)`, s.viewer, id)

	anon, err := s.repo.Get(ctx, 0, id)
	require.NoError(t, err)
	assert.False(t, anon.IsFavorited)
	assert.Equal(t, "author", anon.Author.Username)
	require.Len(t, anon.Ingredients, 2)
	assert.Equal(t, "flour", anon.Ingredients[0].Name)
	assert.Equal(t, 200, anon.Ingredients[0].Amount)
	assert.Equal(t, []recipe.Tag{{ID: s.breakfast, Name: "Breakfast", Slug: "breakfast"}}, anon.Tags)

	seen, err := s.repo.Get(ctx, s.viewer, id)
	require.NoError(t, err)
	assert.True(t, seen.IsFavorited)
	assert.False(t, seen.IsInShoppingCart)

	found, err := s.repo.FindIDByShortCode(ctx, seen.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, id, found)
}

func TestPostgres_UnknownReferencesWriteNothing(t *testing.T) {
	s := newSeed(t)
	ctx := context.Background()

	_, err := s.repo.Create(ctx, &recipe.Draft{
		AuthorID: s.author, Name: "ghost", Text: "t", Image: "k", CookingTime: 5,
		TagIDs:      []int64{s.breakfast, 9999},
		Ingredients: []recipe.IngredientRef{{IngredientID: s.flour, Amount: 1}},
	}, "ghost")

	var unknown *recipe.UnknownReferenceError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "tags", unknown.Field)
	assert.Equal(t, []int64{9999}, unknown.IDs)

	var count int
	require.NoError(t, s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&count))
	assert.Zero(t, count)
}

func TestPostgres_UpdateReplacesAtomically(t *testing.T) {
	s := newSeed(t)
	ctx := context.Background()

	id := s.create(t, "omelette", []int64{s.breakfast}, recipe.IngredientRef{IngredientID: s.egg, Amount: 3})

	// a failing update leaves the old associations intact
	_, err := s.repo.Update(ctx, id, &recipe.Draft{
		Name: "broken", Text: "t", Image: "new", CookingTime: 5,
		TagIDs:      []int64{s.dinner},
		Ingredients: []recipe.IngredientRef{{IngredientID: 9999, Amount: 1}},
	})
	var unknown *recipe.UnknownReferenceError
	require.ErrorAs(t, err, &unknown)

	rc, err := s.repo.Get(ctx, 0, id)
	require.NoError(t, err)
	assert.Equal(t, "omelette", rc.Name)
	require.Len(t, rc.Tags, 1)
	assert.Equal(t, s.breakfast, rc.Tags[0].ID)

	prev, err := s.repo.Update(ctx, id, &recipe.Draft{
		Name: "frittata", Text: "t", Image: "recipes/images/new.jpg", CookingTime: 25,
		TagIDs:      []int64{s.dinner},
		Ingredients: []recipe.IngredientRef{{IngredientID: s.flour, Amount: 50}},
	})
	require.NoError(t, err)
	assert.Equal(t, "recipes/images/omelette.jpg", prev)

	rc, err = s.repo.Get(ctx, 0, id)
	require.NoError(t, err)
	assert.Equal(t, "frittata", rc.Name)
	require.Len(t, rc.Tags, 1)
	assert.Equal(t, s.dinner, rc.Tags[0].ID)
	require.Len(t, rc.Ingredients, 1)
	assert.Equal(t, "flour", rc.Ingredients[0].Name)
}

func TestPostgres_ListFilters(t *testing.T) {
	s := newSeed(t)
	ctx := context.Background()

	a := s.create(t, "a", []int64{s.breakfast}, recipe.IngredientRef{IngredientID: s.flour, Amount: 1})
	b := s.create(t, "b", []int64{s.dinner}, recipe.IngredientRef{IngredientID: s.flour, Amount: 1})
	c := s.create(t, "c", []int64{s.breakfast, s.dinner}, recipe.IngredientRef{IngredientID: s.egg, Amount: 1})
	s.exec(t, `INSERT INTO favorites (user_id, recipe_id) VALUES ($1, $2)`, s.viewer, b)

	ids := func(rs []recipe.Recipe) []int64 {
		out := make([]int64, len(rs))
		for i := range rs {
			out[i] = rs[i].ID
		}
		return out
	}

	all, total, err := s.repo.List(ctx, recipe.ListFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []int64{c, b, a}, ids(all))

	byTag, total, err := s.repo.List(ctx, recipe.ListFilter{TagSlugs: []string{"breakfast"}, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []int64{c, a}, ids(byTag))

	yes, no := true, false
	fav, _, err := s.repo.List(ctx, recipe.ListFilter{ViewerID: s.viewer, IsFavorited: &yes, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []int64{b}, ids(fav))
	assert.True(t, fav[0].IsFavorited)

	notFav, total, err := s.repo.List(ctx, recipe.ListFilter{ViewerID: s.viewer, IsFavorited: &no, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []int64{c, a}, ids(notFav))

	page, total, err := s.repo.List(ctx, recipe.ListFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []int64{b}, ids(page))
}

func TestPostgres_ShoppingListAggregates(t *testing.T) {
	s := newSeed(t)
	ctx := context.Background()

	one := s.create(t, "bread", []int64{s.breakfast}, recipe.IngredientRef{IngredientID: s.flour, Amount: 200})
	two := s.create(t, "cake", []int64{s.dinner},
		recipe.IngredientRef{IngredientID: s.flour, Amount: 300},
		recipe.IngredientRef{IngredientID: s.egg, Amount: 4},
	)
	s.exec(t, `INSERT INTO shopping_cart (user_id, recipe_id) VALUES ($1, $2), ($1, $3)`, s.viewer, one, two)

	items, err := s.repo.ShoppingList(ctx, s.viewer)
	require.NoError(t, err)
	assert.Equal(t, []recipe.ShoppingItem{
		{Name: "egg", MeasurementUnit: "pcs", Amount: 4},
		{Name: "flour", MeasurementUnit: "g", Amount: 500},
	}, items)

	empty, err := s.repo.ShoppingList(ctx, s.author)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPostgres_ListMiniByAuthors(t *testing.T) {
	s := newSeed(t)
	ctx := context.Background()

	for _, name := range []string{"one", "two", "three"} {
		s.create(t, name, []int64{s.breakfast}, recipe.IngredientRef{IngredientID: s.flour, Amount: 1})
	}

	limited, err := s.repo.ListMiniByAuthors(ctx, []int64{s.author, s.viewer}, 2)
	require.NoError(t, err)
	require.Len(t, limited[s.author], 2)
	assert.Equal(t, "three", limited[s.author][0].Name)
	assert.Empty(t, limited[s.viewer])

	all, err := s.repo.ListMiniByAuthors(ctx, []int64{s.author}, -1)
	require.NoError(t, err)
	assert.Len(t, all[s.author], 3)

	none, err := s.repo.ListMiniByAuthors(ctx, []int64{s.author}, 0)
	require.NoError(t, err)
	assert.Empty(t, none[s.author])
}

func TestPostgres_DeleteReturnsImage(t *testing.T) {
	s := newSeed(t)
	ctx := context.Background()

	id := s.create(t, "soup", []int64{s.dinner}, recipe.IngredientRef{IngredientID: s.egg, Amount: 1})

	image, err := s.repo.Delete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "recipes/images/soup.jpg", image)

	_, err = s.repo.Delete(ctx, id)
	assert.ErrorIs(t, err, recipe.ErrRecipeNotFound)
}

func TestPostgres_SearchIngredients(t *testing.T) {
	s := newSeed(t)
	testinfra.CreateIngredient(t, s.pool, "buckwheat flour", "g")
	testinfra.CreateIngredient(t, s.pool, "100%_juice", "ml")

	got, err := s.repo.SearchIngredients(context.Background(), "FLO")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "flour", got[0].Name)
	assert.Equal(t, "buckwheat flour", got[1].Name)

	// LIKE metacharacters match literally
	got, err = s.repo.SearchIngredients(context.Background(), "%_")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "100%_juice", got[0].Name)
}
