package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"foodgram-backend/internal/domains/recipe"
	"foodgram-backend/internal/shared/utils"
	"foodgram-backend/pkg/database"
)

// postgresRepository implements recipe.Repository with pgx
type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) recipe.Repository {
	return &postgresRepository{pool: pool}
}

// viewerExists is a per-row existence check against a (user_id, ...) relation
// table. For viewer 0 the CASE short-circuits and no lookup runs.
func viewerExists(viewer, table, cond string) string {
	return `CASE WHEN ` + viewer + `::BIGINT = 0 THEN FALSE ELSE EXISTS (
			SELECT 1 FROM ` + table + ` x WHERE x.user_id = ` + viewer + ` AND ` + cond + `
		) END`
}

func recipeSelect(viewer string) string {
	return `SELECT r.id, r.author_id, r.name, r.text, r.image, r.cooking_time, r.short_code, r.pub_date,
		u.id, u.email, u.username, u.first_name, u.last_name, u.avatar,
		` + viewerExists(viewer, "subscriptions", "x.author_id = u.id") + `,
		` + viewerExists(viewer, "favorites", "x.recipe_id = r.id") + `,
		` + viewerExists(viewer, "shopping_cart", "x.recipe_id = r.id") + `
	FROM recipes r
	JOIN users u ON u.id = r.author_id`
}

func scanRecipe(row pgx.Row) (*recipe.Recipe, error) {
	var rc recipe.Recipe
	a := &rc.Author
	err := row.Scan(
		&rc.ID, &rc.AuthorID, &rc.Name, &rc.Text, &rc.Image, &rc.CookingTime, &rc.ShortCode, &rc.PubDate,
		&a.ID, &a.Email, &a.Username, &a.FirstName, &a.LastName, &a.Avatar,
		&a.IsSubscribed, &rc.IsFavorited, &rc.IsInShoppingCart,
	)
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

// ========================================
// CATALOGUE
// ========================================

func (r *postgresRepository) ListTags(ctx context.Context) ([]recipe.Tag, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, slug FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	tags := []recipe.Tag{}
	for rows.Next() {
		var t recipe.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (r *postgresRepository) GetTag(ctx context.Context, id int64) (*recipe.Tag, error) {
	var t recipe.Tag
	err := r.pool.QueryRow(ctx, `SELECT id, name, slug FROM tags WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, recipe.ErrTagNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query tag: %w", err)
	}
	return &t, nil
}

// SearchIngredients matches case-insensitively. An empty name lists everything.
func (r *postgresRepository) SearchIngredients(ctx context.Context, name string) ([]recipe.Ingredient, error) {
	needle := escapeLike(strings.ToLower(strings.TrimSpace(name)))

	query := `
		SELECT id, name, measurement_unit
		FROM ingredients
		WHERE LOWER(name) LIKE $2
		ORDER BY CASE WHEN LOWER(name) LIKE $1 THEN 0 ELSE 1 END, name, measurement_unit
	`

	rows, err := r.pool.Query(ctx, query, needle+"%", "%"+needle+"%")
	if err != nil {
		return nil, fmt.Errorf("search ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := []recipe.Ingredient{}
	for rows.Next() {
		var in recipe.Ingredient
		if err := rows.Scan(&in.ID, &in.Name, &in.MeasurementUnit); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		ingredients = append(ingredients, in)
	}
	return ingredients, rows.Err()
}

func (r *postgresRepository) GetIngredient(ctx context.Context, id int64) (*recipe.Ingredient, error) {
	var in recipe.Ingredient
	err := r.pool.QueryRow(ctx, `SELECT id, name, measurement_unit FROM ingredients WHERE id = $1`, id).
		Scan(&in.ID, &in.Name, &in.MeasurementUnit)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, recipe.ErrIngredientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query ingredient: %w", err)
	}
	return &in, nil
}

// escapeLike makes s a literal LIKE operand (backslash is the default escape).
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ========================================
// READS
// ========================================

func (r *postgresRepository) List(ctx context.Context, f recipe.ListFilter) ([]recipe.Recipe, int, error) {
	var args utils.ArgList
	where := []string{"TRUE"}

	if len(f.TagSlugs) > 0 {
		where = append(where, `EXISTS (
			SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
			WHERE rt.recipe_id = r.id AND t.slug = ANY(`+args.Add(pq.Array(f.TagSlugs))+`::TEXT[]))`)
	}
	if f.AuthorID > 0 {
		where = append(where, "r.author_id = "+args.Add(f.AuthorID))
	}
	// relation filters only apply to an identified viewer
	if f.ViewerID > 0 {
		if f.IsFavorited != nil {
			where = append(where, relationFilter("favorites", args.Add(f.ViewerID), *f.IsFavorited))
		}
		if f.IsInShoppingCart != nil {
			where = append(where, relationFilter("shopping_cart", args.Add(f.ViewerID), *f.IsInShoppingCart))
		}
	}
	whereClause := utils.JoinWithAnd(where)

	var total int
	countQuery := `SELECT COUNT(*) FROM recipes r WHERE ` + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count recipes: %w", err)
	}

	viewer := args.Add(f.ViewerID)
	query := recipeSelect(viewer) + `
		WHERE ` + whereClause + `
		ORDER BY r.pub_date DESC, r.id DESC
		LIMIT ` + args.Add(f.Limit) + ` OFFSET ` + args.Add(f.Offset)

	rows, err := r.pool.Query(ctx, query, args.Args()...)
	if err != nil {
		return nil, 0, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	recipes := make([]recipe.Recipe, 0, f.Limit)
	for rows.Next() {
		rc, err := scanRecipe(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, *rc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate recipes: %w", err)
	}

	if err := r.attachRelations(ctx, recipes); err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

func relationFilter(table, viewer string, present bool) string {
	cond := `EXISTS (SELECT 1 FROM ` + table + ` x WHERE x.user_id = ` + viewer + ` AND x.recipe_id = r.id)`
	if present {
		return cond
	}
	return "NOT " + cond
}

func (r *postgresRepository) Get(ctx context.Context, viewerID, id int64) (*recipe.Recipe, error) {
	rc, err := scanRecipe(r.pool.QueryRow(ctx, recipeSelect("$1")+` WHERE r.id = $2`, viewerID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, recipe.ErrRecipeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query recipe: %w", err)
	}

	page := []recipe.Recipe{*rc}
	if err := r.attachRelations(ctx, page); err != nil {
		return nil, err
	}
	return &page[0], nil
}

// attachRelations loads tags and ingredients for a page of recipes in two queries.
func (r *postgresRepository) attachRelations(ctx context.Context, recipes []recipe.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	index := make(map[int64]int, len(recipes))
	ids := make([]int64, len(recipes))
	for i := range recipes {
		index[recipes[i].ID] = i
		ids[i] = recipes[i].ID
		recipes[i].Tags = []recipe.Tag{}
		recipes[i].Ingredients = []recipe.IngredientAmount{}
	}

	tagRows, err := r.pool.Query(ctx, `
		SELECT rt.recipe_id, t.id, t.name, t.slug
		FROM recipe_tags rt
		JOIN tags t ON t.id = rt.tag_id
		WHERE rt.recipe_id = ANY($1::BIGINT[])
		ORDER BY t.name`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load recipe tags: %w", err)
	}
	for tagRows.Next() {
		var recipeID int64
		var t recipe.Tag
		if err := tagRows.Scan(&recipeID, &t.ID, &t.Name, &t.Slug); err != nil {
			tagRows.Close()
			return fmt.Errorf("scan recipe tag: %w", err)
		}
		i := index[recipeID]
		recipes[i].Tags = append(recipes[i].Tags, t)
	}
	tagRows.Close()
	if err := tagRows.Err(); err != nil {
		return fmt.Errorf("iterate recipe tags: %w", err)
	}

	ingredientRows, err := r.pool.Query(ctx, `
		SELECT ri.recipe_id, i.id, i.name, i.measurement_unit, ri.amount
		FROM recipe_ingredients ri
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE ri.recipe_id = ANY($1::BIGINT[])
		ORDER BY ri.id`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load recipe ingredients: %w", err)
	}
	defer ingredientRows.Close()
	for ingredientRows.Next() {
		var recipeID int64
		var in recipe.IngredientAmount
		if err := ingredientRows.Scan(&recipeID, &in.ID, &in.Name, &in.MeasurementUnit, &in.Amount); err != nil {
			return fmt.Errorf("scan recipe ingredient: %w", err)
		}
		i := index[recipeID]
		recipes[i].Ingredients = append(recipes[i].Ingredients, in)
	}
	if err := ingredientRows.Err(); err != nil {
		return fmt.Errorf("iterate recipe ingredients: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetMeta(ctx context.Context, id int64) (*recipe.Meta, error) {
	var m recipe.Meta
	err := r.pool.QueryRow(ctx, `SELECT id, author_id, image, short_code FROM recipes WHERE id = $1`, id).
		Scan(&m.ID, &m.AuthorID, &m.Image, &m.ShortCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, recipe.ErrRecipeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query recipe meta: %w", err)
	}
	return &m, nil
}

func (r *postgresRepository) GetMini(ctx context.Context, id int64) (*recipe.Mini, error) {
	var m recipe.Mini
	err := r.pool.QueryRow(ctx, `SELECT id, author_id, name, image, cooking_time FROM recipes WHERE id = $1`, id).
		Scan(&m.ID, &m.AuthorID, &m.Name, &m.Image, &m.CookingTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, recipe.ErrRecipeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query recipe: %w", err)
	}
	return &m, nil
}

func (r *postgresRepository) FindIDByShortCode(ctx context.Context, code string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM recipes WHERE short_code = $1`, code).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, recipe.ErrRecipeNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("resolve short code: %w", err)
	}
	return id, nil
}

func (r *postgresRepository) ListMiniByAuthors(ctx context.Context, authorIDs []int64, limit int) (map[int64][]recipe.Mini, error) {
	out := make(map[int64][]recipe.Mini, len(authorIDs))
	if len(authorIDs) == 0 {
		return out, nil
	}

	query := `
		SELECT id, author_id, name, image, cooking_time
		FROM (
			SELECT r.id, r.author_id, r.name, r.image, r.cooking_time,
				ROW_NUMBER() OVER (PARTITION BY r.author_id ORDER BY r.pub_date DESC, r.id DESC) AS rn
			FROM recipes r
			WHERE r.author_id = ANY($1::BIGINT[])
		) ranked
		WHERE $2::INT < 0 OR rn <= $2
		ORDER BY author_id, rn
	`

	rows, err := r.pool.Query(ctx, query, pq.Array(authorIDs), limit)
	if err != nil {
		return nil, fmt.Errorf("list author recipes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m recipe.Mini
		if err := rows.Scan(&m.ID, &m.AuthorID, &m.Name, &m.Image, &m.CookingTime); err != nil {
			return nil, fmt.Errorf("scan author recipe: %w", err)
		}
		out[m.AuthorID] = append(out[m.AuthorID], m)
	}
	return out, rows.Err()
}

// ========================================
// WRITES
// ========================================

func (r *postgresRepository) Create(ctx context.Context, d *recipe.Draft, shortCode string) (int64, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (int64, error) {
		if err := checkReferences(ctx, tx, d); err != nil {
			return 0, err
		}

		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO recipes (author_id, name, text, image, cooking_time, short_code)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			d.AuthorID, d.Name, d.Text, d.Image, d.CookingTime, shortCode,
		).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("insert recipe: %w", err)
		}

		if err := writeAssociations(ctx, tx, id, d); err != nil {
			return 0, err
		}
		return id, nil
	})
}

func (r *postgresRepository) Update(ctx context.Context, id int64, d *recipe.Draft) (string, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (string, error) {
		var previous string
		err := tx.QueryRow(ctx, `SELECT image FROM recipes WHERE id = $1 FOR UPDATE`, id).Scan(&previous)
		if errors.Is(err, pgx.ErrNoRows) {
			return "", recipe.ErrRecipeNotFound
		}
		if err != nil {
			return "", fmt.Errorf("lock recipe: %w", err)
		}

		if err := checkReferences(ctx, tx, d); err != nil {
			return "", err
		}

		if _, err := tx.Exec(ctx, `
			UPDATE recipes SET name = $2, text = $3, image = $4, cooking_time = $5
			WHERE id = $1`,
			id, d.Name, d.Text, d.Image, d.CookingTime,
		); err != nil {
			return "", fmt.Errorf("update recipe: %w", err)
		}

		// replaced wholesale, never diffed
		if _, err := tx.Exec(ctx, `DELETE FROM recipe_tags WHERE recipe_id = $1`, id); err != nil {
			return "", fmt.Errorf("clear recipe tags: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = $1`, id); err != nil {
			return "", fmt.Errorf("clear recipe ingredients: %w", err)
		}

		if err := writeAssociations(ctx, tx, id, d); err != nil {
			return "", err
		}
		return previous, nil
	})
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) (string, error) {
	var image string
	err := r.pool.QueryRow(ctx, `DELETE FROM recipes WHERE id = $1 RETURNING image`, id).Scan(&image)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", recipe.ErrRecipeNotFound
	}
	if err != nil {
		return "", fmt.Errorf("delete recipe: %w", err)
	}
	return image, nil
}

// checkReferences reports body ids missing from tags / ingredients.
func checkReferences(ctx context.Context, tx database.DBTX, d *recipe.Draft) error {
	missing, err := missingIDs(ctx, tx, "tags", d.TagIDs)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return &recipe.UnknownReferenceError{Field: "tags", IDs: missing}
	}

	missing, err = missingIDs(ctx, tx, "ingredients", d.IngredientIDs())
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return &recipe.UnknownReferenceError{Field: "ingredients", IDs: missing}
	}
	return nil
}

// missingIDs: table is one of the fixed catalogue tables, never user input.
func missingIDs(ctx context.Context, db database.DBTX, table string, ids []int64) ([]int64, error) {
	query := `
		SELECT want.id
		FROM UNNEST($1::BIGINT[]) AS want(id)
		WHERE NOT EXISTS (SELECT 1 FROM ` + table + ` t WHERE t.id = want.id)
		ORDER BY want.id`

	rows, err := db.Query(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", table, err)
	}
	defer rows.Close()

	var missing []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		missing = append(missing, id)
	}
	return missing, rows.Err()
}

func writeAssociations(ctx context.Context, tx pgx.Tx, recipeID int64, d *recipe.Draft) error {
	if _, err := tx.Exec(ctx,
		`INSERT INTO recipe_tags (recipe_id, tag_id) SELECT $1, UNNEST($2::BIGINT[])`,
		recipeID, pq.Array(d.TagIDs),
	); err != nil {
		return mapReferenceError(err, "insert recipe tags")
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"recipe_ingredients"},
		[]string{"recipe_id", "ingredient_id", "amount"},
		pgx.CopyFromSlice(len(d.Ingredients), func(i int) ([]any, error) {
			item := d.Ingredients[i]
			return []any{recipeID, item.IngredientID, item.Amount}, nil
		}),
	)
	if err != nil {
		return mapReferenceError(err, "insert recipe ingredients")
	}
	return nil
}

// mapReferenceError covers a catalogue row deleted between check and insert.
func mapReferenceError(err error, op string) error {
	if database.IsForeignKeyViolation(err) {
		switch database.ConstraintName(err) {
		case "recipe_tags_tag_id_fkey":
			return &recipe.UnknownReferenceError{Field: "tags"}
		case "recipe_ingredients_ingredient_id_fkey":
			return &recipe.UnknownReferenceError{Field: "ingredients"}
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ========================================
// SHOPPING LIST
// ========================================

func (r *postgresRepository) ShoppingList(ctx context.Context, userID int64) ([]recipe.ShoppingItem, error) {
	query := `
		SELECT i.name, i.measurement_unit, SUM(ri.amount)::BIGINT
		FROM shopping_cart sc
		JOIN recipe_ingredients ri ON ri.recipe_id = sc.recipe_id
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE sc.user_id = $1
		GROUP BY i.name, i.measurement_unit
		ORDER BY i.name, i.measurement_unit
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("aggregate shopping list: %w", err)
	}
	defer rows.Close()

	items := []recipe.ShoppingItem{}
	for rows.Next() {
		var item recipe.ShoppingItem
		if err := rows.Scan(&item.Name, &item.MeasurementUnit, &item.Amount); err != nil {
			return nil, fmt.Errorf("scan shopping item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
