package recipe

import "context"

// Repository is the data access contract of the recipe domain.
type Repository interface {
	// Catalogue
	ListTags(ctx context.Context) ([]Tag, error)
	GetTag(ctx context.Context, id int64) (*Tag, error)
	// SearchIngredients returns prefix matches first, then substring matches.
	SearchIngredients(ctx context.Context, name string) ([]Ingredient, error)
	GetIngredient(ctx context.Context, id int64) (*Ingredient, error)

	// Reads. viewerID 0 means anonymous.
	List(ctx context.Context, filter ListFilter) ([]Recipe, int, error)
	Get(ctx context.Context, viewerID, id int64) (*Recipe, error)
	GetMeta(ctx context.Context, id int64) (*Meta, error)
	GetMini(ctx context.Context, id int64) (*Mini, error)
	FindIDByShortCode(ctx context.Context, code string) (int64, error)
	// ListMiniByAuthors returns up to limit newest recipes per author (limit < 0: all).
	ListMiniByAuthors(ctx context.Context, authorIDs []int64, limit int) (map[int64][]Mini, error)

	// Writes run in one transaction each.
	// Unknown tag/ingredient ids yield *UnknownReferenceError.
	Create(ctx context.Context, d *Draft, shortCode string) (int64, error)
	// Update replaces scalars, tags and ingredients; returns the previous image key.
	Update(ctx context.Context, id int64, d *Draft) (string, error)
	// Delete returns the image key of the removed recipe.
	Delete(ctx context.Context, id int64) (string, error)

	// ShoppingList aggregates the user's cart by (name, unit), ordered by name.
	ShoppingList(ctx context.Context, userID int64) ([]ShoppingItem, error)
}
