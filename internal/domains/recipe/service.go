package recipe

import "context"

// Service is the business contract of the recipe domain.
type Service interface {
	ListTags(ctx context.Context) ([]Tag, error)
	GetTag(ctx context.Context, id int64) (*Tag, error)
	SearchIngredients(ctx context.Context, name string) ([]Ingredient, error)
	GetIngredient(ctx context.Context, id int64) (*Ingredient, error)

	ListRecipes(ctx context.Context, filter ListFilter) ([]RecipeDTO, int, error)
	GetRecipe(ctx context.Context, viewerID, id int64) (*RecipeDTO, error)
	CreateRecipe(ctx context.Context, authorID int64, req RecipeWriteRequest) (*RecipeDTO, error)
	UpdateRecipe(ctx context.Context, userID, id int64, req RecipeWriteRequest) (*RecipeDTO, error)
	DeleteRecipe(ctx context.Context, userID, id int64) error

	ShortLink(ctx context.Context, id int64) (*ShortLinkResponse, error)
	ResolveShortCode(ctx context.Context, code string) (int64, error)

	ShoppingList(ctx context.Context, userID int64) ([]ShoppingItem, error)
}
