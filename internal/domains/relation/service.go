package relation

import (
	"context"

	"foodgram-backend/internal/domains/recipe"
)

// Service toggles favorites, shopping cart entries and subscriptions.
type Service interface {
	AddRecipe(ctx context.Context, kind Kind, userID, recipeID int64) (*recipe.MiniDTO, error)
	RemoveRecipe(ctx context.Context, kind Kind, userID, recipeID int64) error

	Subscribe(ctx context.Context, userID, authorID int64, recipesLimit int) (*SubscriptionDTO, error)
	Unsubscribe(ctx context.Context, userID, authorID int64) error
	ListSubscriptions(ctx context.Context, userID int64, page, limit, recipesLimit int) ([]SubscriptionDTO, int, error)
}

// RecipeReader is the part of the recipe store the toggles need.
type RecipeReader interface {
	GetMini(ctx context.Context, id int64) (*recipe.Mini, error)
	ListMiniByAuthors(ctx context.Context, authorIDs []int64, limit int) (map[int64][]recipe.Mini, error)
}
