package relation

import (
	"foodgram-backend/internal/domains/recipe"
	"foodgram-backend/internal/domains/user"
)

// Kind describes one (user_id, target) join table.
// Every relation table has a unique (user_id, TargetColumn) pair.
type Kind struct {
	Name           string
	Table          string
	TargetColumn   string
	ExistsMessage  string
	MissingMessage string
	// ErrTargetNotFound is returned when the target row does not exist
	ErrTargetNotFound error
}

var (
	Favorites = Kind{
		Name:              "favorite",
		Table:             "favorites",
		TargetColumn:      "recipe_id",
		ExistsMessage:     "Recipe is already in favorites",
		MissingMessage:    "Recipe is not in favorites",
		ErrTargetNotFound: recipe.ErrRecipeNotFound,
	}
	ShoppingCart = Kind{
		Name:              "shopping_cart",
		Table:             "shopping_cart",
		TargetColumn:      "recipe_id",
		ExistsMessage:     "Recipe is already in the shopping cart",
		MissingMessage:    "Recipe is not in the shopping cart",
		ErrTargetNotFound: recipe.ErrRecipeNotFound,
	}
	Subscriptions = Kind{
		Name:              "subscription",
		Table:             "subscriptions",
		TargetColumn:      "author_id",
		ExistsMessage:     "You are already subscribed to this user",
		MissingMessage:    "You are not subscribed to this user",
		ErrTargetNotFound: user.ErrUserNotFound,
	}
)

// Author is a followed user with the size of their recipe list.
type Author struct {
	user.Profile
	RecipesCount int
}

// NoRecipesLimit keeps every recipe of an author in subscription payloads.
const NoRecipesLimit = -1
