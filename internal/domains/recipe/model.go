package recipe

import (
	"time"

	"foodgram-backend/internal/domains/user"
)

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Ingredient struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// IngredientAmount is an ingredient line of a recipe.
type IngredientAmount struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// Recipe is the read model. Image is an object storage key.
// IsFavorited and IsInShoppingCart are relative to the viewer of the query.
type Recipe struct {
	ID          int64
	AuthorID    int64
	Name        string
	Text        string
	Image       string
	CookingTime int
	ShortCode   string
	PubDate     time.Time

	Author      user.Profile
	Tags        []Tag
	Ingredients []IngredientAmount

	IsFavorited      bool
	IsInShoppingCart bool
}

// Mini is the short form used by favorites, cart and subscriptions.
type Mini struct {
	ID          int64
	AuthorID    int64
	Name        string
	Image       string
	CookingTime int
}

// Meta is what ownership checks need to know about a stored recipe.
type Meta struct {
	ID        int64
	AuthorID  int64
	Image     string
	ShortCode string
}

// Draft is a validated write: the full recipe state after create or update.
type Draft struct {
	AuthorID    int64
	Name        string
	Text        string
	Image       string
	CookingTime int
	TagIDs      []int64
	Ingredients []IngredientRef
}

type IngredientRef struct {
	IngredientID int64
	Amount       int
}

// ShoppingItem is one aggregated line of the shopping list.
type ShoppingItem struct {
	Name            string
	MeasurementUnit string
	Amount          int64
}

// ListFilter drives the recipe list query.
// ViewerID 0 is anonymous; the relation flags are ignored for it.
type ListFilter struct {
	ViewerID         int64
	TagSlugs         []string
	AuthorID         int64
	IsFavorited      *bool
	IsInShoppingCart *bool
	Limit            int
	Offset           int
}

const (
	MinCookingTime = 1
	MaxCookingTime = 1440

	MinAmount = 1
	MaxAmount = 1000

	MaxNameLength = 256

	ImageFolder = "recipes/images"
)
