package recipe

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"foodgram-backend/internal/domains/user"
)

// ========================================
// WRITE DTOs
// ========================================

// RecipeWriteRequest - POST /recipes, PATCH /recipes/:id.
// Both replace tags and ingredients wholesale; image is a base64 data URL.
type RecipeWriteRequest struct {
	Name        string                    `json:"name"`
	Text        string                    `json:"text"`
	CookingTime int                       `json:"cooking_time"`
	Tags        []int64                   `json:"tags"`
	Ingredients []IngredientAmountRequest `json:"ingredients"`
	Image       string                    `json:"image"`
}

type IngredientAmountRequest struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

const (
	msgCookingTime = "cooking time must be between 1 and 1440 minutes"
	msgAmount      = "amount must be between 1 and 1000"
)

func (r *RecipeWriteRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Text = strings.TrimSpace(r.Text)
}

func (r RecipeWriteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.RuneLength(0, MaxNameLength),
		),
		validation.Field(&r.Text, validation.Required.Error("text is required")),
		validation.Field(&r.CookingTime,
			validation.Required.Error(msgCookingTime),
			validation.Min(MinCookingTime).Error(msgCookingTime),
			validation.Max(MaxCookingTime).Error(msgCookingTime),
		),
		validation.Field(&r.Tags,
			validation.Required.Error("at least one tag is required"),
			validation.By(uniqueTags),
		),
		validation.Field(&r.Ingredients,
			validation.Required.Error("at least one ingredient is required"),
			validation.By(uniqueIngredients),
		),
		validation.Field(&r.Image, validation.Required.Error("image is required")),
	)
}

func (r IngredientAmountRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID,
			validation.Required.Error("ingredient id is required"),
			validation.Min(int64(1)).Error("ingredient id must be positive"),
		),
		validation.Field(&r.Amount,
			validation.Required.Error(msgAmount),
			validation.Min(MinAmount).Error(msgAmount),
			validation.Max(MaxAmount).Error(msgAmount),
		),
	)
}

func uniqueTags(value interface{}) error {
	ids, _ := value.([]int64)
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return errors.New("tags must not repeat")
		}
		seen[id] = struct{}{}
	}
	return nil
}

// uniqueIngredients compares the referenced ingredient, not the list position.
func uniqueIngredients(value interface{}) error {
	items, _ := value.([]IngredientAmountRequest)
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			return errors.New("ingredients must not repeat")
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}

// Draft converts a validated request; imageKey is the stored image.
func (r RecipeWriteRequest) Draft(authorID int64, imageKey string) *Draft {
	d := &Draft{
		AuthorID:    authorID,
		Name:        r.Name,
		Text:        r.Text,
		Image:       imageKey,
		CookingTime: r.CookingTime,
		TagIDs:      append([]int64(nil), r.Tags...),
		Ingredients: make([]IngredientRef, len(r.Ingredients)),
	}
	for i, item := range r.Ingredients {
		d.Ingredients[i] = IngredientRef{IngredientID: item.ID, Amount: item.Amount}
	}
	return d
}

// IngredientIDs lists the referenced ingredients in request order.
func (d *Draft) IngredientIDs() []int64 {
	ids := make([]int64, len(d.Ingredients))
	for i, item := range d.Ingredients {
		ids[i] = item.IngredientID
	}
	return ids
}

// ========================================
// READ DTOs
// ========================================

type RecipeDTO struct {
	ID               int64              `json:"id"`
	Tags             []Tag              `json:"tags"`
	Author           user.ProfileDTO    `json:"author"`
	Ingredients      []IngredientAmount `json:"ingredients"`
	IsFavorited      bool               `json:"is_favorited"`
	IsInShoppingCart bool               `json:"is_in_shopping_cart"`
	Name             string             `json:"name"`
	Image            *string            `json:"image"`
	Text             string             `json:"text"`
	CookingTime      int                `json:"cooking_time"`
}

type MiniDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Image       *string `json:"image"`
	CookingTime int     `json:"cooking_time"`
}

type ShortLinkResponse struct {
	ShortLink string `json:"short-link"`
}

func (r *Recipe) ToDTO(urlFor func(string) string) RecipeDTO {
	tags := r.Tags
	if tags == nil {
		tags = []Tag{}
	}
	ingredients := r.Ingredients
	if ingredients == nil {
		ingredients = []IngredientAmount{}
	}
	return RecipeDTO{
		ID:               r.ID,
		Tags:             tags,
		Author:           r.Author.ToProfileDTO(urlFor),
		Ingredients:      ingredients,
		IsFavorited:      r.IsFavorited,
		IsInShoppingCart: r.IsInShoppingCart,
		Name:             r.Name,
		Image:            user.MediaURL(r.Image, urlFor),
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}

func (m *Mini) ToDTO(urlFor func(string) string) MiniDTO {
	return MiniDTO{
		ID:          m.ID,
		Name:        m.Name,
		Image:       user.MediaURL(m.Image, urlFor),
		CookingTime: m.CookingTime,
	}
}
