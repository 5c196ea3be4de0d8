package relation

import (
	"foodgram-backend/internal/domains/recipe"
	"foodgram-backend/internal/domains/user"
)

// SubscriptionDTO is an author profile with (a prefix of) their recipes.
type SubscriptionDTO struct {
	user.ProfileDTO
	Recipes      []recipe.MiniDTO `json:"recipes"`
	RecipesCount int              `json:"recipes_count"`
}

func (a *Author) ToDTO(recipes []recipe.Mini, urlFor func(string) string) SubscriptionDTO {
	minis := make([]recipe.MiniDTO, len(recipes))
	for i := range recipes {
		minis[i] = recipes[i].ToDTO(urlFor)
	}
	return SubscriptionDTO{
		ProfileDTO:   a.ToProfileDTO(urlFor),
		Recipes:      minis,
		RecipesCount: a.RecipesCount,
	}
}
