package service

import (
	"context"
	"fmt"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"foodgram-backend/internal/domains/recipe"
	"foodgram-backend/internal/domains/user"
)

type recipeService struct {
	repo      recipe.Repository
	images    user.ImageStore
	publicURL string
	newCode   func() string
}

// Option customizes the service.
type Option func(*recipeService)

// WithShortCodes replaces the xid short code generator.
func WithShortCodes(gen func() string) Option {
	return func(s *recipeService) { s.newCode = gen }
}

// NewRecipeService; publicURL prefixes short links (e.g. https://foodgram.example).
func NewRecipeService(repo recipe.Repository, images user.ImageStore, publicURL string, opts ...Option) recipe.Service {
	s := &recipeService{
		repo:      repo,
		images:    images,
		publicURL: publicURL,
		newCode:   func() string { return xid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ========================================
// CATALOGUE
// ========================================

func (s *recipeService) ListTags(ctx context.Context) ([]recipe.Tag, error) {
	return s.repo.ListTags(ctx)
}

func (s *recipeService) GetTag(ctx context.Context, id int64) (*recipe.Tag, error) {
	return s.repo.GetTag(ctx, id)
}

func (s *recipeService) SearchIngredients(ctx context.Context, name string) ([]recipe.Ingredient, error) {
	return s.repo.SearchIngredients(ctx, name)
}

func (s *recipeService) GetIngredient(ctx context.Context, id int64) (*recipe.Ingredient, error) {
	return s.repo.GetIngredient(ctx, id)
}

// ========================================
// READS
// ========================================

func (s *recipeService) ListRecipes(ctx context.Context, filter recipe.ListFilter) ([]recipe.RecipeDTO, int, error) {
	if filter.ViewerID == 0 {
		filter.IsFavorited = nil
		filter.IsInShoppingCart = nil
	}

	recipes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]recipe.RecipeDTO, len(recipes))
	for i := range recipes {
		out[i] = recipes[i].ToDTO(s.images.URL)
	}
	return out, total, nil
}

func (s *recipeService) GetRecipe(ctx context.Context, viewerID, id int64) (*recipe.RecipeDTO, error) {
	rc, err := s.repo.Get(ctx, viewerID, id)
	if err != nil {
		return nil, err
	}
	dto := rc.ToDTO(s.images.URL)
	return &dto, nil
}

// ========================================
// WRITES
// ========================================

func (s *recipeService) CreateRecipe(ctx context.Context, authorID int64, req recipe.RecipeWriteRequest) (*recipe.RecipeDTO, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key, err := s.storeImage(ctx, req.Image)
	if err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, req.Draft(authorID, key), s.newCode())
	if err != nil {
		s.removeQuietly(ctx, key)
		return nil, err
	}

	log.Info().Int64("recipe_id", id).Int64("author_id", authorID).Msg("recipe created")
	return s.GetRecipe(ctx, authorID, id)
}

// UpdateRecipe checks existence, then authorship, then the body.
func (s *recipeService) UpdateRecipe(ctx context.Context, userID, id int64, req recipe.RecipeWriteRequest) (*recipe.RecipeDTO, error) {
	if err := s.authorize(ctx, userID, id); err != nil {
		return nil, err
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key, err := s.storeImage(ctx, req.Image)
	if err != nil {
		return nil, err
	}

	previous, err := s.repo.Update(ctx, id, req.Draft(userID, key))
	if err != nil {
		s.removeQuietly(ctx, key)
		return nil, err
	}
	if previous != key {
		s.removeQuietly(ctx, previous)
	}

	return s.GetRecipe(ctx, userID, id)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, userID, id int64) error {
	if err := s.authorize(ctx, userID, id); err != nil {
		return err
	}

	image, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.removeQuietly(ctx, image)

	log.Info().Int64("recipe_id", id).Int64("author_id", userID).Msg("recipe deleted")
	return nil
}

func (s *recipeService) authorize(ctx context.Context, userID, id int64) error {
	meta, err := s.repo.GetMeta(ctx, id)
	if err != nil {
		return err
	}
	if meta.AuthorID != userID {
		return recipe.ErrNotAuthor
	}
	return nil
}

// storeImage decodes before upload so a bad payload never reaches storage.
func (s *recipeService) storeImage(ctx context.Context, payload string) (string, error) {
	data, err := s.images.Decode(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", recipe.ErrInvalidImage, err)
	}
	return s.images.Put(ctx, recipe.ImageFolder, data)
}

func (s *recipeService) removeQuietly(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.images.Remove(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to remove recipe image")
	}
}

// ========================================
// SHORT LINKS
// ========================================

func (s *recipeService) ShortLink(ctx context.Context, id int64) (*recipe.ShortLinkResponse, error) {
	meta, err := s.repo.GetMeta(ctx, id)
	if err != nil {
		return nil, err
	}
	return &recipe.ShortLinkResponse{ShortLink: s.publicURL + "/s/" + meta.ShortCode + "/"}, nil
}

func (s *recipeService) ResolveShortCode(ctx context.Context, code string) (int64, error) {
	return s.repo.FindIDByShortCode(ctx, code)
}

// ========================================
// SHOPPING LIST
// ========================================

func (s *recipeService) ShoppingList(ctx context.Context, userID int64) ([]recipe.ShoppingItem, error) {
	return s.repo.ShoppingList(ctx, userID)
}
