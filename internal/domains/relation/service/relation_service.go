package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"foodgram-backend/internal/domains/recipe"
	"foodgram-backend/internal/domains/relation"
)

type relationService struct {
	repo    relation.Repository
	recipes relation.RecipeReader
	urlFor  func(string) string
}

// NewRelationService; urlFor resolves image keys (ImageStore.URL).
func NewRelationService(repo relation.Repository, recipes relation.RecipeReader, urlFor func(string) string) relation.Service {
	return &relationService{repo: repo, recipes: recipes, urlFor: urlFor}
}

// ========================================
// RECIPE RELATIONS (favorites, shopping cart)
// ========================================

func (s *relationService) AddRecipe(ctx context.Context, kind relation.Kind, userID, recipeID int64) (*recipe.MiniDTO, error) {
	mini, err := s.recipes.GetMini(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Add(ctx, kind, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, relation.NewAlreadyExistsError(kind)
	}

	log.Debug().Str("relation", kind.Name).Int64("user_id", userID).Int64("recipe_id", recipeID).Msg("relation added")
	dto := mini.ToDTO(s.urlFor)
	return &dto, nil
}

func (s *relationService) RemoveRecipe(ctx context.Context, kind relation.Kind, userID, recipeID int64) error {
	if _, err := s.recipes.GetMini(ctx, recipeID); err != nil {
		return err
	}
	return s.remove(ctx, kind, userID, recipeID)
}

// ========================================
// SUBSCRIPTIONS
// ========================================

// Subscribe rejects self-subscription before anything is written.
func (s *relationService) Subscribe(ctx context.Context, userID, authorID int64, recipesLimit int) (*relation.SubscriptionDTO, error) {
	if _, err := s.repo.GetAuthor(ctx, userID, authorID); err != nil {
		return nil, err
	}
	if userID == authorID {
		return nil, relation.NewSelfSubscriptionError()
	}

	created, err := s.repo.Add(ctx, relation.Subscriptions, userID, authorID)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, relation.NewAlreadyExistsError(relation.Subscriptions)
	}

	// re-read so is_subscribed and recipes_count reflect the new row
	author, err := s.repo.GetAuthor(ctx, userID, authorID)
	if err != nil {
		return nil, err
	}
	out, err := s.render(ctx, []relation.Author{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *relationService) Unsubscribe(ctx context.Context, userID, authorID int64) error {
	if _, err := s.repo.GetAuthor(ctx, userID, authorID); err != nil {
		return err
	}
	return s.remove(ctx, relation.Subscriptions, userID, authorID)
}

func (s *relationService) ListSubscriptions(ctx context.Context, userID int64, page, limit, recipesLimit int) ([]relation.SubscriptionDTO, int, error) {
	authors, total, err := s.repo.ListSubscriptions(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}

	out, err := s.render(ctx, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// render attaches each author's newest recipes in one query.
func (s *relationService) render(ctx context.Context, authors []relation.Author, recipesLimit int) ([]relation.SubscriptionDTO, error) {
	ids := make([]int64, len(authors))
	for i := range authors {
		ids[i] = authors[i].ID
	}

	byAuthor, err := s.recipes.ListMiniByAuthors(ctx, ids, recipesLimit)
	if err != nil {
		return nil, err
	}

	out := make([]relation.SubscriptionDTO, len(authors))
	for i := range authors {
		out[i] = authors[i].ToDTO(byAuthor[authors[i].ID], s.urlFor)
	}
	return out, nil
}

func (s *relationService) remove(ctx context.Context, kind relation.Kind, userID, targetID int64) error {
	removed, err := s.repo.Remove(ctx, kind, userID, targetID)
	if err != nil {
		return err
	}
	if !removed {
		return relation.NewNotInRelationError(kind)
	}
	return nil
}
