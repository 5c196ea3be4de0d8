package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"foodgram-backend/internal/domains/recipe"
	"foodgram-backend/internal/domains/relation"
	"foodgram-backend/internal/domains/user"
	"foodgram-backend/internal/shared/middleware"
	"foodgram-backend/internal/shared/response"
	"foodgram-backend/internal/shared/utils"
)

const (
	defaultPageSize = 6
	maxPageSize     = 100
)

// RelationHandler serves favorite, shopping cart and subscription toggles
type RelationHandler struct {
	service relation.Service
}

func NewRelationHandler(service relation.Service) *RelationHandler {
	return &RelationHandler{service: service}
}

// ========================================
// RECIPE RELATIONS
// ========================================

// AddRecipe handles POST /recipes/:id/{favorite,shopping_cart}
func (h *RelationHandler) AddRecipe(kind relation.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, targetID, ok := identify(c, "Recipe not found")
		if !ok {
			return
		}

		mini, err := h.service.AddRecipe(c.Request.Context(), kind, userID, targetID)
		if err != nil {
			h.handleError(c, err)
			return
		}
		response.Success(c, http.StatusCreated, mini)
	}
}

// RemoveRecipe handles DELETE /recipes/:id/{favorite,shopping_cart}
func (h *RelationHandler) RemoveRecipe(kind relation.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, targetID, ok := identify(c, "Recipe not found")
		if !ok {
			return
		}

		if err := h.service.RemoveRecipe(c.Request.Context(), kind, userID, targetID); err != nil {
			h.handleError(c, err)
			return
		}
		response.NoContent(c)
	}
}

// ========================================
// SUBSCRIPTIONS
// ========================================

// Subscribe handles POST /users/:id/subscribe?recipes_limit=
func (h *RelationHandler) Subscribe(c *gin.Context) {
	userID, authorID, ok := identify(c, "User not found")
	if !ok {
		return
	}

	dto, err := h.service.Subscribe(c.Request.Context(), userID, authorID, recipesLimit(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, dto)
}

// Unsubscribe handles DELETE /users/:id/subscribe
func (h *RelationHandler) Unsubscribe(c *gin.Context) {
	userID, authorID, ok := identify(c, "User not found")
	if !ok {
		return
	}

	if err := h.service.Unsubscribe(c.Request.Context(), userID, authorID); err != nil {
		h.handleError(c, err)
		return
	}
	response.NoContent(c)
}

// ListSubscriptions handles GET /users/subscriptions?page=&limit=&recipes_limit=
func (h *RelationHandler) ListSubscriptions(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication credentials were not provided")
		return
	}
	p := utils.ParsePagination(c, defaultPageSize, maxPageSize)

	subs, total, err := h.service.ListSubscriptions(c.Request.Context(), userID, p.Page, p.Limit, recipesLimit(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, subs, &response.Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: p.TotalPages(total),
	})
}

// ========================================
// HELPERS
// ========================================

// identify returns the caller and the :id target.
func identify(c *gin.Context, notFound string) (int64, int64, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication credentials were not provided")
		return 0, 0, false
	}
	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || targetID <= 0 {
		response.NotFound(c, notFound)
		return 0, 0, false
	}
	return userID, targetID, true
}

// recipesLimit honours ?recipes_limit only when it is all digits.
func recipesLimit(c *gin.Context) int {
	raw := c.Query("recipes_limit")
	if raw == "" {
		return relation.NoRecipesLimit
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return relation.NoRecipesLimit
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return relation.NoRecipesLimit
	}
	return n
}

// handleError maps domain errors to HTTP responses
func (h *RelationHandler) handleError(c *gin.Context, err error) {
	var relErr *relation.RelationError
	switch {
	case errors.As(err, &relErr) && relErr.Field != "":
		response.ErrorWithDetails(c, http.StatusBadRequest, relErr.Code, relErr.Message,
			response.FieldError(relErr.Field, relErr.Message))
	case errors.As(err, &relErr):
		response.ErrorResponse(c, http.StatusBadRequest, relErr.Code, relErr.Message)
	case errors.Is(err, recipe.ErrRecipeNotFound):
		response.NotFound(c, "Recipe not found")
	case errors.Is(err, user.ErrUserNotFound):
		response.NotFound(c, "User not found")
	default:
		log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("relation request failed")
		response.InternalServerError(c, "Internal server error")
	}
}
