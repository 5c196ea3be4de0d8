package handler

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"foodgram-backend/internal/domains/recipe"
	"foodgram-backend/internal/shared/middleware"
	"foodgram-backend/internal/shared/response"
	"foodgram-backend/internal/shared/utils"
)

const (
	defaultPageSize = 6
	maxPageSize     = 100

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// RecipeHandler serves tags, ingredients, recipes and short links
type RecipeHandler struct {
	service recipe.Service
}

func NewRecipeHandler(service recipe.Service) *RecipeHandler {
	return &RecipeHandler{service: service}
}

// ========================================
// CATALOGUE
// ========================================

// ListTags handles GET /tags (unpaginated)
func (h *RecipeHandler) ListTags(c *gin.Context) {
	tags, err := h.service.ListTags(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, tags)
}

// GetTag handles GET /tags/:id
func (h *RecipeHandler) GetTag(c *gin.Context) {
	id, ok := pathID(c, "Tag not found")
	if !ok {
		return
	}

	tag, err := h.service.GetTag(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, tag)
}

// SearchIngredients handles GET /ingredients?name=
func (h *RecipeHandler) SearchIngredients(c *gin.Context) {
	ingredients, err := h.service.SearchIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ingredients)
}

// GetIngredient handles GET /ingredients/:id
func (h *RecipeHandler) GetIngredient(c *gin.Context) {
	id, ok := pathID(c, "Ingredient not found")
	if !ok {
		return
	}

	ingredient, err := h.service.GetIngredient(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ingredient)
}

// ========================================
// RECIPES
// ========================================

// ListRecipes handles GET /recipes
// Query: tags (repeatable slug), author, is_favorited, is_in_shopping_cart, page, limit
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	viewerID, _ := middleware.GetUserID(c)
	p := utils.ParsePagination(c, defaultPageSize, maxPageSize)

	filter := recipe.ListFilter{
		ViewerID:         viewerID,
		TagSlugs:         c.QueryArray("tags"),
		IsFavorited:      utils.QueryOptionalBool(c, "is_favorited"),
		IsInShoppingCart: utils.QueryOptionalBool(c, "is_in_shopping_cart"),
		Limit:            p.Limit,
		Offset:           p.Offset(),
	}
	if author, ok := utils.QueryInt64(c, "author"); ok {
		filter.AuthorID = author
	}

	recipes, total, err := h.service.ListRecipes(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, recipes, &response.Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: p.TotalPages(total),
	})
}

// GetRecipe handles GET /recipes/:id
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c, "Recipe not found")
	if !ok {
		return
	}
	viewerID, _ := middleware.GetUserID(c)

	dto, err := h.service.GetRecipe(c.Request.Context(), viewerID, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, dto)
}

// CreateRecipe handles POST /recipes
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req recipe.RecipeWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	dto, err := h.service.CreateRecipe(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Location", "/api/v1/recipes/"+strconv.FormatInt(dto.ID, 10))
	response.Success(c, http.StatusCreated, dto)
}

// UpdateRecipe handles PATCH /recipes/:id (author only)
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "Recipe not found")
	if !ok {
		return
	}

	var req recipe.RecipeWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	dto, err := h.service.UpdateRecipe(c.Request.Context(), userID, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, dto)
}

// DeleteRecipe handles DELETE /recipes/:id (author only)
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "Recipe not found")
	if !ok {
		return
	}

	if err := h.service.DeleteRecipe(c.Request.Context(), userID, id); err != nil {
		h.handleError(c, err)
		return
	}
	response.NoContent(c)
}

// ========================================
// SHORT LINKS
// ========================================

// GetLink handles GET /recipes/:id/get-link
func (h *RecipeHandler) GetLink(c *gin.Context) {
	id, ok := pathID(c, "Recipe not found")
	if !ok {
		return
	}

	link, err := h.service.ShortLink(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, link)
}

// RedirectShortLink handles GET /s/:code/.
// Unknown codes redirect to the frontend not-found page.
func (h *RecipeHandler) RedirectShortLink(c *gin.Context) {
	id, err := h.service.ResolveShortCode(c.Request.Context(), c.Param("code"))
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, "/recipes/"+strconv.FormatInt(id, 10)+"/")
	case errors.Is(err, recipe.ErrRecipeNotFound):
		c.Redirect(http.StatusFound, "/404/")
	default:
		h.handleError(c, err)
	}
}

// ========================================
// SHOPPING LIST
// ========================================

// DownloadShoppingCart handles GET /recipes/download_shopping_cart[?format=xlsx]
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	items, err := h.service.ShoppingList(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	if c.Query("format") == "xlsx" {
		var buf bytes.Buffer
		if err := recipe.WriteShoppingListXLSX(&buf, items); err != nil {
			h.handleError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="shopping_cart.xlsx"`)
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping_cart.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(recipe.FormatShoppingList(items)))
}

// ========================================
// HELPERS
// ========================================

func requireUser(c *gin.Context) (int64, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication credentials were not provided")
	}
	return userID, ok
}

func pathID(c *gin.Context, notFound string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.NotFound(c, notFound)
		return 0, false
	}
	return id, true
}

// handleError maps domain errors to HTTP responses
func (h *RecipeHandler) handleError(c *gin.Context, err error) {
	if response.Validation(c, err) {
		return
	}

	var unknown *recipe.UnknownReferenceError
	switch {
	case errors.As(err, &unknown):
		response.ValidationError(c, response.FieldError(unknown.Field, unknown.Error()))
	case errors.Is(err, recipe.ErrInvalidImage):
		response.ValidationError(c, response.FieldError("image", "upload a valid image"))
	case errors.Is(err, recipe.ErrNotAuthor):
		response.Forbidden(c, "Only the author can modify this recipe")
	case errors.Is(err, recipe.ErrRecipeNotFound):
		response.NotFound(c, "Recipe not found")
	case errors.Is(err, recipe.ErrTagNotFound):
		response.NotFound(c, "Tag not found")
	case errors.Is(err, recipe.ErrIngredientNotFound):
		response.NotFound(c, "Ingredient not found")
	default:
		log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("recipe request failed")
		response.InternalServerError(c, "Internal server error")
	}
}
