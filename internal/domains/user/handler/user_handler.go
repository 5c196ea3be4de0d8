package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"foodgram-backend/internal/domains/user"
	"foodgram-backend/internal/shared/middleware"
	"foodgram-backend/internal/shared/response"
	"foodgram-backend/internal/shared/utils"
)

const (
	defaultPageSize = 6
	maxPageSize     = 100
)

// UserHandler serves account, profile and avatar endpoints
type UserHandler struct {
	service user.Service
}

func NewUserHandler(service user.Service) *UserHandler {
	return &UserHandler{service: service}
}

// ========================================
// AUTHENTICATION ENDPOINTS
// ========================================

// Register handles POST /users
func (h *UserHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	dto, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Location", "/api/v1/users/"+strconv.FormatInt(dto.ID, 10))
	response.Success(c, http.StatusCreated, dto)
}

// Login handles POST /auth/token/login
func (h *UserHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, token)
}

// Logout handles POST /auth/token/logout
func (h *UserHandler) Logout(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.Unauthorized(c, "Authentication credentials were not provided")
		return
	}

	if err := h.service.Logout(c.Request.Context(), claims); err != nil {
		h.handleError(c, err)
		return
	}

	response.NoContent(c)
}

// ========================================
// PROFILE ENDPOINTS
// ========================================

// ListUsers handles GET /users?page=&limit=
func (h *UserHandler) ListUsers(c *gin.Context) {
	viewerID, _ := middleware.GetUserID(c)
	p := utils.ParsePagination(c, defaultPageSize, maxPageSize)

	users, total, err := h.service.ListUsers(c.Request.Context(), viewerID, p.Page, p.Limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, users, &response.Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: p.TotalPages(total),
	})
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	viewerID, _ := middleware.GetUserID(c)

	profile, err := h.service.GetProfile(c.Request.Context(), viewerID, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, profile)
}

// Me handles GET /users/me
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), userID, userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, profile)
}

// SetPassword handles POST /users/set_password
func (h *UserHandler) SetPassword(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req user.SetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.SetPassword(c.Request.Context(), userID, req); err != nil {
		h.handleError(c, err)
		return
	}

	response.NoContent(c)
}

// ========================================
// AVATAR ENDPOINTS
// ========================================

// GetAvatar handles GET /users/me/avatar
func (h *UserHandler) GetAvatar(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	avatar, err := h.service.GetAvatar(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, avatar)
}

// PutAvatar handles PUT /users/me/avatar
func (h *UserHandler) PutAvatar(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req user.AvatarRequest
	if !bindJSON(c, &req) {
		return
	}

	avatar, err := h.service.SetAvatar(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, avatar)
}

// DeleteAvatar handles DELETE /users/me/avatar
func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.service.DeleteAvatar(c.Request.Context(), userID); err != nil {
		h.handleError(c, err)
		return
	}

	response.NoContent(c)
}

// ========================================
// HELPERS
// ========================================

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.BindError(c, err)
		return false
	}
	return true
}

func requireUser(c *gin.Context) (int64, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication credentials were not provided")
	}
	return userID, ok
}

// pathID parses :id; anything but a positive integer is a 404.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.NotFound(c, "User not found")
		return 0, false
	}
	return id, true
}

// handleError maps domain errors to HTTP responses
func (h *UserHandler) handleError(c *gin.Context, err error) {
	if response.Validation(c, err) {
		return
	}

	switch {
	case errors.Is(err, user.ErrEmailAlreadyExists):
		response.ValidationError(c, response.FieldError("email", err.Error()))
	case errors.Is(err, user.ErrUsernameAlreadyExists):
		response.ValidationError(c, response.FieldError("username", err.Error()))
	case errors.Is(err, user.ErrInvalidAvatar):
		response.ValidationError(c, response.FieldError("avatar", err.Error()))
	case errors.Is(err, user.ErrWrongPassword):
		response.ValidationError(c, response.FieldError("current_password", err.Error()))
	case errors.Is(err, user.ErrInvalidCredentials):
		response.ValidationError(c, response.FieldError("non_field_errors", err.Error()))
	case errors.Is(err, user.ErrAvatarNotSet):
		response.ErrorResponse(c, http.StatusBadRequest, user.ErrCodeAvatarNotSet, "Avatar is not set")
	case errors.Is(err, user.ErrUserNotFound):
		response.NotFound(c, "User not found")
	default:
		log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("user request failed")
		response.InternalServerError(c, "Internal server error")
	}
}
