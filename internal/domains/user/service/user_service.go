package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"foodgram-backend/internal/domains/user"
	"foodgram-backend/pkg/jwt"
)

const defaultBcryptCost = 12

type userService struct {
	repo       user.Repository
	jwtManager *jwt.Manager
	revoker    user.TokenRevoker
	images     user.ImageStore
	bcryptCost int
}

// Option customizes the service (tests lower the bcrypt cost).
type Option func(*userService)

func WithBcryptCost(cost int) Option {
	return func(s *userService) { s.bcryptCost = cost }
}

func NewUserService(
	repo user.Repository,
	jwtManager *jwt.Manager,
	revoker user.TokenRevoker,
	images user.ImageStore,
	opts ...Option,
) user.Service {
	s := &userService{
		repo:       repo,
		jwtManager: jwtManager,
		revoker:    revoker,
		images:     images,
		bcryptCost: defaultBcryptCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ========================================
// AUTHENTICATION
// ========================================

func (s *userService) Register(ctx context.Context, req user.RegisterRequest) (*user.UserDTO, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &user.User{
		Email:        req.Email,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	log.Info().Int64("user_id", u.ID).Str("username", u.Username).Msg("user registered")

	dto := u.ToDTO()
	return &dto, nil
}

func (s *userService) Login(ctx context.Context, req user.LoginRequest) (*user.TokenResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.FindByEmail(ctx, req.Email)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, user.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, user.ErrInvalidCredentials
	}

	token, err := s.jwtManager.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &user.TokenResponse{AuthToken: token}, nil
}

func (s *userService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if err := s.revoker.Revoke(ctx, claims); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// ========================================
// PROFILES
// ========================================

func (s *userService) GetProfile(ctx context.Context, viewerID, userID int64) (*user.ProfileDTO, error) {
	p, err := s.repo.GetProfile(ctx, viewerID, userID)
	if err != nil {
		return nil, err
	}
	dto := p.ToProfileDTO(s.images.URL)
	return &dto, nil
}

func (s *userService) ListUsers(ctx context.Context, viewerID int64, page, limit int) ([]user.ProfileDTO, int, error) {
	profiles, total, err := s.repo.List(ctx, viewerID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}

	out := make([]user.ProfileDTO, len(profiles))
	for i := range profiles {
		out[i] = profiles[i].ToProfileDTO(s.images.URL)
	}
	return out, total, nil
}

func (s *userService) SetPassword(ctx context.Context, userID int64, req user.SetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return user.ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, userID, string(hash))
}

// ========================================
// AVATAR
// ========================================

func (s *userService) GetAvatar(ctx context.Context, userID int64) (*user.AvatarResponse, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &user.AvatarResponse{Avatar: user.MediaURL(u.Avatar, s.images.URL)}, nil
}

// SetAvatar decodes first, so an undecodable payload never reaches storage.
func (s *userService) SetAvatar(ctx context.Context, userID int64, req user.AvatarRequest) (*user.AvatarResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	data, err := s.images.Decode(req.Avatar)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", user.ErrInvalidAvatar, err)
	}

	key, err := s.images.Put(ctx, user.AvatarFolder, data)
	if err != nil {
		return nil, err
	}

	previous, err := s.repo.SetAvatar(ctx, userID, key)
	if err != nil {
		s.removeQuietly(ctx, key)
		return nil, err
	}
	s.removeQuietly(ctx, previous)

	return &user.AvatarResponse{Avatar: user.MediaURL(key, s.images.URL)}, nil
}

func (s *userService) DeleteAvatar(ctx context.Context, userID int64) error {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.Avatar == "" {
		return user.ErrAvatarNotSet
	}

	previous, err := s.repo.SetAvatar(ctx, userID, "")
	if err != nil {
		return err
	}
	if previous == "" {
		return user.ErrAvatarNotSet
	}
	s.removeQuietly(ctx, previous)
	return nil
}

// removeQuietly drops an orphaned object; the row is already consistent.
func (s *userService) removeQuietly(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.images.Remove(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to remove avatar object")
	}
}
