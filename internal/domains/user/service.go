package user

import (
	"context"

	"foodgram-backend/pkg/jwt"
)

// Service is the business contract of the user domain.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*UserDTO, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error

	GetProfile(ctx context.Context, viewerID, userID int64) (*ProfileDTO, error)
	ListUsers(ctx context.Context, viewerID int64, page, limit int) ([]ProfileDTO, int, error)

	SetPassword(ctx context.Context, userID int64, req SetPasswordRequest) error

	GetAvatar(ctx context.Context, userID int64) (*AvatarResponse, error)
	SetAvatar(ctx context.Context, userID int64, req AvatarRequest) (*AvatarResponse, error)
	DeleteAvatar(ctx context.Context, userID int64) error
}

// ImageStore stores normalized images and resolves their URLs.
type ImageStore interface {
	Decode(payload string) ([]byte, error)
	Put(ctx context.Context, folder string, data []byte) (string, error)
	Remove(ctx context.Context, key string) error
	URL(key string) string
}

// TokenRevoker invalidates an issued token before it expires.
type TokenRevoker interface {
	Revoke(ctx context.Context, claims *jwt.Claims) error
}
