package user

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// ========================================
// AUTH DTOs
// ========================================

// RegisterRequest - POST /users
type RegisterRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// Normalize trims surrounding whitespace.
func (r *RegisterRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.Username = strings.TrimSpace(r.Username)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			validation.RuneLength(0, MaxEmailLength),
			is.EmailFormat.Error("enter a valid email address"),
		),
		validation.Field(&r.Username,
			validation.Required.Error("username is required"),
			validation.RuneLength(0, MaxUsernameLength),
			validation.Match(usernamePattern).Error("username may contain only letters, digits and @/./+/-/_"),
		),
		validation.Field(&r.FirstName,
			validation.Required.Error("first name is required"),
			validation.RuneLength(0, MaxNameLength),
		),
		validation.Field(&r.LastName,
			validation.Required.Error("last name is required"),
			validation.RuneLength(0, MaxNameLength),
		),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.RuneLength(MinPasswordLength, MaxPasswordLength).Error("password must be 8-128 characters"),
		),
	)
}

// LoginRequest - POST /auth/token/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, validation.Required),
	)
}

// TokenResponse mirrors the djoser token login body
type TokenResponse struct {
	AuthToken string `json:"auth_token"`
}

// SetPasswordRequest - POST /users/set_password
type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r SetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required.Error("current password is required")),
		validation.Field(&r.NewPassword,
			validation.Required.Error("new password is required"),
			validation.RuneLength(MinPasswordLength, MaxPasswordLength).Error("password must be 8-128 characters"),
		),
	)
}

// AvatarRequest - PUT /users/me/avatar, avatar is a base64 data URL
type AvatarRequest struct {
	Avatar string `json:"avatar"`
}

func (r AvatarRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Avatar, validation.Required.Error("avatar is required")),
	)
}

// ========================================
// RESPONSE DTOs
// ========================================

// UserDTO is returned by registration
type UserDTO struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ProfileDTO is the public user representation.
// Avatar is null when unset.
type ProfileDTO struct {
	ID           int64   `json:"id"`
	Email        string  `json:"email"`
	Username     string  `json:"username"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Avatar       *string `json:"avatar"`
	IsSubscribed bool    `json:"is_subscribed"`
}

type AvatarResponse struct {
	Avatar *string `json:"avatar"`
}

func (u *User) ToDTO() UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// ToProfileDTO renders p, resolving the avatar key with urlFor.
func (p *Profile) ToProfileDTO(urlFor func(string) string) ProfileDTO {
	return ProfileDTO{
		ID:           p.ID,
		Email:        p.Email,
		Username:     p.Username,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Avatar:       MediaURL(p.Avatar, urlFor),
		IsSubscribed: p.IsSubscribed,
	}
}

// MediaURL maps a storage key to a URL, nil for "".
func MediaURL(key string, urlFor func(string) string) *string {
	if key == "" || urlFor == nil {
		return nil
	}
	u := urlFor(key)
	return &u
}
