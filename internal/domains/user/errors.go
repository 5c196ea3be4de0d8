package user

import "errors"

// Repository-level errors
var (
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailAlreadyExists    = errors.New("user with this email already exists")
	ErrUsernameAlreadyExists = errors.New("user with this username already exists")
)

// Service-level errors
var (
	ErrInvalidCredentials = errors.New("unable to log in with provided credentials")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrAvatarNotSet       = errors.New("avatar is not set")
	ErrInvalidAvatar      = errors.New("avatar image is invalid")
)

// Error codes
const (
	ErrCodeAvatarNotSet = "AVATAR_NOT_SET"
)
