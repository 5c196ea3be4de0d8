package user

import "time"

// User is the account row.
// Avatar holds the object storage key ("" when unset), not a URL.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	Avatar       string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile is a user as seen by a viewer.
type Profile struct {
	User
	// IsSubscribed: the viewer follows this user; always false for anonymous viewers
	IsSubscribed bool
}

// Column limits shared by validation and the schema
const (
	MaxEmailLength    = 254
	MaxUsernameLength = 150
	MaxNameLength     = 150
	MinPasswordLength = 8
	MaxPasswordLength = 128

	AvatarFolder = "users/avatars"
)
