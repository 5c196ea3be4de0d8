package user

import "context"

// Repository is the data access contract of the user domain.
// viewerID = 0 means anonymous: IsSubscribed is false without a lookup.
type Repository interface {
	// Create inserts u and fills ID/CreatedAt.
	// Returns ErrEmailAlreadyExists / ErrUsernameAlreadyExists.
	Create(ctx context.Context, u *User) error

	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)

	GetProfile(ctx context.Context, viewerID, id int64) (*Profile, error)
	List(ctx context.Context, viewerID int64, limit, offset int) ([]Profile, int, error)

	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	// SetAvatar stores key ("" clears) and returns the previous key.
	SetAvatar(ctx context.Context, id int64, key string) (string, error)
}
