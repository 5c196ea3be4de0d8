package relation

import "context"

// Repository is the data access contract of the relation domain.
type Repository interface {
	// Add inserts the pair; false when it already existed.
	// A missing target yields kind.ErrTargetNotFound.
	Add(ctx context.Context, kind Kind, userID, targetID int64) (bool, error)
	// Remove deletes the pair; false when there was none.
	Remove(ctx context.Context, kind Kind, userID, targetID int64) (bool, error)

	GetAuthor(ctx context.Context, viewerID, authorID int64) (*Author, error)
	// ListSubscriptions pages the authors userID follows, ordered by username.
	ListSubscriptions(ctx context.Context, userID int64, limit, offset int) ([]Author, int, error)
}
