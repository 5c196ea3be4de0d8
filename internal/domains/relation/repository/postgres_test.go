package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodgram-backend/internal/domains/recipe"
	"foodgram-backend/internal/domains/relation"
	"foodgram-backend/internal/domains/user"
	"foodgram-backend/pkg/database"
)

func TestMapAddError(t *testing.T) {
	t.Run("self subscription check", func(t *testing.T) {
		err := mapAddError(relation.Subscriptions, &pgconn.PgError{
			Code:           database.CodeCheckViolation,
			ConstraintName: subscriptionsNotSelf,
		})
		var relErr *relation.RelationError
		require.ErrorAs(t, err, &relErr)
		assert.Equal(t, relation.ErrCodeSelfSubscription, relErr.Code)
	})

	t.Run("other check stays internal", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: database.CodeCheckViolation, ConstraintName: "favorites_some_check"}
		err := mapAddError(relation.Favorites, pgErr)
		var relErr *relation.RelationError
		assert.False(t, errors.As(err, &relErr))
		assert.ErrorIs(t, err, pgErr)
	})

	t.Run("missing target", func(t *testing.T) {
		fk := &pgconn.PgError{Code: database.CodeForeignKeyViolation}
		assert.ErrorIs(t, mapAddError(relation.Favorites, fk), recipe.ErrRecipeNotFound)
		assert.ErrorIs(t, mapAddError(relation.Subscriptions, fk), user.ErrUserNotFound)
	})
}
