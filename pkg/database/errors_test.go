package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPgErrorCode(t *testing.T) {
	unique := &pgconn.PgError{Code: CodeUniqueViolation, ConstraintName: "favorites_user_recipe_key"}
	wrapped := fmt.Errorf("insert favorite: %w", unique)

	assert.True(t, IsUniqueViolation(wrapped))
	assert.False(t, IsForeignKeyViolation(wrapped))
	assert.Equal(t, "favorites_user_recipe_key", ConstraintName(wrapped))

	assert.Equal(t, "", PgErrorCode(errors.New("plain")))
	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: CodeForeignKeyViolation}))
}
