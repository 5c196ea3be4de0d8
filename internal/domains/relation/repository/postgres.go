package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"foodgram-backend/internal/domains/relation"
	"foodgram-backend/internal/domains/user"
	"foodgram-backend/pkg/database"
)

// postgresRepository implements relation.Repository.
// Table and column names come from the fixed relation.Kind values.
type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) relation.Repository {
	return &postgresRepository{pool: pool}
}

// ========================================
// TOGGLES
// ========================================

// Add relies on the unique pair: of two concurrent inserts exactly one
// returns a row, the other sees ON CONFLICT and reports false.
func (r *postgresRepository) Add(ctx context.Context, kind relation.Kind, userID, targetID int64) (bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, %s) VALUES ($1, $2)
		ON CONFLICT (user_id, %s) DO NOTHING
		RETURNING id`, kind.Table, kind.TargetColumn, kind.TargetColumn)

	var id int64
	err := r.pool.QueryRow(ctx, query, userID, targetID).Scan(&id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, pgx.ErrNoRows):
		return false, nil
	default:
		return false, mapAddError(kind, err)
	}
}

// subscriptionsNotSelf is the CHECK on subscriptions (user_id <> author_id).
const subscriptionsNotSelf = "subscriptions_not_self"

func mapAddError(kind relation.Kind, err error) error {
	switch {
	case database.IsForeignKeyViolation(err):
		return kind.ErrTargetNotFound
	case database.PgErrorCode(err) == database.CodeCheckViolation &&
		database.ConstraintName(err) == subscriptionsNotSelf:
		return relation.NewSelfSubscriptionError()
	default:
		return fmt.Errorf("add %s: %w", kind.Name, err)
	}
}

func (r *postgresRepository) Remove(ctx context.Context, kind relation.Kind, userID, targetID int64) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1 AND %s = $2`, kind.Table, kind.TargetColumn)

	tag, err := r.pool.Exec(ctx, query, userID, targetID)
	if err != nil {
		return false, fmt.Errorf("remove %s: %w", kind.Name, err)
	}
	return tag.RowsAffected() > 0, nil
}

// ========================================
// AUTHORS
// ========================================

const authorColumns = `u.id, u.email, u.username, u.first_name, u.last_name, u.avatar`

const recipesCountExpr = `(SELECT COUNT(*) FROM recipes r WHERE r.author_id = u.id)`

func (r *postgresRepository) GetAuthor(ctx context.Context, viewerID, authorID int64) (*relation.Author, error) {
	query := `
		SELECT ` + authorColumns + `,
			CASE WHEN $1::BIGINT = 0 THEN FALSE ELSE EXISTS (
				SELECT 1 FROM subscriptions s WHERE s.user_id = $1 AND s.author_id = u.id
			) END,
			` + recipesCountExpr + `
		FROM users u
		WHERE u.id = $2`

	a, err := scanAuthor(r.pool.QueryRow(ctx, query, viewerID, authorID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query author: %w", err)
	}
	return a, nil
}

func (r *postgresRepository) ListSubscriptions(ctx context.Context, userID int64, limit, offset int) ([]relation.Author, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count subscriptions: %w", err)
	}

	query := `
		SELECT ` + authorColumns + `, TRUE, ` + recipesCountExpr + `
		FROM subscriptions s
		JOIN users u ON u.id = s.author_id
		WHERE s.user_id = $1
		ORDER BY u.username
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	authors := make([]relation.Author, 0, limit)
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan author: %w", err)
		}
		authors = append(authors, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate subscriptions: %w", err)
	}
	return authors, total, nil
}

func scanAuthor(row pgx.Row) (*relation.Author, error) {
	var a relation.Author
	err := row.Scan(
		&a.ID, &a.Email, &a.Username, &a.FirstName, &a.LastName, &a.Avatar,
		&a.IsSubscribed, &a.RecipesCount,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
