package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"foodgram-backend/internal/domains/user"
	"foodgram-backend/pkg/database"
)

// postgresRepository implements user.Repository with pgx
type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) user.Repository {
	return &postgresRepository{pool: pool}
}

const userColumns = `u.id, u.email, u.username, u.first_name, u.last_name, u.password_hash, u.avatar, u.created_at, u.updated_at`

// isSubscribedExpr is TRUE when viewer $1 follows u. For $1 = 0 the CASE
// short-circuits, so anonymous viewers never touch subscriptions.
const isSubscribedExpr = `CASE WHEN $1::BIGINT = 0 THEN FALSE ELSE EXISTS (
		SELECT 1 FROM subscriptions s WHERE s.user_id = $1 AND s.author_id = u.id
	) END`

// ========================================
// BASIC CRUD OPERATIONS
// ========================================

func (r *postgresRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (email, username, first_name, last_name, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		u.Email, u.Username, u.FirstName, u.LastName, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			switch database.ConstraintName(err) {
			case "users_email_key":
				return user.ErrEmailAlreadyExists
			case "users_username_key":
				return user.ErrUsernameAlreadyExists
			}
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`
	return r.findOne(ctx, query, id)
}

// FindByEmail matches case-insensitively, like the unique index.
func (r *postgresRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE LOWER(u.email) = LOWER($1)`
	return r.findOne(ctx, query, email)
}

func (r *postgresRepository) findOne(ctx context.Context, query string, arg any) (*user.User, error) {
	var u user.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName,
		&u.PasswordHash, &u.Avatar, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

// ========================================
// PROFILES (viewer annotated)
// ========================================

func (r *postgresRepository) GetProfile(ctx context.Context, viewerID, id int64) (*user.Profile, error) {
	query := `SELECT ` + userColumns + `, ` + isSubscribedExpr + ` FROM users u WHERE u.id = $2`

	p, err := scanProfile(r.pool.QueryRow(ctx, query, viewerID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) List(ctx context.Context, viewerID int64, limit, offset int) ([]user.Profile, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := `SELECT ` + userColumns + `, ` + isSubscribedExpr + `
		FROM users u
		ORDER BY u.id
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, viewerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	profiles := make([]user.Profile, 0, limit)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}

	return profiles, total, nil
}

func scanProfile(row pgx.Row) (*user.Profile, error) {
	var p user.Profile
	err := row.Scan(
		&p.ID, &p.Email, &p.Username, &p.FirstName, &p.LastName,
		&p.PasswordHash, &p.Avatar, &p.CreatedAt, &p.UpdatedAt,
		&p.IsSubscribed,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ========================================
// UPDATES
// ========================================

func (r *postgresRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// SetAvatar swaps the avatar key under a row lock so the returned previous
// key is exactly the one replaced.
func (r *postgresRepository) SetAvatar(ctx context.Context, id int64, key string) (string, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (string, error) {
		var previous string
		err := tx.QueryRow(ctx, `SELECT avatar FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&previous)
		if errors.Is(err, pgx.ErrNoRows) {
			return "", user.ErrUserNotFound
		}
		if err != nil {
			return "", fmt.Errorf("lock user: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE users SET avatar = $2, updated_at = NOW() WHERE id = $1`, id, key); err != nil {
			return "", fmt.Errorf("update avatar: %w", err)
		}
		return previous, nil
	})
}
