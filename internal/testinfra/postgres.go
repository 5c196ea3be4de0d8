//go:build integration

// Package testinfra starts throwaway infrastructure for integration tests.
package testinfra

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"foodgram-backend/migrations"
)

const postgresImage = "postgres:16-alpine"

// SkipIfNoDocker skips the test when no Docker daemon is reachable.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}
}

// StartPostgres runs a migrated PostgreSQL container and returns a pool to it.
// Both are torn down with the test.
func StartPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "foodgram",
				"POSTGRES_PASSWORD": "foodgram",
				"POSTGRES_DB":       "foodgram_test",
			},
			// the server restarts once after init, so wait for the second line
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://foodgram:foodgram@%s:%s/foodgram_test?sslmode=disable", host, port.Port())
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = migrations.Up(ctx, pool)
	require.NoError(t, err)

	return pool
}

// CreateUser inserts a bare account row and returns its id.
func CreateUser(t *testing.T, pool *pgxpool.Pool, username string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO users (email, username, first_name, last_name, password_hash)
		VALUES ($1, $2, 'Test', 'User', 'x')
		RETURNING id`, username+"@example.com", username,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateTag inserts a tag and returns its id.
func CreateTag(t *testing.T, pool *pgxpool.Pool, name, slug string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO tags (name, slug) VALUES ($1, $2) RETURNING id`, name, slug,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateIngredient inserts an ingredient and returns its id.
func CreateIngredient(t *testing.T, pool *pgxpool.Pool, name, unit string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO ingredients (name, measurement_unit) VALUES ($1, $2) RETURNING id`, name, unit,
	).Scan(&id)
	require.NoError(t, err)
	return id
}
