// Package migrations embeds the schema and applies it in file order.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"foodgram-backend/pkg/database"
)

//go:embed *.up.sql
var files embed.FS

// advisory lock id, any constant works as long as it is unique to this app
const lockID = 7_346_201

// Migration is one embedded NNN_name.up.sql file.
type Migration struct {
	Version string
	SQL     string
}

// List returns the embedded migrations sorted by version.
func List() ([]Migration, error) {
	names, err := fs.Glob(files, "*.up.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	out := make([]Migration, 0, len(names))
	for _, name := range names {
		body, err := files.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		out = append(out, Migration{
			Version: strings.TrimSuffix(name, ".up.sql"),
			SQL:     string(body),
		})
	}
	return out, nil
}

// Up applies every migration not yet recorded in schema_migrations.
// Each file runs in its own transaction; an advisory lock serializes
// concurrent runners. Returns the versions applied by this call.
func Up(ctx context.Context, db database.Beginner) ([]string, error) {
	migrations, err := List()
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, m := range migrations {
		m := m
		done, err := database.WithTransactionResult(ctx, db, func(tx pgx.Tx) (bool, error) {
			if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, lockID); err != nil {
				return false, fmt.Errorf("lock: %w", err)
			}
			if _, err := tx.Exec(ctx, `
				CREATE TABLE IF NOT EXISTS schema_migrations (
					version    VARCHAR(255) PRIMARY KEY,
					applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				)`); err != nil {
				return false, fmt.Errorf("create schema_migrations: %w", err)
			}

			var exists bool
			if err := tx.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.Version,
			).Scan(&exists); err != nil {
				return false, fmt.Errorf("check %s: %w", m.Version, err)
			}
			if exists {
				return false, nil
			}

			if _, err := tx.Exec(ctx, m.SQL); err != nil {
				return false, fmt.Errorf("apply %s: %w", m.Version, err)
			}
			if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.Version); err != nil {
				return false, fmt.Errorf("record %s: %w", m.Version, err)
			}
			return true, nil
		})
		if err != nil {
			return applied, err
		}
		if done {
			log.Info().Str("version", m.Version).Msg("migration applied")
			applied = append(applied, m.Version)
		}
	}

	return applied, nil
}
