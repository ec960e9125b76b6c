package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the engine's tables and indexes if they do not
// exist. The unique indexes carry two of the core invariants: one grant
// per (presentation, grantee) pair, and global token uniqueness.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(50) NOT NULL UNIQUE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`, tables.Users),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				owner_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				title VARCHAR(255) NOT NULL,
				description TEXT,
				editor_data JSONB,
				drawing_data JSONB,
				is_public BOOLEAN NOT NULL DEFAULT FALSE,
				share_access VARCHAR(5) NOT NULL DEFAULT 'read',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`, tables.Presentations, tables.Users),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				presentation_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				grantee_user_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				access_level VARCHAR(5) NOT NULL DEFAULT 'read',
				granted_by_user_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				UNIQUE (presentation_id, grantee_user_id)
			)
		`, tables.ShareGrants, tables.Presentations, tables.Users, tables.Users),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				presentation_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				token VARCHAR(64) NOT NULL UNIQUE,
				access_level VARCHAR(5) NOT NULL DEFAULT 'read',
				password_hash VARCHAR(255),
				expires_at TIMESTAMPTZ,
				max_views INTEGER CHECK (max_views > 0),
				view_count INTEGER NOT NULL DEFAULT 0,
				created_by_user_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`, tables.ShareLinks, tables.Presentations, tables.Users),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_presentation ON %s (presentation_id)`,
			tables.ShareLinks, tables.ShareLinks),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_expires_at ON %s (expires_at)`,
			tables.ShareLinks, tables.ShareLinks),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_grantee ON %s (grantee_user_id)`,
			tables.ShareGrants, tables.ShareGrants),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_owner ON %s (owner_id)`,
			tables.Presentations, tables.Presentations),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}
