package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"slate/internal/domain"
	"slate/internal/domain/models"
	"slate/internal/domain/repositories"
)

const linkColumns = `id, presentation_id, token, access_level, password_hash, expires_at, max_views, view_count, created_by_user_id, is_active, created_at, updated_at`

// PostgresLinkRepository implements the LinkRepository interface
type PostgresLinkRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewLinkRepository creates a new share-link repository
func NewLinkRepository(config *RepositoryConfig) repositories.LinkRepository {
	return &PostgresLinkRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a new link. Token collisions surface as ErrConflict so
// the issuer can regenerate.
func (r *PostgresLinkRepository) Create(ctx context.Context, l *models.ShareLink) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, r.tables.ShareLinks, linkColumns)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		l.ID,
		l.PresentationID,
		l.Token,
		l.AccessLevel,
		l.PasswordHash,
		l.ExpiresAt,
		l.MaxViews,
		l.ViewCount,
		l.CreatedByUserID,
		l.IsActive,
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("share link token: %w", domain.ErrConflict)
		}
		return fmt.Errorf("create share link: %w", err)
	}

	return nil
}

// GetByToken returns the link carrying the given token
func (r *PostgresLinkRepository) GetByToken(ctx context.Context, token string) (*models.ShareLink, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE token = $1
	`, linkColumns, r.tables.ShareLinks)

	executor := GetExecutor(ctx, r.pool)
	return r.scanLink(executor.QueryRow(ctx, query, token))
}

// GetByID returns the link by id
func (r *PostgresLinkRepository) GetByID(ctx context.Context, id string) (*models.ShareLink, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, linkColumns, r.tables.ShareLinks)

	executor := GetExecutor(ctx, r.pool)
	return r.scanLink(executor.QueryRow(ctx, query, id))
}

// Update persists policy fields. view_count is deliberately not in the
// SET list: only ConsumeView writes it.
func (r *PostgresLinkRepository) Update(ctx context.Context, l *models.ShareLink) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET access_level = $1, password_hash = $2, expires_at = $3, max_views = $4, is_active = $5, updated_at = $6
		WHERE id = $7
	`, r.tables.ShareLinks)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		l.AccessLevel,
		l.PasswordHash,
		l.ExpiresAt,
		l.MaxViews,
		l.IsActive,
		l.UpdatedAt,
		l.ID,
	)
	if err != nil {
		return fmt.Errorf("update share link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("share link %s: %w", l.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete hard-deletes a link
func (r *PostgresLinkRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.ShareLinks)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete share link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("share link %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteForPresentation removes every link of a presentation
func (r *PostgresLinkRepository) DeleteForPresentation(ctx context.Context, presentationID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE presentation_id = $1`, r.tables.ShareLinks)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, presentationID); err != nil {
		return fmt.Errorf("delete links for presentation: %w", err)
	}

	return nil
}

// ListForPresentation returns all links of a presentation, newest-first
func (r *PostgresLinkRepository) ListForPresentation(ctx context.Context, presentationID string) ([]models.ShareLink, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE presentation_id = $1
		ORDER BY created_at DESC
	`, linkColumns, r.tables.ShareLinks)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, presentationID)
	if err != nil {
		return nil, fmt.Errorf("list share links: %w", err)
	}
	defer rows.Close()

	var links []models.ShareLink
	for rows.Next() {
		var l models.ShareLink
		err := rows.Scan(
			&l.ID,
			&l.PresentationID,
			&l.Token,
			&l.AccessLevel,
			&l.PasswordHash,
			&l.ExpiresAt,
			&l.MaxViews,
			&l.ViewCount,
			&l.CreatedByUserID,
			&l.IsActive,
			&l.CreatedAt,
			&l.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan share link: %w", err)
		}
		links = append(links, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate share links: %w", err)
	}

	if links == nil {
		links = []models.ShareLink{}
	}

	return links, nil
}

// ConsumeView is the single atomic conditional write behind the
// at-most-N-views guarantee. The guard re-checks the cap and active flag
// at commit time, so two racing consumers of a link with one slot left
// cannot both be admitted: the row update either applies or reports zero
// rows affected. Never read-then-write.
func (r *PostgresLinkRepository) ConsumeView(ctx context.Context, linkID string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET view_count = view_count + 1, updated_at = NOW()
		WHERE id = $1
		  AND is_active
		  AND (max_views IS NULL OR view_count < max_views)
	`, r.tables.ShareLinks)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, linkID)
	if err != nil {
		return false, fmt.Errorf("consume view: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *PostgresLinkRepository) scanLink(row interface{ Scan(...interface{}) error }) (*models.ShareLink, error) {
	var l models.ShareLink
	err := row.Scan(
		&l.ID,
		&l.PresentationID,
		&l.Token,
		&l.AccessLevel,
		&l.PasswordHash,
		&l.ExpiresAt,
		&l.MaxViews,
		&l.ViewCount,
		&l.CreatedByUserID,
		&l.IsActive,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("share link: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get share link: %w", err)
	}
	return &l, nil
}
