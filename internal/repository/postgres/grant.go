package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"slate/internal/domain"
	"slate/internal/domain/models"
	"slate/internal/domain/repositories"
)

// PostgresGrantRepository implements the GrantRepository interface
type PostgresGrantRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewGrantRepository creates a new grant repository
func NewGrantRepository(config *RepositoryConfig) repositories.GrantRepository {
	return &PostgresGrantRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Find returns the grant for (presentationID, userID)
func (r *PostgresGrantRepository) Find(ctx context.Context, presentationID, userID string) (*models.ShareGrant, error) {
	query := fmt.Sprintf(`
		SELECT id, presentation_id, grantee_user_id, access_level, granted_by_user_id, created_at, updated_at
		FROM %s
		WHERE presentation_id = $1 AND grantee_user_id = $2
	`, r.tables.ShareGrants)

	var g models.ShareGrant
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, presentationID, userID).Scan(
		&g.ID,
		&g.PresentationID,
		&g.GranteeUserID,
		&g.AccessLevel,
		&g.GrantedByUserID,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("grant for user %s: %w", userID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find grant: %w", err)
	}

	return &g, nil
}

// Upsert inserts the grant or updates its access level in place when the
// (presentation_id, grantee_user_id) pair already exists. The unique
// index makes this a single atomic statement.
func (r *PostgresGrantRepository) Upsert(ctx context.Context, g *models.ShareGrant) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, presentation_id, grantee_user_id, access_level, granted_by_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (presentation_id, grantee_user_id)
		DO UPDATE SET access_level = EXCLUDED.access_level, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at
	`, r.tables.ShareGrants)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		g.ID,
		g.PresentationID,
		g.GranteeUserID,
		g.AccessLevel,
		g.GrantedByUserID,
		g.CreatedAt,
		g.UpdatedAt,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert grant: %w", err)
	}

	return nil
}

// Delete removes the grant for (presentationID, userID)
func (r *PostgresGrantRepository) Delete(ctx context.Context, presentationID, userID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE presentation_id = $1 AND grantee_user_id = $2
	`, r.tables.ShareGrants)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, presentationID, userID)
	if err != nil {
		return fmt.Errorf("delete grant: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("grant for user %s: %w", userID, domain.ErrNotFound)
	}

	return nil
}

// DeleteForPresentation removes every grant of a presentation
func (r *PostgresGrantRepository) DeleteForPresentation(ctx context.Context, presentationID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE presentation_id = $1`, r.tables.ShareGrants)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, presentationID); err != nil {
		return fmt.Errorf("delete grants for presentation: %w", err)
	}

	return nil
}

// ListForPresentation returns all grants with grantee identity, newest-first
func (r *PostgresGrantRepository) ListForPresentation(ctx context.Context, presentationID string) ([]models.ShareGrantWithGrantee, error) {
	query := fmt.Sprintf(`
		SELECT g.id, g.presentation_id, g.grantee_user_id, g.access_level, g.granted_by_user_id,
		       g.created_at, g.updated_at,
		       u.id, u.name, u.email
		FROM %s g
		JOIN %s u ON u.id = g.grantee_user_id
		WHERE g.presentation_id = $1
		ORDER BY g.created_at DESC
	`, r.tables.ShareGrants, r.tables.Users)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, presentationID)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	defer rows.Close()

	var grants []models.ShareGrantWithGrantee
	for rows.Next() {
		var g models.ShareGrantWithGrantee
		err := rows.Scan(
			&g.ID,
			&g.PresentationID,
			&g.GranteeUserID,
			&g.AccessLevel,
			&g.GrantedByUserID,
			&g.CreatedAt,
			&g.UpdatedAt,
			&g.Grantee.ID,
			&g.Grantee.Name,
			&g.Grantee.Email,
		)
		if err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		grants = append(grants, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grants: %w", err)
	}

	if grants == nil {
		grants = []models.ShareGrantWithGrantee{}
	}

	return grants, nil
}

// ListForGrantee returns presentations shared with userID, newest-first
func (r *PostgresGrantRepository) ListForGrantee(ctx context.Context, userID string) ([]models.SharedPresentation, error) {
	query := fmt.Sprintf(`
		SELECT p.id, p.owner_id, p.title, p.description, p.editor_data, p.drawing_data,
		       p.is_public, p.share_access, p.created_at, p.updated_at,
		       o.id, o.name, o.email,
		       g.access_level, g.created_at
		FROM %s g
		JOIN %s p ON p.id = g.presentation_id
		JOIN %s o ON o.id = p.owner_id
		WHERE g.grantee_user_id = $1
		ORDER BY g.created_at DESC
	`, r.tables.ShareGrants, r.tables.Presentations, r.tables.Users)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list shared presentations: %w", err)
	}
	defer rows.Close()

	var shared []models.SharedPresentation
	for rows.Next() {
		var s models.SharedPresentation
		err := rows.Scan(
			&s.Presentation.ID,
			&s.Presentation.OwnerID,
			&s.Presentation.Title,
			&s.Presentation.Description,
			&s.Presentation.EditorData,
			&s.Presentation.DrawingData,
			&s.Presentation.IsPublic,
			&s.Presentation.ShareAccess,
			&s.Presentation.CreatedAt,
			&s.Presentation.UpdatedAt,
			&s.Presentation.Owner.ID,
			&s.Presentation.Owner.Name,
			&s.Presentation.Owner.Email,
			&s.AccessLevel,
			&s.SharedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan shared presentation: %w", err)
		}
		shared = append(shared, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shared presentations: %w", err)
	}

	if shared == nil {
		shared = []models.SharedPresentation{}
	}

	return shared, nil
}
