package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"slate/internal/domain"
	"slate/internal/domain/models"
	"slate/internal/domain/repositories"
)

// PostgresPresentationRepository implements the PresentationRepository interface
type PostgresPresentationRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewPresentationRepository creates a new presentation repository
func NewPresentationRepository(config *RepositoryConfig) repositories.PresentationRepository {
	return &PostgresPresentationRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a new presentation
func (r *PostgresPresentationRepository) Create(ctx context.Context, p *models.Presentation) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, owner_id, title, description, editor_data, drawing_data, is_public, share_access, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, r.tables.Presentations)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		p.ID,
		p.OwnerID,
		p.Title,
		p.Description,
		p.EditorData,
		p.DrawingData,
		p.IsPublic,
		p.ShareAccess,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create presentation: %w", err)
	}

	return nil
}

// GetByID retrieves a presentation by ID regardless of caller
func (r *PostgresPresentationRepository) GetByID(ctx context.Context, id string) (*models.Presentation, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, title, description, editor_data, drawing_data, is_public, share_access, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Presentations)

	executor := GetExecutor(ctx, r.pool)
	return scanPresentation(executor.QueryRow(ctx, query, id), id)
}

// GetOwned retrieves a presentation only when ownerID owns it
func (r *PostgresPresentationRepository) GetOwned(ctx context.Context, id, ownerID string) (*models.Presentation, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, title, description, editor_data, drawing_data, is_public, share_access, created_at, updated_at
		FROM %s
		WHERE id = $1 AND owner_id = $2
	`, r.tables.Presentations)

	executor := GetExecutor(ctx, r.pool)
	return scanPresentation(executor.QueryRow(ctx, query, id, ownerID), id)
}

// GetWithOwner retrieves a presentation joined with its owner identity
func (r *PostgresPresentationRepository) GetWithOwner(ctx context.Context, id string) (*models.PresentationWithOwner, error) {
	query := fmt.Sprintf(`
		SELECT p.id, p.owner_id, p.title, p.description, p.editor_data, p.drawing_data,
		       p.is_public, p.share_access, p.created_at, p.updated_at,
		       u.id, u.name, u.email
		FROM %s p
		JOIN %s u ON u.id = p.owner_id
		WHERE p.id = $1
	`, r.tables.Presentations, r.tables.Users)

	var result models.PresentationWithOwner
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&result.ID,
		&result.OwnerID,
		&result.Title,
		&result.Description,
		&result.EditorData,
		&result.DrawingData,
		&result.IsPublic,
		&result.ShareAccess,
		&result.CreatedAt,
		&result.UpdatedAt,
		&result.Owner.ID,
		&result.Owner.Name,
		&result.Owner.Email,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("presentation %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get presentation with owner: %w", err)
	}

	return &result, nil
}

// ListOwned lists ownerID's presentations newest-first with optional title search
func (r *PostgresPresentationRepository) ListOwned(ctx context.Context, ownerID string, opts repositories.ListOptions) ([]models.Presentation, int, error) {
	where := "WHERE owner_id = $1"
	args := []interface{}{ownerID}
	if opts.Search != "" {
		where += " AND title ILIKE $2"
		args = append(args, "%"+opts.Search+"%")
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s %s`, r.tables.Presentations, where)

	executor := GetExecutor(ctx, r.pool)
	var total int
	if err := executor.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count presentations: %w", err)
	}

	offset := (opts.Page - 1) * opts.Limit
	listQuery := fmt.Sprintf(`
		SELECT id, owner_id, title, description, editor_data, drawing_data, is_public, share_access, created_at, updated_at
		FROM %s
		%s
		ORDER BY updated_at DESC
		LIMIT $%d OFFSET $%d
	`, r.tables.Presentations, where, len(args)+1, len(args)+2)
	args = append(args, opts.Limit, offset)

	rows, err := executor.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list presentations: %w", err)
	}
	defer rows.Close()

	var presentations []models.Presentation
	for rows.Next() {
		var p models.Presentation
		err := rows.Scan(
			&p.ID,
			&p.OwnerID,
			&p.Title,
			&p.Description,
			&p.EditorData,
			&p.DrawingData,
			&p.IsPublic,
			&p.ShareAccess,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan presentation: %w", err)
		}
		presentations = append(presentations, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate presentations: %w", err)
	}

	if presentations == nil {
		presentations = []models.Presentation{}
	}

	return presentations, total, nil
}

// Update persists title, description, content payloads and visibility
func (r *PostgresPresentationRepository) Update(ctx context.Context, p *models.Presentation) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, description = $2, editor_data = $3, drawing_data = $4,
		    is_public = $5, share_access = $6, updated_at = $7
		WHERE id = $8
	`, r.tables.Presentations)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		p.Title,
		p.Description,
		p.EditorData,
		p.DrawingData,
		p.IsPublic,
		p.ShareAccess,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update presentation: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("presentation %s: %w", p.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a presentation row owned by ownerID
func (r *PostgresPresentationRepository) Delete(ctx context.Context, id, ownerID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND owner_id = $2
	`, r.tables.Presentations)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete presentation: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("presentation %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func scanPresentation(row interface{ Scan(...interface{}) error }, id string) (*models.Presentation, error) {
	var p models.Presentation
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Title,
		&p.Description,
		&p.EditorData,
		&p.DrawingData,
		&p.IsPublic,
		&p.ShareAccess,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("presentation %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get presentation: %w", err)
	}
	return &p, nil
}
