package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kozaktomas/photolog/internal/database"
)

// ProjectRepository provides PostgreSQL-backed project storage
type ProjectRepository struct {
	pool *Pool
}

// NewProjectRepository creates a new PostgreSQL project repository
func NewProjectRepository(pool *Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

var _ database.ProjectWriter = (*ProjectRepository)(nil)

// Save upserts a project. CreatedAt is kept on update.
func (r *ProjectRepository) Save(ctx context.Context, p *database.StoredProject) error {
	query := `
		INSERT INTO photolog_projects (id, name, project_number, photo_count, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			project_number = EXCLUDED.project_number,
			photo_count = EXCLUDED.photo_count,
			data = EXCLUDED.data,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := r.pool.queryRow(ctx, query, p.ID, p.Name, p.ProjectNumber, p.PhotoCount, string(p.Data)).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	return nil
}

// Get retrieves a project by id
func (r *ProjectRepository) Get(ctx context.Context, id uuid.UUID) (*database.StoredProject, error) {
	query := `
		SELECT id, name, project_number, COALESCE(data -> 'headerData' ->> 'location', ''),
			photo_count, data, created_at, updated_at
		FROM photolog_projects
		WHERE id = $1
	`

	var p database.StoredProject
	err := r.pool.queryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.ProjectNumber,
		&p.Location,
		&p.PhotoCount,
		&p.Data,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

// List returns summaries, newest first. The location filter uses
// photolog_projects_location_idx.
func (r *ProjectRepository) List(ctx context.Context, f database.ListFilter) ([]database.ProjectSummary, error) {
	query := `
		SELECT id, name, project_number, COALESCE(data -> 'headerData' ->> 'location', ''), photo_count, updated_at
		FROM photolog_projects
	`
	var args []any
	if f.Location != "" {
		query += "WHERE data -> 'headerData' ->> 'location' = $1\n"
		args = append(args, f.Location)
	}
	query += "ORDER BY updated_at DESC, name"

	rows, err := r.pool.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	summaries := []database.ProjectSummary{}
	for rows.Next() {
		var s database.ProjectSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.ProjectNumber, &s.Location, &s.PhotoCount, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return summaries, nil
}

// Count returns the number of stored projects
func (r *ProjectRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.queryRow(ctx, "SELECT COUNT(*) FROM photolog_projects").Scan(&n); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

// Delete removes a project
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.pool.exec(ctx, "DELETE FROM photolog_projects WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n == 0 {
		return database.ErrNotFound
	}
	return nil
}
