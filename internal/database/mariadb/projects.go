package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kozaktomas/photolog/internal/database"
)

// locationExpr reads the header location out of the stored project JSON.
const locationExpr = "COALESCE(JSON_UNQUOTE(JSON_EXTRACT(data, '$.headerData.location')), '')"

// ProjectRepository provides MariaDB-backed project storage
type ProjectRepository struct {
	pool *Pool
	now  func() time.Time
}

// NewProjectRepository creates a new MariaDB project repository
func NewProjectRepository(pool *Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool, now: time.Now}
}

var _ database.ProjectWriter = (*ProjectRepository)(nil)

// Save upserts a project. CreatedAt is kept on update.
func (r *ProjectRepository) Save(ctx context.Context, p *database.StoredProject) error {
	now := r.now().UTC().Truncate(time.Microsecond)
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO photolog_projects (id, name, project_number, photo_count, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			project_number = VALUES(project_number),
			photo_count = VALUES(photo_count),
			data = VALUES(data),
			updated_at = VALUES(updated_at)
	`, p.ID.String(), p.Name, p.ProjectNumber, p.PhotoCount, string(p.Data), now, now)
	if err != nil {
		return fmt.Errorf("save project: %w", err)
	}

	err = r.pool.db.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM photolog_projects WHERE id = ?", p.ID.String(),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("read saved project timestamps: %w", err)
	}
	return nil
}

// Get retrieves a project by id
func (r *ProjectRepository) Get(ctx context.Context, id uuid.UUID) (*database.StoredProject, error) {
	var (
		p     database.StoredProject
		rawID string
	)
	err := r.pool.db.QueryRowContext(ctx, `
		SELECT id, name, project_number, `+locationExpr+`, photo_count, data, created_at, updated_at
		FROM photolog_projects
		WHERE id = ?
	`, id.String()).Scan(&rawID, &p.Name, &p.ProjectNumber, &p.Location, &p.PhotoCount, &p.Data, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if p.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("get project: bad id %q: %w", rawID, err)
	}
	return &p, nil
}

// List returns summaries, newest first
func (r *ProjectRepository) List(ctx context.Context, f database.ListFilter) ([]database.ProjectSummary, error) {
	query := `
		SELECT id, name, project_number, ` + locationExpr + `, photo_count, updated_at
		FROM photolog_projects
	`
	var args []any
	if f.Location != "" {
		query += "WHERE " + locationExpr + " = ?\n"
		args = append(args, f.Location)
	}
	query += "ORDER BY updated_at DESC, name"

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	summaries := []database.ProjectSummary{}
	for rows.Next() {
		var (
			s     database.ProjectSummary
			rawID string
		)
		if err := rows.Scan(&rawID, &s.Name, &s.ProjectNumber, &s.Location, &s.PhotoCount, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		if s.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("scan project: bad id %q: %w", rawID, err)
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
	if err := r.pool.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM photolog_projects").Scan(&n); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

// Delete removes a project
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.pool.db.ExecContext(ctx, "DELETE FROM photolog_projects WHERE id = ?", id.String())
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
