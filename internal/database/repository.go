package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a stored project does not exist.
var ErrNotFound = errors.New("project not found")

// ProjectReader provides read-only access to stored projects
type ProjectReader interface {
	// Get retrieves a project by id, returns ErrNotFound if missing
	Get(ctx context.Context, id uuid.UUID) (*StoredProject, error)
	// List returns summaries matching f, ordered by last update, newest first
	List(ctx context.Context, f ListFilter) ([]ProjectSummary, error)
	// Count returns the number of stored projects, ignoring any filter
	Count(ctx context.Context) (int, error)
}

// ListFilter narrows List. The zero value matches every project.
type ListFilter struct {
	// Location matches the header location exactly
	Location string
}

// Matches reports whether a summary passes the filter.
func (f ListFilter) Matches(s ProjectSummary) bool {
	return f.Location == "" || s.Location == f.Location
}

// ProjectWriter provides write access to stored projects
type ProjectWriter interface {
	ProjectReader

	// Save inserts or replaces a project and sets its timestamps
	Save(ctx context.Context, p *StoredProject) error
	// Delete removes a project, returns ErrNotFound if missing
	Delete(ctx context.Context, id uuid.UUID) error
}
