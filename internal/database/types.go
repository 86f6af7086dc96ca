package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kozaktomas/photolog/internal/photolog"
)

// StoredProject is a saved project snapshot. Data holds the project file JSON.
type StoredProject struct {
	ID            uuid.UUID
	Name          string
	ProjectNumber string
	Location      string
	PhotoCount    int
	Data          []byte
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProjectSummary is the list view of a stored project, without the payload.
type ProjectSummary struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ProjectNumber string    `json:"projectNumber"`
	Location      string    `json:"location"`
	PhotoCount    int       `json:"photoCount"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewStoredProject encodes p for storage under id. A nil id gets a fresh one.
func NewStoredProject(id uuid.UUID, p *photolog.Project) (*StoredProject, error) {
	data, err := photolog.MarshalProject(p)
	if err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		id = uuid.New()
	}
	name := strings.TrimSpace(p.Header.ProjectName)
	if name == "" {
		name = "Untitled"
	}
	return &StoredProject{
		ID:            id,
		Name:          name,
		ProjectNumber: strings.TrimSpace(p.Header.ProjectNumber),
		Location:      p.Header.Location,
		PhotoCount:    len(p.Photos),
		Data:          data,
	}, nil
}

// Project decodes the stored snapshot.
func (s *StoredProject) Project() (*photolog.Project, error) {
	p, err := photolog.ParseProject(s.Data)
	if err != nil {
		return nil, fmt.Errorf("stored project %s: %w", s.ID, err)
	}
	return p, nil
}

// Summary returns the list view of s.
func (s *StoredProject) Summary() ProjectSummary {
	return ProjectSummary{
		ID:            s.ID,
		Name:          s.Name,
		ProjectNumber: s.ProjectNumber,
		Location:      s.Location,
		PhotoCount:    s.PhotoCount,
		UpdatedAt:     s.UpdatedAt,
	}
}
