// Package mock provides an in-memory project store for tests.
package mock

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kozaktomas/photolog/internal/database"
)

// MockProjectStore is an in-memory database.ProjectWriter
type MockProjectStore struct {
	mu       sync.RWMutex
	projects map[uuid.UUID]database.StoredProject
	clock    time.Time

	// Error injection
	GetError    error
	ListError   error
	CountError  error
	SaveError   error
	DeleteError error
}

var _ database.ProjectWriter = (*MockProjectStore)(nil)

// NewMockProjectStore creates an empty store
func NewMockProjectStore() *MockProjectStore {
	return &MockProjectStore{
		projects: make(map[uuid.UUID]database.StoredProject),
		clock:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns a strictly increasing timestamp so List order is stable.
func (m *MockProjectStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

// Save stores a copy of p
func (m *MockProjectStore) Save(ctx context.Context, p *database.StoredProject) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.tick()
	if existing, ok := m.projects[p.ID]; ok {
		p.CreatedAt = existing.CreatedAt
	} else {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	stored := *p
	stored.Data = slices.Clone(p.Data)
	m.projects[p.ID] = stored
	return nil
}

// Get returns a copy of the stored project
func (m *MockProjectStore) Get(ctx context.Context, id uuid.UUID) (*database.StoredProject, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	p.Data = slices.Clone(p.Data)
	return &p, nil
}

// List returns summaries matching f, newest first
func (m *MockProjectStore) List(ctx context.Context, f database.ListFilter) ([]database.ProjectSummary, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]database.ProjectSummary, 0, len(m.projects))
	for _, p := range m.projects {
		if s := p.Summary(); f.Matches(s) {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b database.ProjectSummary) int {
		return cmp.Or(b.UpdatedAt.Compare(a.UpdatedAt), cmp.Compare(a.Name, b.Name))
	})
	return out, nil
}

// Count returns the number of stored projects
func (m *MockProjectStore) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.projects), nil
}

// Delete removes a project
func (m *MockProjectStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.projects, id)
	return nil
}
