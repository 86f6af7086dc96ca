package database

import (
	"context"
	"errors"
	"sync"
)

// ErrNoBackend is returned when neither DATABASE_URL nor MARIADB_DSN was configured.
var ErrNoBackend = errors.New("project store not initialized: DATABASE_URL or MARIADB_DSN is required")

var (
	storeMu      sync.RWMutex
	projectStore func() ProjectWriter
	backendName  string
)

// RegisterProjectStore registers the active project store backend. The last
// registration wins.
func RegisterProjectStore(name string, store func() ProjectWriter) {
	storeMu.Lock()
	defer storeMu.Unlock()
	projectStore = store
	backendName = name
}

// GetProjectStore returns the registered project store.
func GetProjectStore(ctx context.Context) (ProjectWriter, error) {
	storeMu.RLock()
	defer storeMu.RUnlock()
	if projectStore == nil {
		return nil, ErrNoBackend
	}
	return projectStore(), nil
}

// Backend returns the name of the registered backend, or "" when none is.
func Backend() string {
	storeMu.RLock()
	defer storeMu.RUnlock()
	return backendName
}

// ResetForTesting clears the registered backend.
func ResetForTesting() {
	storeMu.Lock()
	defer storeMu.Unlock()
	projectStore = nil
	backendName = ""
}
