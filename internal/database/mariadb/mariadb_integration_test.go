//go:build integration

package mariadb

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kozaktomas/photolog/internal/database"
	"github.com/kozaktomas/photolog/internal/photolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mariadb:11",
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MARIADB_USER":          "test",
				"MARIADB_PASSWORD":      "test",
				"MARIADB_DATABASE":      "testdb",
				"MARIADB_ROOT_PASSWORD": "root",
			},
			WaitingFor: wait.ForListeningPort("3306/tcp").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "3306")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dsn := fmt.Sprintf("test:test@tcp(%s:%s)/testdb", host, port.Port())
	var pool *Pool
	// The port opens before the server accepts logins.
	for range 30 {
		if pool, err = NewPool(dsn); err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}
	if err := pool.EnsureSchema(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to create schema: %v", err)
	}

	return pool, func() {
		pool.Close()
		container.Terminate(ctx)
	}
}

func TestProjectRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewProjectRepository(pool)
	clock := time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }

	sp, err := database.NewStoredProject(uuid.Nil, &photolog.Project{
		Header: photolog.HeaderRecord{ProjectName: "Žďár Bypass", ProjectNumber: "ZB-3", Location: "Žďár nad Sázavou"},
		Photos: photolog.Renumber(photolog.EntryList{{ID: 1, Description: "Earthworks"}}),
	})
	if err != nil {
		t.Fatalf("NewStoredProject: %v", err)
	}

	if err := repo.Save(ctx, sp); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !sp.CreatedAt.Equal(clock) {
		t.Errorf("expected created_at %v, got %v", clock, sp.CreatedAt)
	}

	clock = clock.Add(time.Hour)
	sp.Name = "Zdar Bypass"
	if err := repo.Save(ctx, sp); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if !sp.UpdatedAt.Equal(clock) || sp.CreatedAt.Equal(clock) {
		t.Errorf("unexpected timestamps created=%v updated=%v", sp.CreatedAt, sp.UpdatedAt)
	}

	got, err := repo.Get(ctx, sp.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	p, err := got.Project()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Header.ProjectName != "Žďár Bypass" || got.Name != "Zdar Bypass" {
		t.Errorf("unexpected stored project %+v / %+v", got.Summary(), p.Header)
	}

	list, err := repo.List(ctx, database.ListFilter{})
	if err != nil || len(list) != 1 || list[0].ID != sp.ID {
		t.Errorf("unexpected list %+v (%v)", list, err)
	}
	list, err = repo.List(ctx, database.ListFilter{Location: "Žďár nad Sázavou"})
	if err != nil || len(list) != 1 || list[0].Location != "Žďár nad Sázavou" {
		t.Errorf("unexpected filtered list %+v (%v)", list, err)
	}
	list, err = repo.List(ctx, database.ListFilter{Location: "nowhere"})
	if err != nil || len(list) != 0 {
		t.Errorf("expected no match, got %+v (%v)", list, err)
	}

	if err := repo.Delete(ctx, sp.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, sp.ID); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if n, _ := repo.Count(ctx); n != 0 {
		t.Errorf("expected empty table, got %d", n)
	}
}
