// Package mariadb stores photolog projects in MariaDB or MySQL.
package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/kozaktomas/photolog/internal/database"
)

// BackendName identifies this backend in database.Backend.
const BackendName = "mariadb"

const schema = `
	CREATE TABLE IF NOT EXISTS photolog_projects (
		id             CHAR(36) NOT NULL PRIMARY KEY,
		name           VARCHAR(255) NOT NULL,
		project_number VARCHAR(255) NOT NULL DEFAULT '',
		photo_count    INT NOT NULL DEFAULT 0,
		data           LONGTEXT NOT NULL,
		created_at     DATETIME(6) NOT NULL,
		updated_at     DATETIME(6) NOT NULL,
		INDEX photolog_projects_updated_at_idx (updated_at)
	) DEFAULT CHARSET=utf8mb4
`

// Pool manages a MariaDB connection pool.
type Pool struct {
	db *sql.DB
}

// NewPool opens the pool and pings the server. The DSN is forced to parse
// timestamps in UTC.
func NewPool(dsn string) (*Pool, error) {
	if dsn == "" {
		return nil, errors.New("MariaDB DSN is required")
	}

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid MariaDB DSN: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open MariaDB: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MariaDB: %w", err)
	}

	return &Pool{db: db}, nil
}

// EnsureSchema creates the projects table if it is missing.
func (p *Pool) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create projects table: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (p *Pool) Close() error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}

// Initialize connects, creates the schema and registers MariaDB as the
// project store. The returned pool is owned by the caller.
func Initialize(ctx context.Context, dsn string) (*Pool, error) {
	pool, err := NewPool(dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.EnsureSchema(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}
	repo := NewProjectRepository(pool)
	database.RegisterProjectStore(BackendName, func() database.ProjectWriter { return repo })
	return pool, nil
}
