package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	// Registers the postgres driver used by OpenPostgres.
	_ "github.com/lib/pq"
)

// OpenPostgres opens a bun handle over lib/pq for the given DSN. The caller
// owns the returned handle and closes it when done.
func OpenPostgres(dsn string) (*bun.DB, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return nil, fmt.Errorf("sqlstore: postgres dsn is required")
	}
	sqlDB, err := sql.Open("postgres", trimmed)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open postgres: %w", err)
	}
	return bun.NewDB(sqlDB, pgdialect.New()), nil
}

// NewPostgresRepositoryFactory opens a postgres-backed factory with all four
// stores built.
func NewPostgresRepositoryFactory(dsn string) (*RepositoryFactory, error) {
	db, err := OpenPostgres(dsn)
	if err != nil {
		return nil, err
	}
	return NewRepositoryFactoryFromDB(db)
}
