package migrations

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	connections "github.com/goliatone/go-connections"
	_ "github.com/mattn/go-sqlite3"
)

func TestFilesystems_ReturnsPostgresAndSQLite(t *testing.T) {
	filesystems, err := Filesystems()
	if err != nil {
		t.Fatalf("filesystems: %v", err)
	}
	if len(filesystems) != 2 {
		t.Fatalf("expected 2 filesystems, got %d", len(filesystems))
	}

	var postgresFound bool
	var sqliteFound bool
	for _, entry := range filesystems {
		matches, globErr := fs.Glob(entry.FS, "*.up.sql")
		if globErr != nil {
			t.Fatalf("glob %s: %v", entry.Dialect, globErr)
		}
		if len(matches) == 0 {
			t.Fatalf("expected %s migration files, got none", entry.Dialect)
		}
		switch entry.Dialect {
		case DialectPostgres:
			postgresFound = true
		case DialectSQLite:
			sqliteFound = true
		}
	}

	if !postgresFound {
		t.Fatalf("expected postgres filesystem")
	}
	if !sqliteFound {
		t.Fatalf("expected sqlite filesystem")
	}
}

func TestRegister_UsesValidationTargets(t *testing.T) {
	var calls []string
	_, err := Register(context.Background(), func(_ context.Context, dialect string, _ string, _ fs.FS) error {
		calls = append(calls, dialect)
		return nil
	}, WithValidationTargets(DialectSQLite))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if len(calls) != 1 {
		t.Fatalf("expected 1 registration call, got %d", len(calls))
	}
	if calls[0] != DialectSQLite {
		t.Fatalf("expected sqlite registration, got %q", calls[0])
	}
}

func TestConnectionsCoreMigrationPair_ExistsForBothDialects(t *testing.T) {
	root := connections.GetMigrationsFS()
	paths := []string{
		"data/sql/migrations/20250301000000_connections_core.up.sql",
		"data/sql/migrations/20250301000000_connections_core.down.sql",
		"data/sql/migrations/sqlite/20250301000000_connections_core.up.sql",
		"data/sql/migrations/sqlite/20250301000000_connections_core.down.sql",
	}
	for _, migrationPath := range paths {
		content, err := fs.ReadFile(root, migrationPath)
		if err != nil {
			t.Fatalf("read migration %s: %v", migrationPath, err)
		}
		if strings.TrimSpace(string(content)) == "" {
			t.Fatalf("expected migration %s to have SQL content", migrationPath)
		}
	}
}

func TestSQLiteConnectionsCoreMigration_ApplyAndRollback(t *testing.T) {
	db, err := sql.Open("sqlite3", "file:migrations-connections-core?mode=memory&cache=shared&_foreign_keys=on")
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	defer func() { _ = db.Close() }()

	root := connections.GetMigrationsFS()
	sqliteMigrations, err := fs.Sub(root, "data/sql/migrations/sqlite")
	if err != nil {
		t.Fatalf("resolve sqlite migrations: %v", err)
	}

	if err := execSQLMigration(context.Background(), db, sqliteMigrations, "20250301000000_connections_core.up.sql"); err != nil {
		t.Fatalf("apply core migration up: %v", err)
	}

	for _, tableName := range RequiredTables {
		var count int
		if err := db.QueryRowContext(
			context.Background(),
			`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`,
			tableName,
		).Scan(&count); err != nil {
			t.Fatalf("query sqlite_master for %s: %v", tableName, err)
		}
		if count != 1 {
			t.Fatalf("expected table %s to exist after up migration", tableName)
		}
	}

	insertCredential := `
		INSERT INTO integration_credentials (
			id,
			integration_type,
			short_name,
			encrypted_payload,
			payload_format,
			payload_version,
			encryption_key_id,
			encryption_version,
			owner_user_id,
			owner_org_id,
			created_at,
			updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := db.ExecContext(
		context.Background(),
		insertCredential,
		"cred_migration_1",
		"source",
		"slack",
		[]byte("sealed"),
		"auth_fields_json",
		1,
		"key_1",
		1,
		"user_1",
		"",
		"2026-01-01T00:00:00Z",
		"2026-01-01T00:00:00Z",
	); err != nil {
		t.Fatalf("insert credential: %v", err)
	}

	insertConnection := `
		INSERT INTO connections (
			id,
			name,
			integration_type,
			short_name,
			credential_id,
			status,
			owner_user_id,
			owner_org_id,
			created_at,
			updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := db.ExecContext(
		context.Background(),
		insertConnection,
		"conn_migration_1",
		"Slack Connection",
		"source",
		"slack",
		"cred_migration_1",
		"active",
		"user_1",
		"",
		"2026-01-01T00:00:00Z",
		"2026-01-01T00:00:00Z",
	); err != nil {
		t.Fatalf("insert connection: %v", err)
	}

	if _, err := db.ExecContext(
		context.Background(),
		insertConnection,
		"conn_migration_2",
		"Slack Connection",
		"source",
		"slack",
		"cred_migration_1",
		"active",
		"user_1",
		"",
		"2026-01-02T00:00:00Z",
		"2026-01-02T00:00:00Z",
	); err == nil {
		t.Fatalf("expected second active connection for the same credential to violate unique index")
	}

	if _, err := db.ExecContext(
		context.Background(),
		insertConnection,
		"conn_migration_3",
		"Slack Connection",
		"source",
		"slack",
		"cred_migration_1",
		"disconnected",
		"user_1",
		"",
		"2026-01-03T00:00:00Z",
		"2026-01-03T00:00:00Z",
	); err != nil {
		t.Fatalf("expected disconnected connection to bypass the active-only index: %v", err)
	}

	if err := execSQLMigration(context.Background(), db, sqliteMigrations, "20250301000000_connections_core.down.sql"); err != nil {
		t.Fatalf("apply core migration down: %v", err)
	}

	var count int
	if err := db.QueryRowContext(
		context.Background(),
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`,
		"connections",
	).Scan(&count); err != nil {
		t.Fatalf("query sqlite_master after down migration: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected connections table to be dropped after down migration")
	}
}

func execSQLMigration(ctx context.Context, db *sql.DB, fsys fs.FS, filename string) error {
	content, err := fs.ReadFile(fsys, filepath.Clean(filename))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, string(content))
	return err
}
