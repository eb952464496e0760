// Package dbtest opens migrated SQLite databases for tests.
package dbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"entgo.io/ent/dialect"

	"github.com/VastSea0/italiano-sub000/internal/infrastructure/database"
)

// DSN returns a temp-file SQLite DSN unique to the test.
func DSN(t *testing.T, name string) string {
	t.Helper()
	return "file:" + filepath.Join(t.TempDir(), name+".db") + "?_fk=1&cache=shared"
}

// Open skips the test when the sqlite driver is unusable (e.g. built without
// cgo), otherwise returns a migrated driver closed at cleanup.
func Open(t *testing.T, dsn string) dialect.Driver {
	t.Helper()
	RequireSQLite(t)

	drv, cleanup, err := database.Open("sqlite3", dsn, false, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(cleanup)

	if err := database.Migrate(context.Background(), drv); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return drv
}

// RequireSQLite skips the test when the sqlite driver cannot be used.
func RequireSQLite(t *testing.T) {
	t.Helper()
	db, err := sql.Open("sqlite3", "file::memory:?cache=shared")
	if err != nil {
		t.Skipf("sqlite driver not available: %v", err)
		return
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		t.Skipf("skipping sqlite-dependent tests: %v", err)
	}
}
