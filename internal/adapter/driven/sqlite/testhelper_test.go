package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"testing"
)

// setupTestDB creates a migrated, named shared in-memory SQLite database.
// The writer and reader handles share one database via cache=shared; the name
// is derived from t.Name() so parallel tests stay isolated. WAL does not
// apply to in-memory databases, so the journal_mode pragma is omitted.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Percent-encode the test name so subtests with slashes stay a single
	// URI filename component.
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=cache_size(-64000)",
		url.PathEscape(t.Name()),
	)

	writer := openTestConn(t, dsn, 1)
	reader := openTestConn(t, dsn, 4)

	db := &DB{Writer: writer, Reader: reader, path: dsn}
	t.Cleanup(func() { _ = db.Close() })

	if err := RunMigrations(db.Writer); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return db
}

func openTestConn(t *testing.T, dsn string, maxConns int) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	conn.SetMaxOpenConns(maxConns)

	if err := conn.PingContext(context.Background()); err != nil {
		_ = conn.Close()
		t.Fatalf("ping test db: %v", err)
	}

	return conn
}
