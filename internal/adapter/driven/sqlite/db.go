// Package sqlite implements the FilterConfigStore port on an embedded SQLite
// database.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB holds split reader and writer connection pools over one database file.
// The writer is pinned to a single connection so concurrent saves serialize
// instead of failing with "database is locked"; reads fan out over a small
// pool.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
	path   string
}

const maxReaderConns = 4

// NewDB opens the database at path with WAL journaling, a busy timeout,
// synchronous NORMAL, foreign keys on, and a 64MB page cache.
func NewDB(path string) (*DB, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=cache_size(-64000)",
		path,
	)

	writer, err := openConn(dsn, 1)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}

	reader, err := openConn(dsn, maxReaderConns)
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}

	return &DB{Writer: writer, Reader: reader, path: path}, nil
}

func openConn(dsn string, maxConns int) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(maxConns)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return conn, nil
}

// Close closes both pools, reporting every close failure.
func (db *DB) Close() error {
	return errors.Join(db.Reader.Close(), db.Writer.Close())
}
