package nmsdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"golang.org/x/sys/unix"
)

// DB is a read-only handle on a game-data database.
type DB struct {
	sql    *sql.DB
	path   string
	logger *slog.Logger
}

// Open checks that path is a readable file and opens it read-only.
//
// A missing file returns [ErrDatabaseNotFound] rather than letting SQLite
// create an empty database. logger may be nil.
func Open(ctx context.Context, path string, logger *slog.Logger) (*DB, error) {
	if path == "" {
		return nil, errors.New("open database: path is empty")
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, path)
		}

		return nil, fmt.Errorf("%w: %w", ErrDatabaseUnreadable, err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrDatabaseUnreadable, path)
	}

	err = unix.Access(path, unix.R_OK)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDatabaseUnreadable, path, err)
	}

	db, err := sql.Open("sqlite3", readOnlyDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One query per invocation; a single connection keeps query_only in effect.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	logger.Debug("opened database", "path", path, "size", info.Size())

	return &DB{sql: db, path: path, logger: logger}, nil
}

// Close releases the connection.
func (db *DB) Close() error {
	if db == nil || db.sql == nil {
		return nil
	}

	return db.sql.Close()
}

// Path returns the file the handle was opened on.
func (db *DB) Path() string {
	return db.path
}

// readOnlyDSN builds a SQLite URI filename. Characters with meaning in a URI
// are percent-encoded so odd file names still address the right file.
func readOnlyDSN(path string) string {
	escaped := strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23").Replace(path)

	return "file:" + escaped + "?mode=ro&_query_only=true"
}

// queryRows runs one report statement and scans every row with scan.
// The result is never nil so empty reports encode as [] rather than null.
func queryRows[T any](
	ctx context.Context,
	db *DB,
	name string,
	query string,
	scan func(*sql.Rows) (T, error),
	args ...any,
) ([]T, error) {
	if db == nil || db.sql == nil {
		return nil, fmt.Errorf("%s: database is not open", name)
	}

	start := time.Now()

	rows, err := db.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	defer func() { _ = rows.Close() }()

	out := make([]T, 0)

	for rows.Next() {
		row, scanErr := scan(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%s: scan: %w", name, scanErr)
		}

		out = append(out, row)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	db.logger.Debug("query done", "report", name, "rows", len(out), "elapsed", time.Since(start))

	return out, nil
}
