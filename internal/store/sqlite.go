package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vendor-registry-api/internal/models"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DefaultSQLitePath is used when no path is configured.
const DefaultSQLitePath = "instance/vendordb.sqlite"

// sqliteKeyConstraint appears in the message when the PAN collides and
// extended result codes are unavailable.
const sqliteKeyConstraint = "constraint failed: " + models.TableName + "." + models.KeyColumn

var sqliteDialect = dialect{
	name:        SQLite,
	placeholder: func(int) string { return "?" },
	classify: func(err error) error {
		var se *sqlite.Error
		if !errors.As(err, &se) {
			return nil
		}
		code := se.Code()
		if code&0xff != sqlite3.SQLITE_CONSTRAINT {
			return nil
		}
		if code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || strings.Contains(se.Error(), sqliteKeyConstraint) {
			return ErrDuplicateKey
		}
		return ErrConstraintViolation
	},
}

// OpenSQLite opens (creating if needed) the embedded database file.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	if path == "" {
		path = DefaultSQLitePath
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// A single connection serializes writers inside the process.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	return &SQLStore{db: db, d: sqliteDialect}, nil
}
