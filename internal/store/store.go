// Package store persists vendor records. Every backend keys records by PAN and
// relies on the backend's own uniqueness constraint to serialize creates.
package store

import (
	"context"
	"errors"
	"fmt"

	"vendor-registry-api/internal/models"
)

var (
	// ErrNotFound is returned when no record has the requested PAN.
	ErrNotFound = errors.New("vendor not found")
	// ErrDuplicateKey is returned when a record with the same PAN exists.
	ErrDuplicateKey = errors.New("duplicate vendor key")
	// ErrConstraintViolation covers every other integrity failure on write,
	// including an empty PAN.
	ErrConstraintViolation = errors.New("vendor constraint violation")
)

// Backend names accepted by Open.
const (
	SQLite   = "sqlite"
	Postgres = "postgres"
	Mongo    = "mongo"
)

// VendorStore is durable keyed storage for vendor records.
type VendorStore interface {
	List(ctx context.Context) ([]models.Vendor, error)
	Get(ctx context.Context, pan string) (*models.Vendor, error)
	Insert(ctx context.Context, v *models.Vendor) error
	// Update writes only the named fields. Unknown names are ignored.
	Update(ctx context.Context, pan string, patch map[string]*string) error
	Delete(ctx context.Context, pan string) error

	// EnsureSchema creates the table if it is missing. It never drops data.
	EnsureSchema(ctx context.Context) error
	// Reset drops every vendor record and recreates the empty table.
	// It is irreversible and must only run on explicit operator request.
	Reset(ctx context.Context) error

	Ping(ctx context.Context) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Type string

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string
	// DSN is the connection string for the postgres backend.
	DSN string

	MongoURL      string
	MongoDatabase string
}

// Open connects to the configured backend. The caller owns the returned
// store and must Close it.
func Open(ctx context.Context, opts Options) (VendorStore, error) {
	var (
		st  VendorStore
		err error
	)
	switch opts.Type {
	case SQLite, "":
		st, err = OpenSQLite(ctx, opts.SQLitePath)
	case Postgres:
		st, err = OpenPostgres(ctx, opts.DSN)
	case Mongo:
		st, err = OpenMongo(ctx, opts.MongoURL, opts.MongoDatabase)
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", opts.Type)
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}
