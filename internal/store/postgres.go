package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const pgUniqueViolation = "23505"

var postgresDialect = dialect{
	name:        Postgres,
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	classify: func(err error) error {
		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) {
			return nil
		}
		if pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == primaryKeyName {
			return ErrDuplicateKey
		}
		// Class 23: integrity constraint violation.
		if strings.HasPrefix(pgErr.Code, "23") {
			return ErrConstraintViolation
		}
		return nil
	},
}

// OpenPostgres connects through the pgx database/sql driver.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres DSN is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &SQLStore{db: db, d: postgresDialect}, nil
}
