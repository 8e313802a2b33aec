package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"vendor-registry-api/internal/models"
)

// dialect captures what differs between the SQL backends.
type dialect struct {
	name        string
	placeholder func(n int) string
	// classify maps a driver error to one of the store sentinels, or nil.
	classify func(err error) error
}

// SQLStore implements VendorStore on database/sql.
type SQLStore struct {
	db *sql.DB
	d  dialect
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func selectColumns() string {
	cols := models.Columns()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}

// createTableSQL renders the vendordetails DDL from the schema table.
func createTableSQL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", quoteIdent(models.TableName))
	fmt.Fprintf(&b, "\t%s VARCHAR(%d) NOT NULL,\n", quoteIdent(models.KeyColumn), models.KeySize)
	for _, f := range models.Fields {
		fmt.Fprintf(&b, "\t%s VARCHAR(%d),\n", quoteIdent(f.Column), f.Size)
	}
	fmt.Fprintf(&b, "\tCONSTRAINT %s PRIMARY KEY (%s)\n)", quoteIdent(primaryKeyName), quoteIdent(models.KeyColumn))
	return b.String()
}

const primaryKeyName = models.TableName + "_pkey"

// wrap attaches the matching sentinel, if any, to a driver error.
func (s *SQLStore) wrap(op string, err error) error {
	if sentinel := s.d.classify(err); sentinel != nil {
		return fmt.Errorf("%s: %w: %w", op, sentinel, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL()); err != nil {
		return fmt.Errorf("create %s table: %w", models.TableName, err)
	}
	return nil
}

func (s *SQLStore) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(models.TableName)); err != nil {
		return fmt.Errorf("drop %s table: %w", models.TableName, err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL()); err != nil {
		return fmt.Errorf("recreate %s table: %w", models.TableName, err)
	}
	return tx.Commit()
}

func (s *SQLStore) List(ctx context.Context) ([]models.Vendor, error) {
	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		selectColumns(), quoteIdent(models.TableName), quoteIdent(models.KeyColumn))
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()

	vendors := []models.Vendor{}
	for rows.Next() {
		var v models.Vendor
		if err := rows.Scan(models.ScanTargets(&v)...); err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		vendors = append(vendors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	return vendors, nil
}

func (s *SQLStore) Get(ctx context.Context, pan string) (*models.Vendor, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		selectColumns(), quoteIdent(models.TableName), quoteIdent(models.KeyColumn), s.d.placeholder(1))

	var v models.Vendor
	err := s.db.QueryRowContext(ctx, q, pan).Scan(models.ScanTargets(&v)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get vendor %s: %w", pan, err)
	}
	return &v, nil
}

func (s *SQLStore) Insert(ctx context.Context, v *models.Vendor) error {
	if v.PAN == "" {
		return fmt.Errorf("insert vendor: %w: %s is required", ErrConstraintViolation, models.KeyName)
	}

	cols := models.Columns()
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = s.d.placeholder(i + 1)
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(models.TableName), selectColumns(), strings.Join(placeholders, ", "))

	if _, err := s.db.ExecContext(ctx, q, models.Values(v)...); err != nil {
		return s.wrap("insert vendor "+v.PAN, err)
	}
	return nil
}

func (s *SQLStore) Update(ctx context.Context, pan string, patch map[string]*string) error {
	names := make([]string, 0, len(patch))
	for name := range patch {
		if _, ok := models.LookupField(name); ok {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return s.exists(ctx, pan)
	}
	sort.Strings(names)

	sets := make([]string, 0, len(names))
	args := make([]any, 0, len(names)+1)
	for i, name := range names {
		f, _ := models.LookupField(name)
		sets = append(sets, fmt.Sprintf("%s = %s", quoteIdent(f.Column), s.d.placeholder(i+1)))
		if val := patch[name]; val != nil {
			args = append(args, *val)
		} else {
			args = append(args, nil)
		}
	}
	args = append(args, pan)
	q := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		quoteIdent(models.TableName), strings.Join(sets, ", "),
		quoteIdent(models.KeyColumn), s.d.placeholder(len(args)))

	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return s.wrap("update vendor "+pan, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update vendor %s: %w", pan, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, pan string) error {
	q := fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
		quoteIdent(models.TableName), quoteIdent(models.KeyColumn), s.d.placeholder(1))
	res, err := s.db.ExecContext(ctx, q, pan)
	if err != nil {
		return fmt.Errorf("delete vendor %s: %w", pan, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete vendor %s: %w", pan, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) exists(ctx context.Context, pan string) error {
	q := fmt.Sprintf("SELECT 1 FROM %s WHERE %s = %s",
		quoteIdent(models.TableName), quoteIdent(models.KeyColumn), s.d.placeholder(1))
	var one int
	err := s.db.QueryRowContext(ctx, q, pan).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup vendor %s: %w", pan, err)
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", s.d.name, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
