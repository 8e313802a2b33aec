package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"vendor-registry-api/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreCurrent())
}

func strPtr(s string) *string { return &s }

func newSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()
	ctx := context.Background()
	st, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "vendors.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.EnsureSchema(ctx))
	return st
}

func acme(pan string) *models.Vendor {
	return &models.Vendor{
		PAN:                  pan,
		LegalName:            strPtr("Acme"),
		BusinessType:         strPtr("Pvt Ltd"),
		RegisteredAddress:    strPtr("123 St"),
		CommunicationAddress: strPtr("123 St"),
		Email:                strPtr("a@b.com"),
		PhoneNumber:          strPtr("9999999999"),
	}
}

func TestCreateTableSQL(t *testing.T) {
	ddl := createTableSQL()
	assert.True(t, strings.HasPrefix(ddl, `CREATE TABLE IF NOT EXISTS "vendordetails"`))
	assert.Contains(t, ddl, `"pan" VARCHAR(20) NOT NULL`)
	assert.Contains(t, ddl, `"pincode" VARCHAR(10)`)
	assert.Contains(t, ddl, `CONSTRAINT "vendordetails_pkey" PRIMARY KEY ("pan")`)
	assert.NotContains(t, ddl, "DROP")
}

func TestSQLiteEnsureSchemaIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newSQLiteStore(t)
	require.NoError(t, st.Insert(ctx, acme("ABCDE1234F")))

	require.NoError(t, st.EnsureSchema(ctx))

	vendors, err := st.List(ctx)
	require.NoError(t, err)
	assert.Len(t, vendors, 1, "schema creation must not drop data")
}

func TestSQLiteListEmpty(t *testing.T) {
	vendors, err := newSQLiteStore(t).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, vendors)
	assert.Empty(t, vendors)
}

func TestSQLiteInsertGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newSQLiteStore(t)
	in := acme("ABCDE1234F")
	in.Photo = strPtr("uploads/photo.png")

	require.NoError(t, st.Insert(ctx, in))

	got, err := st.Get(ctx, "ABCDE1234F")
	require.NoError(t, err)
	assert.Equal(t, in, got)
	assert.Nil(t, got.GSTIN)
}

func TestSQLiteGetMissing(t *testing.T) {
	_, err := newSQLiteStore(t).Get(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteInsertDuplicate(t *testing.T) {
	ctx := context.Background()
	st := newSQLiteStore(t)
	require.NoError(t, st.Insert(ctx, acme("ABCDE1234F")))

	err := st.Insert(ctx, acme("ABCDE1234F"))
	assert.ErrorIs(t, err, ErrDuplicateKey)

	vendors, err := st.List(ctx)
	require.NoError(t, err)
	assert.Len(t, vendors, 1)
}

func TestSQLiteInsertEmptyKey(t *testing.T) {
	err := newSQLiteStore(t).Insert(context.Background(), acme(""))
	assert.ErrorIs(t, err, ErrConstraintViolation)
}

func TestSQLiteConcurrentInsertSameKey(t *testing.T) {
	ctx := context.Background()
	st := newSQLiteStore(t)

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = st.Insert(ctx, acme("ABCDE1234F"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrDuplicateKey)
	}
	assert.Equal(t, 1, succeeded)
}

func TestSQLiteUpdatePartial(t *testing.T) {
	ctx := context.Background()
	st := newSQLiteStore(t)
	require.NoError(t, st.Insert(ctx, acme("ABCDE1234F")))

	err := st.Update(ctx, "ABCDE1234F", map[string]*string{
		"Email":       strPtr("new@x.com"),
		"Not_A_Field": strPtr("ignored"),
	})
	require.NoError(t, err)

	got, err := st.Get(ctx, "ABCDE1234F")
	require.NoError(t, err)
	want := acme("ABCDE1234F")
	want.Email = strPtr("new@x.com")
	assert.Equal(t, want, got)
}

func TestSQLiteUpdateClearsWithNull(t *testing.T) {
	ctx := context.Background()
	st := newSQLiteStore(t)
	v := acme("ABCDE1234F")
	v.City = strPtr("Pune")
	require.NoError(t, st.Insert(ctx, v))

	require.NoError(t, st.Update(ctx, "ABCDE1234F", map[string]*string{"City": nil}))

	got, err := st.Get(ctx, "ABCDE1234F")
	require.NoError(t, err)
	assert.Nil(t, got.City)
	assert.Equal(t, "Acme", *got.LegalName)
}

func TestSQLiteUpdateMissing(t *testing.T) {
	ctx := context.Background()
	st := newSQLiteStore(t)
	require.NoError(t, st.Insert(ctx, acme("ABCDE1234F")))

	err := st.Update(ctx, "MISSING", map[string]*string{"Email": strPtr("x@y.z")})
	assert.ErrorIs(t, err, ErrNotFound)

	err = st.Update(ctx, "MISSING", map[string]*string{"Bogus": strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := st.Get(ctx, "ABCDE1234F")
	require.NoError(t, err)
	assert.Equal(t, acme("ABCDE1234F"), got)
}

func TestSQLiteUpdateNoRecognizedFields(t *testing.T) {
	ctx := context.Background()
	st := newSQLiteStore(t)
	require.NoError(t, st.Insert(ctx, acme("ABCDE1234F")))

	assert.NoError(t, st.Update(ctx, "ABCDE1234F", map[string]*string{"PAN": strPtr("OTHER")}))

	_, err := st.Get(ctx, "ABCDE1234F")
	assert.NoError(t, err, "key must not change through update")
}

func TestSQLiteDelete(t *testing.T) {
	ctx := context.Background()
	st := newSQLiteStore(t)
	require.NoError(t, st.Insert(ctx, acme("ABCDE1234F")))
	require.NoError(t, st.Insert(ctx, acme("ZZZZZ9999Z")))

	require.NoError(t, st.Delete(ctx, "ABCDE1234F"))

	_, err := st.Get(ctx, "ABCDE1234F")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, st.Delete(ctx, "ABCDE1234F"), ErrNotFound)

	vendors, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, vendors, 1)
	assert.Equal(t, "ZZZZZ9999Z", vendors[0].PAN)
}

func TestSQLiteListOrderedByKey(t *testing.T) {
	ctx := context.Background()
	st := newSQLiteStore(t)
	for _, pan := range []string{"CCCCC3333C", "AAAAA1111A", "BBBBB2222B"} {
		require.NoError(t, st.Insert(ctx, acme(pan)))
	}

	vendors, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, vendors, 3)
	assert.Equal(t, "AAAAA1111A", vendors[0].PAN)
	assert.Equal(t, "CCCCC3333C", vendors[2].PAN)
}

func TestSQLiteReset(t *testing.T) {
	ctx := context.Background()
	st := newSQLiteStore(t)
	require.NoError(t, st.Insert(ctx, acme("ABCDE1234F")))

	require.NoError(t, st.Reset(ctx))

	vendors, err := st.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, vendors)
	assert.NoError(t, st.Insert(ctx, acme("ABCDE1234F")), "table is usable after reset")
}

func TestOpenUnsupportedBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Type: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestOpenDefaultsToSQLite(t *testing.T) {
	st, err := Open(context.Background(), Options{SQLitePath: filepath.Join(t.TempDir(), "db", "v.sqlite")})
	require.NoError(t, err)
	defer st.Close()
	_, ok := st.(*SQLStore)
	assert.True(t, ok)
}

func TestPostgresClassify(t *testing.T) {
	assert.Nil(t, postgresDialect.classify(errors.New("boom")))
	assert.Equal(t, "$3", postgresDialect.placeholder(3))

	dup := &pgconn.PgError{Code: "23505", ConstraintName: "vendordetails_pkey"}
	assert.Equal(t, ErrDuplicateKey, postgresDialect.classify(fmt.Errorf("exec: %w", dup)))

	notNull := &pgconn.PgError{Code: "23502", ColumnName: "pan"}
	assert.Equal(t, ErrConstraintViolation, postgresDialect.classify(notNull))

	tooLong := &pgconn.PgError{Code: "22001"}
	assert.Nil(t, postgresDialect.classify(tooLong))
}
