// Package dbtest provisions throwaway Postgres databases for integration
// tests. Tests are skipped unless HIRETRACK_TEST_DATABASE_URL points at a
// server the current user may create databases on.
package dbtest

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/hiretrack/internal/migrator"
)

// EnvURL names the variable holding the base connection URL.
const EnvURL = "HIRETRACK_TEST_DATABASE_URL"

// TestDB is a migrated database dropped when the test ends.
type TestDB struct {
	DB      *sqlx.DB
	Name    string
	ConnStr string
}

// New creates a uniquely named database, applies every migration and
// registers cleanup.
func New(t *testing.T) *TestDB {
	t.Helper()

	base := lookupURL(t)
	u, err := url.Parse(base)
	require.NoError(t, err, "parsing %s", EnvURL)

	name := fmt.Sprintf("hiretrack_test_%d", time.Now().UnixNano())
	u.Path = "/" + name
	connStr := u.String()

	require.NoError(t, migrator.EnsureDatabaseExists(connStr))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := migrator.NewDBConfig(connStr).Connect(ctx)
	require.NoError(t, err)

	tdb := &TestDB{DB: db, Name: name, ConnStr: connStr}
	t.Cleanup(func() { tdb.drop(t, base) })

	m, err := migrator.New(db)
	require.NoError(t, err)
	_, err = m.Up(ctx)
	require.NoError(t, err)

	return tdb
}

func lookupURL(t *testing.T) string {
	t.Helper()
	base := os.Getenv(EnvURL)
	if base == "" {
		t.Skipf("%s not set; skipping integration test", EnvURL)
	}
	return base
}

func (tdb *TestDB) drop(t *testing.T, base string) {
	tdb.DB.Close()

	admin, err := sqlx.Open("postgres", base)
	if err != nil {
		t.Logf("failed to connect for cleanup: %v", err)
		return
	}
	defer admin.Close()

	_, err = admin.Exec(`
		SELECT pg_terminate_backend(pid)
		FROM pg_stat_activity
		WHERE datname = $1 AND pid <> pg_backend_pid()`, tdb.Name)
	if err != nil {
		t.Logf("failed to terminate connections: %v", err)
	}
	if _, err := admin.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %q", tdb.Name)); err != nil {
		t.Logf("failed to drop test database: %v", err)
	}
}
