package migrator

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"testing/fstest"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbedded(t *testing.T) {
	migrations, err := Load(embedded)
	require.NoError(t, err)
	require.Len(t, migrations, 4)

	assert.Equal(t, "0001", migrations[0].Version)
	assert.Equal(t, "create_users", migrations[0].Name)
	assert.Equal(t, "create_reminders", migrations[3].Name)
	assert.Contains(t, migrations[3].SQL, "is_sent")
}

func TestLoadRejectsBadNames(t *testing.T) {
	_, err := Load(fstest.MapFS{
		"migrations/init.sql": {Data: []byte("SELECT 1")},
	})
	assert.Error(t, err)

	_, err = Load(fstest.MapFS{
		"migrations/0001_a.sql": {Data: []byte("SELECT 1")},
		"migrations/0001_b.sql": {Data: []byte("SELECT 2")},
	})
	assert.Error(t, err)
}

func newMockMigrator(t *testing.T, migrations []Migration) (*Migrator, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := NewWithMigrations(sqlx.NewDb(db, "postgres"), migrations)
	m.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return m, mock
}

var testMigrations = []Migration{
	{Version: "0001", Name: "first", SQL: "CREATE TABLE first_table (id INT)"},
	{Version: "0002", Name: "second", SQL: "CREATE TABLE second_table (id INT)"},
}

func expectApplied(mock sqlmock.Sqlmock, versions ...string) {
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rows := sqlmock.NewRows([]string{"version", "name", "applied_at"})
	for _, v := range versions {
		rows.AddRow(v, "x", time.Now())
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT schema_migrations.version, schema_migrations.name, schema_migrations.applied_at FROM schema_migrations ORDER BY schema_migrations.version ASC")).
		WillReturnRows(rows)
}

func TestPending(t *testing.T) {
	m, mock := newMockMigrator(t, testMigrations)
	expectApplied(mock, "0001")

	pending, err := m.Pending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "0002", pending[0].Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUp(t *testing.T) {
	t.Run("applies pending in order", func(t *testing.T) {
		m, mock := newMockMigrator(t, testMigrations)
		expectApplied(mock)

		for _, mig := range testMigrations {
			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta(mig.SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations (version, name, applied_at) VALUES ($1, $2, $3)")).
				WithArgs(mig.Version, mig.Name, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit()
		}

		applied, err := m.Up(context.Background())
		require.NoError(t, err)
		assert.Len(t, applied, 2)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stops and rolls back on failure", func(t *testing.T) {
		m, mock := newMockMigrator(t, testMigrations)
		expectApplied(mock)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(testMigrations[0].SQL)).WillReturnError(errors.New("syntax error"))
		mock.ExpectRollback()

		applied, err := m.Up(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "0001_first")
		assert.Empty(t, applied)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nothing to do", func(t *testing.T) {
		m, mock := newMockMigrator(t, testMigrations)
		expectApplied(mock, "0001", "0002")

		applied, err := m.Up(context.Background())
		require.NoError(t, err)
		assert.Empty(t, applied)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
