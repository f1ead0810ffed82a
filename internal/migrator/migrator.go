// Package migrator applies the embedded schema migrations.
package migrator

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/eleven-am/hiretrack/internal/logger"
	"github.com/eleven-am/hiretrack/internal/orm"
)

//go:embed migrations/*.sql
var embedded embed.FS

// Migration is one ordered schema change. Files are named
// NNNN_description.sql.
type Migration struct {
	Version string
	Name    string
	SQL     string
}

type appliedMigration struct {
	Version   string    `db:"version"`
	Name      string    `db:"name"`
	AppliedAt time.Time `db:"applied_at"`
}

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version    TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL
)`

var migrationsMetadata = orm.Metadata{
	TableName:     "schema_migrations",
	PrimaryKey:    "version",
	Columns:       []string{"schema_migrations.version", "schema_migrations.name", "schema_migrations.applied_at"},
	InsertColumns: []string{"version", "name", "applied_at"},
}

var migrationVersion = orm.Column[string]{Name: "version", Table: "schema_migrations"}

// Load reads migrations from fsys in version order.
func Load(fsys fs.FS) ([]Migration, error) {
	files, err := fs.Glob(fsys, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(files)

	migrations := make([]Migration, 0, len(files))
	seen := make(map[string]string)
	for _, file := range files {
		base := strings.TrimSuffix(path.Base(file), ".sql")
		version, name, ok := strings.Cut(base, "_")
		if !ok || version == "" || name == "" {
			return nil, fmt.Errorf("migration %s: expected NNNN_description.sql", file)
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("migration version %s used by both %s and %s", version, prev, file)
		}
		seen[version] = file

		content, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", file, err)
		}
		migrations = append(migrations, Migration{Version: version, Name: name, SQL: string(content)})
	}

	return migrations, nil
}

type Migrator struct {
	db         *sqlx.DB
	migrations []Migration
	now        func() time.Time
}

// New returns a migrator over the embedded migrations.
func New(db *sqlx.DB) (*Migrator, error) {
	migrations, err := Load(embedded)
	if err != nil {
		return nil, err
	}
	return NewWithMigrations(db, migrations), nil
}

func NewWithMigrations(db *sqlx.DB, migrations []Migration) *Migrator {
	return &Migrator{db: db, migrations: migrations, now: time.Now}
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, createMigrationsTable); err != nil {
		return orm.ParsePostgreSQLError(err, "ensure", migrationsMetadata.TableName)
	}
	return nil
}

// Pending returns migrations that have not been recorded yet.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}

	repo, err := orm.NewRepository[appliedMigration](m.db, migrationsMetadata)
	if err != nil {
		return nil, err
	}

	applied, err := repo.Query(ctx).OrderBy(migrationVersion.Asc()).Find()
	if err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}

	done := make(map[string]bool, len(applied))
	for _, a := range applied {
		done[a.Version] = true
	}

	var pending []Migration
	for _, mig := range m.migrations {
		if !done[mig.Version] {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

// Up applies every pending migration, each in its own transaction, and
// returns the ones applied.
func (m *Migrator) Up(ctx context.Context) ([]Migration, error) {
	pending, err := m.Pending(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.Migration()
	applied := make([]Migration, 0, len(pending))

	for _, mig := range pending {
		log.WithField("version", mig.Version).Infof("applying %s", mig.Name)

		err := orm.WithTransaction(ctx, m.db, func(tx orm.DBExecutor) error {
			if _, err := tx.ExecContext(ctx, mig.SQL); err != nil {
				return fmt.Errorf("migration %s_%s failed: %w", mig.Version, mig.Name, err)
			}

			repo, err := orm.NewRepository[appliedMigration](tx, migrationsMetadata)
			if err != nil {
				return err
			}
			return repo.Create(ctx, &appliedMigration{
				Version:   mig.Version,
				Name:      mig.Name,
				AppliedAt: m.now().UTC(),
			})
		})
		if err != nil {
			return applied, err
		}

		applied = append(applied, mig)
	}

	if len(applied) == 0 {
		log.Info("schema is up to date")
	}
	return applied, nil
}
