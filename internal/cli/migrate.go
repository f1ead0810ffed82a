package cli

import (
	"context"
	"time"

	"github.com/juju/errors"
	"github.com/spf13/cobra"

	"github.com/eleven-am/hiretrack/internal/migrator"
)

var (
	dryRun              bool
	createDBIfNotExists bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long: `Apply the embedded schema migrations in order. Applied versions are
recorded in schema_migrations so the command is safe to rerun.`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "list pending migrations without applying them")
	migrateCmd.Flags().BoolVar(&createDBIfNotExists, "create-if-not-exists", false, "create the database if it does not exist")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := appConfig.ValidateDatabase(); err != nil {
		return err
	}
	if verbose {
		cmd.Printf("Using database: %s\n", redactURL(appConfig.Database.URL))
	}
	if createDBIfNotExists {
		if err := migrator.EnsureDatabaseExists(appConfig.Database.URL); err != nil {
			return errors.Annotate(err, "creating database")
		}
	}

	db, err := openDB(ctx, appConfig)
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := migrator.New(db)
	if err != nil {
		return errors.Trace(err)
	}

	if dryRun {
		pending, err := m.Pending(ctx)
		if err != nil {
			return errors.Trace(err)
		}
		if len(pending) == 0 {
			cmd.Println("Database is up to date")
			return nil
		}
		cmd.Printf("%d pending migration(s):\n", len(pending))
		for _, mig := range pending {
			cmd.Printf("  %s_%s\n", mig.Version, mig.Name)
		}
		return nil
	}

	applied, err := m.Up(ctx)
	for _, mig := range applied {
		cmd.Printf("Applied %s_%s\n", mig.Version, mig.Name)
	}
	if err != nil {
		return errors.Trace(err)
	}
	if len(applied) == 0 {
		cmd.Println("Database is up to date")
	}
	return nil
}
