package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/juju/errors"
	"github.com/spf13/cobra"

	"github.com/eleven-am/hiretrack/internal/introspect"
	"github.com/eleven-am/hiretrack/internal/models"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify database schema matches models",
	Long: `Verify that every table and column the services write to exists in the
live database. Extra tables and columns are ignored.

Returns a non-zero exit code if anything is missing.`,
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := openDB(ctx, appConfig)
	if err != nil {
		return err
	}
	defer db.Close()

	tables, err := introspect.NewInspector(db).Tables(ctx, introspect.DefaultSchema)
	if err != nil {
		return errors.Trace(err)
	}
	return report(cmd.OutOrStdout(), tables, verbose)
}

func report(out io.Writer, tables map[string]*introspect.TableSchema, listTables bool) error {
	fmt.Fprintf(out, "Found %d tables in database\n", len(tables))
	if listTables {
		names := make([]string, 0, len(tables))
		for name := range tables {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "  %s (%d columns)\n", name, len(tables[name].Columns))
		}
	}

	drifts := introspect.Verify(tables, models.Schema)
	if len(drifts) == 0 {
		fmt.Fprintf(out, "Schema matches models\n")
		return nil
	}
	for _, d := range drifts {
		fmt.Fprintf(out, "  %s\n", d)
	}
	return errors.Errorf("schema drift: %d difference(s), run migrate", len(drifts))
}
