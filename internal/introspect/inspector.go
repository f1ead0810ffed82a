package introspect

import (
	"context"

	"github.com/juju/errors"

	"github.com/eleven-am/hiretrack/internal/orm"
)

// DefaultSchema is the Postgres schema the migrations create tables in.
const DefaultSchema = "public"

const columnsQuery = `
	SELECT
		c.table_name,
		c.column_name,
		c.ordinal_position,
		c.data_type,
		c.is_nullable = 'YES' AS is_nullable
	FROM information_schema.columns c
	JOIN information_schema.tables t
		ON t.table_schema = c.table_schema AND t.table_name = c.table_name
	WHERE c.table_schema = $1 AND t.table_type = 'BASE TABLE'
	ORDER BY c.table_name, c.ordinal_position`

type columnRow struct {
	Table string `db:"table_name"`
	ColumnSchema
}

// Inspector reads the live database schema.
type Inspector struct {
	db orm.DBExecutor
}

// NewInspector creates a new database inspector
func NewInspector(db orm.DBExecutor) *Inspector {
	return &Inspector{db: db}
}

// Tables returns every base table in schema keyed by name.
func (i *Inspector) Tables(ctx context.Context, schema string) (map[string]*TableSchema, error) {
	var rows []columnRow
	if err := i.db.SelectContext(ctx, &rows, columnsQuery, schema); err != nil {
		return nil, errors.Annotatef(err, "reading columns of schema %q", schema)
	}

	tables := make(map[string]*TableSchema)
	for _, row := range rows {
		table, ok := tables[row.Table]
		if !ok {
			table = &TableSchema{Name: row.Table}
			tables[row.Table] = table
		}
		col := row.ColumnSchema
		table.Columns = append(table.Columns, &col)
	}
	return tables, nil
}

// Verify reports every table or column the models expect that the live
// schema lacks. Extra tables and columns are ignored. The result is in
// model order.
func Verify(live map[string]*TableSchema, expected []orm.Metadata) []Drift {
	var drifts []Drift
	for _, meta := range expected {
		table, ok := live[meta.TableName]
		if !ok {
			drifts = append(drifts, Drift{Kind: MissingTable, Table: meta.TableName})
			continue
		}
		for _, name := range meta.InsertColumns {
			if table.Column(name) == nil {
				drifts = append(drifts, Drift{Kind: MissingColumn, Table: meta.TableName, Column: name})
			}
		}
	}
	return drifts
}
