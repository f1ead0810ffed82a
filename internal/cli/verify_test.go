package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/hiretrack/internal/introspect"
	"github.com/eleven-am/hiretrack/internal/models"
)

func liveSchema() map[string]*introspect.TableSchema {
	tables := map[string]*introspect.TableSchema{
		"schema_migrations": {Name: "schema_migrations", Columns: []*introspect.ColumnSchema{{Name: "version"}}},
	}
	for _, meta := range models.Schema {
		table := &introspect.TableSchema{Name: meta.TableName}
		for i, name := range meta.InsertColumns {
			table.Columns = append(table.Columns, &introspect.ColumnSchema{Name: name, Position: i + 1})
		}
		tables[meta.TableName] = table
	}
	return tables
}

func TestReport(t *testing.T) {
	t.Run("matching schema", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, report(&out, liveSchema(), true))
		assert.Contains(t, out.String(), "Found 5 tables in database")
		assert.Contains(t, out.String(), "  cvs (9 columns)")
		assert.Contains(t, out.String(), "Schema matches models")
	})

	t.Run("drift fails", func(t *testing.T) {
		tables := liveSchema()
		delete(tables, "reminders")
		tables["cvs"].Columns = tables["cvs"].Columns[:8]

		var out bytes.Buffer
		err := report(&out, tables, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 difference(s)")
		assert.Contains(t, out.String(), "missing column cvs.uploaded_at")
		assert.Contains(t, out.String(), "missing table reminders")
		assert.NotContains(t, out.String(), "(9 columns)")
	})
}
