package introspect

import "fmt"

// ColumnSchema describes one column as reported by information_schema.
type ColumnSchema struct {
	Name       string `db:"column_name"`
	Position   int    `db:"ordinal_position"`
	DataType   string `db:"data_type"`
	IsNullable bool   `db:"is_nullable"`
}

// TableSchema is a table and its columns in ordinal order.
type TableSchema struct {
	Name    string
	Columns []*ColumnSchema
}

// Column returns the named column or nil.
func (t *TableSchema) Column(name string) *ColumnSchema {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// DriftKind classifies a difference between the live schema and the models.
type DriftKind string

const (
	MissingTable  DriftKind = "missing table"
	MissingColumn DriftKind = "missing column"
)

// Drift is a single schema difference.
type Drift struct {
	Kind   DriftKind
	Table  string
	Column string
}

func (d Drift) String() string {
	if d.Column == "" {
		return fmt.Sprintf("%s %s", d.Kind, d.Table)
	}
	return fmt.Sprintf("%s %s.%s", d.Kind, d.Table, d.Column)
}
