package orm

import (
	"context"
	"fmt"
	"strings"
)

// Metadata describes how a model maps onto a table
type Metadata struct {
	// TableName is the table records are read from and written to
	TableName string
	// PrimaryKey is the single primary key column
	PrimaryKey string
	// Columns are the select expressions, in scan order. Joined
	// projections may use qualified names and aliases.
	Columns []string
	// InsertColumns are written by Create as named parameters
	InsertColumns []string
}

// Repository provides typed access to a single table
type Repository[T any] struct {
	db       DBExecutor
	metadata Metadata
}

// NewRepository creates a repository bound to the given executor
func NewRepository[T any](db DBExecutor, metadata Metadata) (*Repository[T], error) {
	if db == nil {
		return nil, fmt.Errorf("orm: nil executor for %s", metadata.TableName)
	}
	if metadata.TableName == "" {
		return nil, fmt.Errorf("orm: table name is required")
	}
	if len(metadata.Columns) == 0 {
		return nil, fmt.Errorf("orm: no columns defined for %s", metadata.TableName)
	}
	return &Repository[T]{db: db, metadata: metadata}, nil
}

// MustRepository is NewRepository for statically known metadata
func MustRepository[T any](db DBExecutor, metadata Metadata) *Repository[T] {
	repo, err := NewRepository[T](db, metadata)
	if err != nil {
		panic(err)
	}
	return repo
}

// TableName returns the repository's table
func (r *Repository[T]) TableName() string {
	return r.metadata.TableName
}

// Columns returns the select expressions
func (r *Repository[T]) Columns() []string {
	return r.metadata.Columns
}

// Create inserts record using its db-tagged fields
func (r *Repository[T]) Create(ctx context.Context, record *T) error {
	if record == nil {
		return &Error{Op: "create", Table: r.metadata.TableName, Err: fmt.Errorf("record cannot be nil")}
	}
	if len(r.metadata.InsertColumns) == 0 {
		return &Error{Op: "create", Table: r.metadata.TableName, Err: fmt.Errorf("no insert columns defined")}
	}

	values := make([]string, len(r.metadata.InsertColumns))
	for i, col := range r.metadata.InsertColumns {
		values[i] = ":" + col
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		r.metadata.TableName,
		strings.Join(r.metadata.InsertColumns, ", "),
		strings.Join(values, ", "),
	)

	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return ParsePostgreSQLError(err, "create", r.metadata.TableName)
	}
	return nil
}

// FindByID loads a single record by primary key
func (r *Repository[T]) FindByID(ctx context.Context, id interface{}) (*T, error) {
	if r.metadata.PrimaryKey == "" {
		return nil, &Error{Op: "findByID", Table: r.metadata.TableName, Err: fmt.Errorf("no primary key defined")}
	}

	pk := Column[interface{}]{Name: r.metadata.PrimaryKey, Table: r.metadata.TableName}
	record, err := r.Query(ctx).Where(pk.Eq(id)).First()
	if err != nil {
		return nil, err
	}
	return record, nil
}
