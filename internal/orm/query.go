package orm

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/Masterminds/squirrel"
)

// Query provides a fluent interface for building database queries
type Query[T any] struct {
	repo    *Repository[T]
	builder squirrel.SelectBuilder
	ctx     context.Context

	limit       *uint64
	offset      *uint64
	orderBy     []string
	whereClause squirrel.And
	joins       []join
}

// Query creates a new query builder
func (r *Repository[T]) Query(ctx context.Context) *Query[T] {
	return &Query[T]{
		repo: r,
		builder: squirrel.Select(r.metadata.Columns...).
			From(r.metadata.TableName).
			PlaceholderFormat(squirrel.Dollar),
		ctx:         ctx,
		whereClause: squirrel.And{},
		joins:       make([]join, 0),
	}
}

// Where adds a type-safe condition
func (q *Query[T]) Where(condition Condition) *Query[T] {
	q.whereClause = append(q.whereClause, condition.ToSqlizer())
	return q
}

// OrderBy adds an ORDER BY clause
func (q *Query[T]) OrderBy(expressions ...string) *Query[T] {
	q.orderBy = append(q.orderBy, expressions...)
	return q
}

// Limit sets the LIMIT clause
func (q *Query[T]) Limit(limit uint64) *Query[T] {
	q.limit = &limit
	return q
}

// Offset sets the OFFSET clause
func (q *Query[T]) Offset(offset uint64) *Query[T] {
	q.offset = &offset
	return q
}

// InnerJoin adds an INNER JOIN
func (q *Query[T]) InnerJoin(table, condition string) *Query[T] {
	q.joins = append(q.joins, join{Table: table, Condition: condition})
	return q
}

func (q *Query[T]) buildQuery() (string, []interface{}, error) {
	builder := applyJoins(q.builder, q.joins)

	if len(q.whereClause) > 0 {
		builder = builder.Where(q.whereClause)
	}

	for _, orderBy := range q.orderBy {
		builder = builder.OrderBy(orderBy)
	}

	if q.limit != nil {
		builder = builder.Limit(*q.limit)
	}

	if q.offset != nil {
		builder = builder.Offset(*q.offset)
	}

	return builder.ToSql()
}

// Find executes the query and returns all matching records
func (q *Query[T]) Find() ([]T, error) {
	sqlQuery, args, err := q.buildQuery()
	if err != nil {
		return nil, &Error{
			Op:    "find",
			Table: q.repo.metadata.TableName,
			Err:   fmt.Errorf("failed to build query: %w", err),
		}
	}

	records := make([]T, 0)
	if err := q.repo.db.SelectContext(q.ctx, &records, sqlQuery, args...); err != nil {
		return nil, ParsePostgreSQLError(err, "find", q.repo.metadata.TableName)
	}

	return records, nil
}

// First executes the query and returns the first matching record
func (q *Query[T]) First() (*T, error) {
	q.Limit(1)
	records, err := q.Find()
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, &Error{
			Op:    "first",
			Table: q.repo.metadata.TableName,
			Err:   ErrNotFound,
		}
	}

	return &records[0], nil
}

// Count returns the number of records matching the query
func (q *Query[T]) Count() (int64, error) {
	countBuilder := applyJoins(squirrel.Select("COUNT(*)").
		From(q.repo.metadata.TableName).
		PlaceholderFormat(squirrel.Dollar), q.joins)

	if len(q.whereClause) > 0 {
		countBuilder = countBuilder.Where(q.whereClause)
	}

	sqlQuery, args, err := countBuilder.ToSql()
	if err != nil {
		return 0, &Error{
			Op:    "count",
			Table: q.repo.metadata.TableName,
			Err:   fmt.Errorf("failed to build count query: %w", err),
		}
	}

	var count int64
	if err := q.repo.db.GetContext(q.ctx, &count, sqlQuery, args...); err != nil {
		return 0, ParsePostgreSQLError(err, "count", q.repo.metadata.TableName)
	}

	return count, nil
}

// Exists checks if any records match the query
func (q *Query[T]) Exists() (bool, error) {
	count, err := q.Count()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update applies updates to every record matching the query and
// returns the number of rows affected. Columns are written in sorted
// order so the generated SQL is stable.
func (q *Query[T]) Update(updates map[string]interface{}) (int64, error) {
	if len(updates) == 0 {
		return 0, &Error{
			Op:    "update",
			Table: q.repo.metadata.TableName,
			Err:   fmt.Errorf("no updates provided"),
		}
	}

	columns := make([]string, 0, len(updates))
	for column := range updates {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	updateBuilder := squirrel.Update(q.repo.metadata.TableName).
		PlaceholderFormat(squirrel.Dollar)

	for _, column := range columns {
		updateBuilder = updateBuilder.Set(column, updates[column])
	}

	if len(q.whereClause) > 0 {
		updateBuilder = updateBuilder.Where(q.whereClause)
	}

	sqlQuery, args, err := updateBuilder.ToSql()
	if err != nil {
		return 0, &Error{
			Op:    "update",
			Table: q.repo.metadata.TableName,
			Err:   fmt.Errorf("failed to build update query: %w", err),
		}
	}

	result, err := q.repo.db.ExecContext(q.ctx, sqlQuery, args...)
	if err != nil {
		return 0, ParsePostgreSQLError(err, "update", q.repo.metadata.TableName)
	}

	return rowsAffected(result, "update", q.repo.metadata.TableName)
}

// Delete deletes all records matching the query
func (q *Query[T]) Delete() (int64, error) {
	deleteBuilder := squirrel.Delete(q.repo.metadata.TableName).
		PlaceholderFormat(squirrel.Dollar)

	if len(q.whereClause) > 0 {
		deleteBuilder = deleteBuilder.Where(q.whereClause)
	}

	sqlQuery, args, err := deleteBuilder.ToSql()
	if err != nil {
		return 0, &Error{
			Op:    "delete",
			Table: q.repo.metadata.TableName,
			Err:   fmt.Errorf("failed to build delete query: %w", err),
		}
	}

	result, err := q.repo.db.ExecContext(q.ctx, sqlQuery, args...)
	if err != nil {
		return 0, ParsePostgreSQLError(err, "delete", q.repo.metadata.TableName)
	}

	return rowsAffected(result, "delete", q.repo.metadata.TableName)
}

func rowsAffected(result sql.Result, op, table string) (int64, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return 0, &Error{
			Op:    op,
			Table: table,
			Err:   fmt.Errorf("failed to get rows affected: %w", err),
		}
	}
	return n, nil
}
