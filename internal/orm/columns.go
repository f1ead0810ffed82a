package orm

import (
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
)

// Column represents a type-safe database column reference
type Column[T any] struct {
	Name  string
	Table string
}

// String returns the full column reference for SQL
func (c Column[T]) String() string {
	if c.Table != "" {
		return fmt.Sprintf("%s.%s", c.Table, c.Name)
	}
	return c.Name
}

// Eq creates an equality condition
func (c Column[T]) Eq(value T) Condition {
	return Condition{squirrel.Eq{c.String(): value}}
}

// NotEq creates a not-equal condition
func (c Column[T]) NotEq(value T) Condition {
	return Condition{squirrel.NotEq{c.String(): value}}
}

// In creates an IN condition
func (c Column[T]) In(values ...T) Condition {
	interfaces := make([]interface{}, len(values))
	for i, v := range values {
		interfaces[i] = v
	}
	return Condition{squirrel.Eq{c.String(): interfaces}}
}

// IsNull creates an IS NULL condition
func (c Column[T]) IsNull() Condition {
	return Condition{squirrel.Eq{c.String(): nil}}
}

// Asc creates an ascending order expression
func (c Column[T]) Asc() string {
	return c.String() + " ASC"
}

// Desc creates a descending order expression
func (c Column[T]) Desc() string {
	return c.String() + " DESC"
}

// Comparable types that support comparison operators
type Comparable interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 |
		~string |
		time.Time
}

// ComparableColumn provides comparison operations for comparable types
type ComparableColumn[T Comparable] struct {
	Column[T]
}

// Gt creates a greater-than condition
func (c ComparableColumn[T]) Gt(value T) Condition {
	return Condition{squirrel.Gt{c.String(): value}}
}

// Gte creates a greater-than-or-equal condition
func (c ComparableColumn[T]) Gte(value T) Condition {
	return Condition{squirrel.GtOrEq{c.String(): value}}
}

// Lt creates a less-than condition
func (c ComparableColumn[T]) Lt(value T) Condition {
	return Condition{squirrel.Lt{c.String(): value}}
}

// Lte creates a less-than-or-equal condition
func (c ComparableColumn[T]) Lte(value T) Condition {
	return Condition{squirrel.LtOrEq{c.String(): value}}
}

// Between creates an inclusive range condition
func (c ComparableColumn[T]) Between(min, max T) Condition {
	return Condition{squirrel.And{
		squirrel.GtOrEq{c.String(): min},
		squirrel.LtOrEq{c.String(): max},
	}}
}

// StringColumn provides string-specific operations
type StringColumn struct {
	ComparableColumn[string]
}

// ILike creates a case-insensitive LIKE condition (PostgreSQL)
func (c StringColumn) ILike(pattern string) Condition {
	return Condition{squirrel.ILike{c.String(): pattern}}
}

// ContainsFold matches values containing substring, ignoring case
func (c StringColumn) ContainsFold(substring string) Condition {
	return c.ILike("%" + substring + "%")
}

// TimeColumn provides time-specific operations
type TimeColumn struct {
	ComparableColumn[time.Time]
}

// Since creates a condition for times since (after or equal to) the given time
func (c TimeColumn) Since(t time.Time) Condition {
	return c.Gte(t)
}

// Until creates a condition for times until (before or equal to) the given time
func (c TimeColumn) Until(t time.Time) Condition {
	return c.Lte(t)
}

// BoolColumn provides boolean-specific operations
type BoolColumn struct {
	Column[bool]
}

// IsTrue creates a condition for true values
func (c BoolColumn) IsTrue() Condition {
	return c.Eq(true)
}

// IsFalse creates a condition for false values
func (c BoolColumn) IsFalse() Condition {
	return c.Eq(false)
}

// Condition wraps a squirrel.Sqlizer so callers never touch squirrel directly
type Condition struct {
	condition squirrel.Sqlizer
}

// And combines this condition with another using AND
func (c Condition) And(other Condition) Condition {
	return Condition{squirrel.And{c.condition, other.condition}}
}

// Or combines this condition with another using OR
func (c Condition) Or(other Condition) Condition {
	return Condition{squirrel.Or{c.condition, other.condition}}
}

// ToSqlizer exposes the underlying squirrel expression
func (c Condition) ToSqlizer() squirrel.Sqlizer {
	return c.condition
}

// And combines multiple conditions with AND
func And(conditions ...Condition) Condition {
	sqlizers := make([]squirrel.Sqlizer, len(conditions))
	for i, c := range conditions {
		sqlizers[i] = c.condition
	}
	return Condition{squirrel.And(sqlizers)}
}
