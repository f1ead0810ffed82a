package orm

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Beginner is satisfied by *sqlx.DB
type Beginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// WithTransaction runs fn inside a transaction started on db. If exec is
// already a transaction it is reused and fn joins it. The transaction is
// rolled back when fn returns an error or panics.
func WithTransaction(ctx context.Context, exec DBExecutor, fn func(tx DBExecutor) error) (err error) {
	if _, isTransaction := exec.(*sqlx.Tx); isTransaction {
		return fn(exec)
	}

	db, ok := exec.(Beginner)
	if !ok {
		return fmt.Errorf("cannot start transaction: executor is not a database connection")
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
