package notifications

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/juju/errors"

	"github.com/eleven-am/hiretrack/internal/models"
	"github.com/eleven-am/hiretrack/internal/orm"
)

// Counts is the per-user tally rendered in the weekly summary.
type Counts struct {
	Total       int64 `db:"total"`
	NewThisWeek int64 `db:"new_this_week"`
	Interviews  int64 `db:"interviews"`
	Offers      int64 `db:"offers"`
}

type Store interface {
	// Subscribers lists users who opted into the weekly summary.
	Subscribers(ctx context.Context) ([]models.User, error)
	Counts(ctx context.Context, userID string, since time.Time) (Counts, error)
}

type PostgresStore struct {
	db    orm.DBExecutor
	users *orm.Repository[models.User]
}

func NewPostgresStore(db orm.DBExecutor) *PostgresStore {
	return &PostgresStore{
		db:    db,
		users: orm.MustRepository[models.User](db, models.UserMetadata),
	}
}

func (s *PostgresStore) Subscribers(ctx context.Context) ([]models.User, error) {
	list, err := s.users.Query(ctx).
		Where(models.Users.WeeklySummary.IsTrue()).
		OrderBy(models.Users.CreatedAt.Asc()).
		Find()
	return list, models.StoreError(err, "user")
}

func (s *PostgresStore) Counts(ctx context.Context, userID string, since time.Time) (Counts, error) {
	query, args, err := squirrel.Select("COUNT(*) AS total").
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE applications.created_at >= ?) AS new_this_week", since)).
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE applications.status = ?) AS interviews", string(models.StatusInterview))).
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE applications.status = ?) AS offers", string(models.StatusOffer))).
		From(models.ApplicationsTable).
		Where(models.Applications.UserID.Eq(userID).ToSqlizer()).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return Counts{}, errors.Trace(err)
	}

	var counts Counts
	if err := s.db.GetContext(ctx, &counts, query, args...); err != nil {
		return Counts{}, models.StoreError(orm.ParsePostgreSQLError(err, "count", models.ApplicationsTable), "application")
	}
	return counts, nil
}
