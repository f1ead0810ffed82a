package applications

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/juju/errors"

	"github.com/eleven-am/hiretrack/internal/models"
	"github.com/eleven-am/hiretrack/internal/orm"
)

// Filter narrows a listing. Empty fields match everything.
type Filter struct {
	Status  string
	Company string
}

type Store interface {
	Create(ctx context.Context, app *models.Application) error
	List(ctx context.Context, userID string, filter Filter) ([]models.Application, error)
	Get(ctx context.Context, id, userID string) (*models.Application, error)
	Update(ctx context.Context, id, userID string, updates map[string]interface{}) error
	Delete(ctx context.Context, id, userID string) error
	Reminders(ctx context.Context, id, userID string) ([]models.Reminder, error)
	StatusCounts(ctx context.Context, userID string) (map[models.ApplicationStatus]int64, error)
	CVOwned(ctx context.Context, cvID, userID string) (bool, error)
}

type PostgresStore struct {
	db           orm.DBExecutor
	applications *orm.Repository[models.Application]
	reminders    *orm.Repository[models.Reminder]
	cvs          *orm.Repository[models.CV]
}

func NewPostgresStore(db orm.DBExecutor) *PostgresStore {
	return &PostgresStore{
		db:           db,
		applications: orm.MustRepository[models.Application](db, models.ApplicationMetadata),
		reminders:    orm.MustRepository[models.Reminder](db, models.ReminderMetadata),
		cvs:          orm.MustRepository[models.CV](db, models.CVMetadata),
	}
}

func (s *PostgresStore) owned(ctx context.Context, id, userID string) *orm.Query[models.Application] {
	return s.applications.Query(ctx).
		Where(models.Applications.ID.Eq(id)).
		Where(models.Applications.UserID.Eq(userID))
}

func (s *PostgresStore) Create(ctx context.Context, app *models.Application) error {
	return models.StoreError(s.applications.Create(ctx, app), "application")
}

func (s *PostgresStore) List(ctx context.Context, userID string, filter Filter) ([]models.Application, error) {
	q := s.applications.Query(ctx).Where(models.Applications.UserID.Eq(userID))
	if filter.Status != "" {
		q = q.Where(models.Applications.Status.Eq(filter.Status))
	}
	if filter.Company != "" {
		q = q.Where(models.Applications.Company.ContainsFold(filter.Company))
	}
	list, err := q.OrderBy(models.Applications.AppliedAt.Desc()).Find()
	return list, models.StoreError(err, "application")
}

func (s *PostgresStore) Get(ctx context.Context, id, userID string) (*models.Application, error) {
	app, err := s.owned(ctx, id, userID).First()
	return app, models.StoreError(err, "application")
}

func (s *PostgresStore) Update(ctx context.Context, id, userID string, updates map[string]interface{}) error {
	n, err := s.owned(ctx, id, userID).Update(updates)
	if err != nil {
		return models.StoreError(err, "application")
	}
	if n == 0 {
		return errors.NotFoundf("application")
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id, userID string) error {
	n, err := s.owned(ctx, id, userID).Delete()
	if err != nil {
		return models.StoreError(err, "application")
	}
	if n == 0 {
		return errors.NotFoundf("application")
	}
	return nil
}

func (s *PostgresStore) Reminders(ctx context.Context, id, userID string) ([]models.Reminder, error) {
	list, err := s.reminders.Query(ctx).
		Where(models.Reminders.ApplicationID.Eq(id)).
		Where(models.Reminders.UserID.Eq(userID)).
		OrderBy(models.Reminders.ReminderDate.Asc()).
		Find()
	return list, models.StoreError(err, "reminder")
}

type statusCount struct {
	Status models.ApplicationStatus `db:"status"`
	Count  int64                    `db:"count"`
}

func (s *PostgresStore) StatusCounts(ctx context.Context, userID string) (map[models.ApplicationStatus]int64, error) {
	query, args, err := squirrel.Select("applications.status", "COUNT(*) AS count").
		From(models.ApplicationsTable).
		Where(models.Applications.UserID.Eq(userID).ToSqlizer()).
		GroupBy("applications.status").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, errors.Trace(err)
	}

	var rows []statusCount
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, models.StoreError(orm.ParsePostgreSQLError(err, "count", models.ApplicationsTable), "application")
	}

	counts := make(map[models.ApplicationStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

func (s *PostgresStore) CVOwned(ctx context.Context, cvID, userID string) (bool, error) {
	ok, err := s.cvs.Query(ctx).
		Where(models.CVs.ID.Eq(cvID)).
		Where(models.CVs.UserID.Eq(userID)).
		Exists()
	return ok, models.StoreError(err, "cv")
}
