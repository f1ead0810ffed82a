package reminders

import (
	"context"
	"time"

	"github.com/juju/errors"

	"github.com/eleven-am/hiretrack/internal/models"
	"github.com/eleven-am/hiretrack/internal/orm"
)

// Page bounds a listing. A zero Limit means unbounded.
type Page struct {
	Limit  uint64
	Offset uint64
}

// Store is the persistence the reminder engine depends on. Every
// owner-facing method is scoped by userID.
type Store interface {
	ApplicationRef(ctx context.Context, applicationID, userID string) (*models.ApplicationRef, error)
	Create(ctx context.Context, r *models.Reminder) error
	Get(ctx context.Context, id, userID string) (*models.ReminderDetail, error)
	List(ctx context.Context, userID string, page Page) ([]models.ReminderDetail, error)
	ListPendingBetween(ctx context.Context, userID string, from, to time.Time) ([]models.ReminderDetail, error)
	Complete(ctx context.Context, id, userID string, at time.Time) error
	Delete(ctx context.Context, id, userID string) error
	Due(ctx context.Context, now time.Time) ([]models.DueReminder, error)
	MarkSent(ctx context.Context, id string, at time.Time) (bool, error)
}

var applicationRefMetadata = orm.Metadata{
	TableName:  models.ApplicationsTable,
	PrimaryKey: "id",
	Columns:    []string{"applications.job_title", "applications.company"},
}

type PostgresStore struct {
	reminders    *orm.Repository[models.Reminder]
	details      *orm.Repository[models.ReminderDetail]
	due          *orm.Repository[models.DueReminder]
	applications *orm.Repository[models.ApplicationRef]
}

func NewPostgresStore(db orm.DBExecutor) *PostgresStore {
	return &PostgresStore{
		reminders:    orm.MustRepository[models.Reminder](db, models.ReminderMetadata),
		details:      orm.MustRepository[models.ReminderDetail](db, models.ReminderDetailMetadata),
		due:          orm.MustRepository[models.DueReminder](db, models.DueReminderMetadata),
		applications: orm.MustRepository[models.ApplicationRef](db, applicationRefMetadata),
	}
}

func (s *PostgresStore) ApplicationRef(ctx context.Context, applicationID, userID string) (*models.ApplicationRef, error) {
	ref, err := s.applications.Query(ctx).
		Where(models.Applications.ID.Eq(applicationID)).
		Where(models.Applications.UserID.Eq(userID)).
		First()
	return ref, models.StoreError(err, "application")
}

func (s *PostgresStore) Create(ctx context.Context, r *models.Reminder) error {
	return models.StoreError(s.reminders.Create(ctx, r), "reminder")
}

func (s *PostgresStore) detailQuery(ctx context.Context, userID string) *orm.Query[models.ReminderDetail] {
	return s.details.Query(ctx).
		InnerJoin(models.ApplicationsTable, models.JoinApplication).
		Where(models.Reminders.UserID.Eq(userID))
}

func (s *PostgresStore) Get(ctx context.Context, id, userID string) (*models.ReminderDetail, error) {
	detail, err := s.detailQuery(ctx, userID).
		Where(models.Reminders.ID.Eq(id)).
		First()
	return detail, models.StoreError(err, "reminder")
}

func (s *PostgresStore) List(ctx context.Context, userID string, page Page) ([]models.ReminderDetail, error) {
	q := s.detailQuery(ctx, userID).OrderBy(models.Reminders.ReminderDate.Asc())
	if page.Limit > 0 {
		q = q.Limit(page.Limit)
	}
	if page.Offset > 0 {
		q = q.Offset(page.Offset)
	}
	list, err := q.Find()
	return list, models.StoreError(err, "reminder")
}

func (s *PostgresStore) ListPendingBetween(ctx context.Context, userID string, from, to time.Time) ([]models.ReminderDetail, error) {
	list, err := s.detailQuery(ctx, userID).
		Where(models.Reminders.ReminderDate.Between(from, to)).
		Where(models.Reminders.IsSent.IsFalse()).
		Where(models.Reminders.IsCompleted.IsFalse()).
		OrderBy(models.Reminders.ReminderDate.Asc()).
		Find()
	return list, models.StoreError(err, "reminder")
}

func (s *PostgresStore) Complete(ctx context.Context, id, userID string, at time.Time) error {
	n, err := s.reminders.Query(ctx).
		Where(models.Reminders.ID.Eq(id)).
		Where(models.Reminders.UserID.Eq(userID)).
		Update(map[string]interface{}{
			"is_completed": true,
			"completed_at": at,
		})
	if err != nil {
		return models.StoreError(err, "reminder")
	}
	if n == 0 {
		return errors.NotFoundf("reminder")
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id, userID string) error {
	n, err := s.reminders.Query(ctx).
		Where(models.Reminders.ID.Eq(id)).
		Where(models.Reminders.UserID.Eq(userID)).
		Delete()
	if err != nil {
		return models.StoreError(err, "reminder")
	}
	if n == 0 {
		return errors.NotFoundf("reminder")
	}
	return nil
}

// Due selects every unsent, uncompleted reminder dated at or before now
// whose owner still wants email reminders, oldest first. Reminders of
// owners who opted out are not selected and stay pending.
func (s *PostgresStore) Due(ctx context.Context, now time.Time) ([]models.DueReminder, error) {
	due, err := s.due.Query(ctx).
		InnerJoin(models.ApplicationsTable, models.JoinApplication).
		InnerJoin(models.UsersTable, models.JoinOwner).
		Where(models.Reminders.ReminderDate.Until(now)).
		Where(models.Reminders.IsSent.IsFalse()).
		Where(models.Reminders.IsCompleted.IsFalse()).
		Where(models.Users.EmailReminders.IsTrue()).
		OrderBy(models.Reminders.ReminderDate.Asc()).
		Find()
	if err != nil {
		return nil, errors.Trace(err)
	}
	return due, nil
}

// MarkSent flags the reminder sent only if it is still unsent. It reports
// false when another sweep got there first.
func (s *PostgresStore) MarkSent(ctx context.Context, id string, at time.Time) (bool, error) {
	n, err := s.reminders.Query(ctx).
		Where(models.Reminders.ID.Eq(id)).
		Where(models.Reminders.IsSent.IsFalse()).
		Update(map[string]interface{}{
			"is_sent": true,
			"sent_at": at,
		})
	if err != nil {
		return false, errors.Trace(err)
	}
	return n > 0, nil
}
