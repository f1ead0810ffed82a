package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/juju/errors"

	"github.com/eleven-am/hiretrack/internal/models"
	"github.com/eleven-am/hiretrack/internal/orm"
)

type Store interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	// Upsert inserts the user or, when the email is taken, overwrites its
	// password and names. The stored row is returned.
	Upsert(ctx context.Context, user *models.User) (*models.User, error)
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

func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	return models.StoreError(s.users.Create(ctx, user), "user")
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	return user, models.StoreError(err, "user")
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.Query(ctx).Where(models.Users.Email.Eq(email)).First()
	return user, models.StoreError(err, "user")
}

func (s *PostgresStore) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	n, err := s.users.Query(ctx).Where(models.Users.ID.Eq(id)).Update(updates)
	if err != nil {
		return models.StoreError(err, "user")
	}
	if n == 0 {
		return errors.NotFoundf("user")
	}
	return nil
}

var upsertColumns = []string{"password_hash", "first_name", "last_name", "updated_at"}

func (s *PostgresStore) Upsert(ctx context.Context, user *models.User) (*models.User, error) {
	cols := models.UserMetadata.InsertColumns
	values := make([]string, len(cols))
	for i, col := range cols {
		values[i] = ":" + col
	}
	set := make([]string, len(upsertColumns))
	for i, col := range upsertColumns {
		set[i] = fmt.Sprintf("%s = EXCLUDED.%s", col, col)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (email) DO UPDATE SET %s",
		models.UsersTable, strings.Join(cols, ", "), strings.Join(values, ", "), strings.Join(set, ", "))

	if _, err := s.db.NamedExecContext(ctx, query, user); err != nil {
		return nil, models.StoreError(orm.ParsePostgreSQLError(err, "upsert", models.UsersTable), "user")
	}
	return s.GetByEmail(ctx, user.Email)
}
