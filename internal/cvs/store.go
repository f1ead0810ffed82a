package cvs

import (
	"context"

	"github.com/juju/errors"

	"github.com/eleven-am/hiretrack/internal/models"
	"github.com/eleven-am/hiretrack/internal/orm"
)

type Store interface {
	Create(ctx context.Context, cv *models.CV) error
	List(ctx context.Context, userID string) ([]models.CV, error)
	Get(ctx context.Context, id, userID string) (*models.CV, error)
	// SetDefault flags one CV. It fails with NotFound when the owner has
	// no such CV.
	SetDefault(ctx context.Context, id, userID string) error
	// ClearDefaults unflags every default CV of the owner except exceptID.
	ClearDefaults(ctx context.Context, userID, exceptID string) error
	Delete(ctx context.Context, id, userID string) error
	// InTx runs fn against a store bound to one transaction.
	InTx(ctx context.Context, fn func(Store) error) error
}

type PostgresStore struct {
	db  orm.DBExecutor
	cvs *orm.Repository[models.CV]
}

func NewPostgresStore(db orm.DBExecutor) *PostgresStore {
	return &PostgresStore{db: db, cvs: orm.MustRepository[models.CV](db, models.CVMetadata)}
}

func (s *PostgresStore) owned(ctx context.Context, id, userID string) *orm.Query[models.CV] {
	return s.cvs.Query(ctx).
		Where(models.CVs.ID.Eq(id)).
		Where(models.CVs.UserID.Eq(userID))
}

func (s *PostgresStore) Create(ctx context.Context, cv *models.CV) error {
	return models.StoreError(s.cvs.Create(ctx, cv), "cv")
}

func (s *PostgresStore) List(ctx context.Context, userID string) ([]models.CV, error) {
	list, err := s.cvs.Query(ctx).
		Where(models.CVs.UserID.Eq(userID)).
		OrderBy(models.CVs.UploadedAt.Desc()).
		Find()
	return list, models.StoreError(err, "cv")
}

func (s *PostgresStore) Get(ctx context.Context, id, userID string) (*models.CV, error) {
	cv, err := s.owned(ctx, id, userID).First()
	return cv, models.StoreError(err, "cv")
}

func (s *PostgresStore) SetDefault(ctx context.Context, id, userID string) error {
	n, err := s.owned(ctx, id, userID).Update(map[string]interface{}{"is_default": true})
	if err != nil {
		return models.StoreError(err, "cv")
	}
	if n == 0 {
		return errors.NotFoundf("cv")
	}
	return nil
}

func (s *PostgresStore) ClearDefaults(ctx context.Context, userID, exceptID string) error {
	q := s.cvs.Query(ctx).
		Where(models.CVs.UserID.Eq(userID)).
		Where(models.CVs.IsDefault.IsTrue())
	if exceptID != "" {
		q = q.Where(models.CVs.ID.NotEq(exceptID))
	}
	_, err := q.Update(map[string]interface{}{"is_default": false})
	return models.StoreError(err, "cv")
}

func (s *PostgresStore) Delete(ctx context.Context, id, userID string) error {
	n, err := s.owned(ctx, id, userID).Delete()
	if err != nil {
		return models.StoreError(err, "cv")
	}
	if n == 0 {
		return errors.NotFoundf("cv")
	}
	return nil
}

func (s *PostgresStore) InTx(ctx context.Context, fn func(Store) error) error {
	return orm.WithTransaction(ctx, s.db, func(tx orm.DBExecutor) error {
		return fn(NewPostgresStore(tx))
	})
}
