package models

import (
	"github.com/juju/errors"

	"github.com/eleven-am/hiretrack/internal/orm"
)

// StoreError maps persistence errors onto the domain taxonomy. Missing
// rows become NotFound so callers never learn whether a record exists
// under a different owner. Ids are uuid columns, so one Postgres cannot
// parse matches no row and is NotFound too.
func StoreError(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case orm.IsNotFound(err), errors.Is(err, orm.ErrInvalidText):
		return errors.NotFoundf("%s", entity)
	case errors.Is(err, orm.ErrDuplicateKey):
		return errors.AlreadyExistsf("%s", entity)
	case errors.Is(err, orm.ErrForeignKey):
		return errors.NotFoundf("%s reference", entity)
	case orm.IsConstraintError(err):
		return errors.NotValidf("%s", entity)
	default:
		return errors.Trace(err)
	}
}
