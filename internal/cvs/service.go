// Package cvs manages uploaded CVs and keeps at most one default per owner.
package cvs

import (
	"context"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"

	"github.com/eleven-am/hiretrack/internal/logger"
	"github.com/eleven-am/hiretrack/internal/models"
)

// MaxUploadSize caps a single CV upload.
const MaxUploadSize = 10 << 20

// Files stores the CV bytes. *FileStore satisfies it.
type Files interface {
	Save(originalName string, r io.Reader) (StoredFile, error)
	Remove(name string) error
}

type Config struct {
	Store Store
	Files Files
	Clock clock.Clock
}

func (c Config) Validate() error {
	if c.Store == nil {
		return errors.NotValidf("nil Store")
	}
	if c.Files == nil {
		return errors.NotValidf("nil Files")
	}
	if c.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	return nil
}

type Service struct {
	config Config
	log    logger.Logger
}

func NewService(config Config) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &Service{config: config, log: logger.CV()}, nil
}

type UploadParams struct {
	FileName  string
	Content   io.Reader
	Version   string
	IsDefault bool
}

// Upload stores the file and records it. When IsDefault is set the new
// row is created flagged and every other CV of the owner is unflagged
// afterwards, in the same transaction.
func (s *Service) Upload(ctx context.Context, ownerID string, params UploadParams) (*models.CV, error) {
	if params.Content == nil || strings.TrimSpace(params.FileName) == "" {
		return nil, errors.NotValidf("no file uploaded")
	}
	version := strings.TrimSpace(params.Version)
	if version == "" {
		version = "1"
	}

	stored, err := s.config.Files.Save(params.FileName, params.Content)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if stored.Size == 0 {
		s.removeFile(stored.Name)
		return nil, errors.NotValidf("empty file")
	}

	cv := models.CV{
		ID:         uuid.NewString(),
		UserID:     ownerID,
		FileName:   params.FileName,
		FileURL:    stored.URL,
		FileSize:   stored.Size,
		S3Key:      stored.Name,
		Version:    version,
		IsDefault:  params.IsDefault,
		UploadedAt: s.config.Clock.Now().UTC(),
	}

	err = s.config.Store.InTx(ctx, func(tx Store) error {
		if err := tx.Create(ctx, &cv); err != nil {
			return err
		}
		if cv.IsDefault {
			return tx.ClearDefaults(ctx, ownerID, cv.ID)
		}
		return nil
	})
	if err != nil {
		s.removeFile(stored.Name)
		return nil, errors.Trace(err)
	}

	s.log.WithFields(logger.Fields{
		"cv_id":   cv.ID,
		"user_id": ownerID,
		"size":    humanize.Bytes(uint64(cv.FileSize)),
		"default": cv.IsDefault,
	}).Info("cv uploaded")
	return &cv, nil
}

// List returns the owner's CVs, newest first.
func (s *Service) List(ctx context.Context, ownerID string) ([]models.CV, error) {
	list, err := s.config.Store.List(ctx, ownerID)
	return list, errors.Trace(err)
}

// SetDefault makes id the owner's only default CV. If id is not one of
// the owner's CVs nothing changes.
func (s *Service) SetDefault(ctx context.Context, id, ownerID string) (*models.CV, error) {
	var cv *models.CV
	err := s.config.Store.InTx(ctx, func(tx Store) error {
		if err := tx.SetDefault(ctx, id, ownerID); err != nil {
			return err
		}
		if err := tx.ClearDefaults(ctx, ownerID, id); err != nil {
			return err
		}
		var err error
		cv, err = tx.Get(ctx, id, ownerID)
		return err
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return cv, nil
}

// Delete removes the record and, best effort, its file. Deleting the
// default CV leaves the owner without one.
func (s *Service) Delete(ctx context.Context, id, ownerID string) (*models.CV, error) {
	cv, err := s.config.Store.Get(ctx, id, ownerID)
	if err != nil {
		return nil, errors.Trace(err)
	}

	s.removeFile(cv.S3Key)

	if err := s.config.Store.Delete(ctx, id, ownerID); err != nil {
		return nil, errors.Trace(err)
	}
	return cv, nil
}

func (s *Service) removeFile(name string) {
	if name == "" {
		return
	}
	if err := s.config.Files.Remove(name); err != nil {
		s.log.WithError(err).WithField("file", name).Warn("failed to remove cv file")
	}
}
