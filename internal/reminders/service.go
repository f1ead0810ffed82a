// Package reminders owns the reminder lifecycle and the due-reminder sweep.
package reminders

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"golang.org/x/sync/errgroup"

	"github.com/eleven-am/hiretrack/internal/logger"
	"github.com/eleven-am/hiretrack/internal/mail"
	"github.com/eleven-am/hiretrack/internal/metrics"
	"github.com/eleven-am/hiretrack/internal/models"
)

// UpcomingWindow is how far ahead ListUpcoming looks.
const UpcomingWindow = 7 * 24 * time.Hour

// Notifier delivers a reminder alert. *mail.Mailer satisfies it.
type Notifier interface {
	SendReminder(ctx context.Context, to string, alert mail.ReminderAlert) (mail.Result, error)
}

type Config struct {
	Store    Store
	Notifier Notifier
	Clock    clock.Clock
	Metrics  *metrics.Metrics
	// Concurrency bounds parallel deliveries in a sweep. Values below 2
	// deliver sequentially.
	Concurrency int
}

func (c Config) Validate() error {
	if c.Store == nil {
		return errors.NotValidf("nil Store")
	}
	if c.Notifier == nil {
		return errors.NotValidf("nil Notifier")
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
	return &Service{config: config, log: logger.Reminder()}, nil
}

type CreateParams struct {
	ApplicationID string `json:"applicationId"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	ReminderDate  string `json:"reminderDate"`
}

// Create stores a reminder on one of the owner's applications. Past dates
// are accepted and become due immediately.
func (s *Service) Create(ctx context.Context, ownerID string, params CreateParams) (*models.ReminderDetail, error) {
	if strings.TrimSpace(params.Title) == "" {
		return nil, errors.NotValidf("empty title")
	}
	if params.ApplicationID == "" {
		return nil, errors.NotValidf("empty application id")
	}
	due, err := models.ParseDate("reminder date", params.ReminderDate)
	if err != nil {
		return nil, err
	}

	app, err := s.config.Store.ApplicationRef(ctx, params.ApplicationID, ownerID)
	if err != nil {
		return nil, errors.Trace(err)
	}

	r := models.Reminder{
		ID:            uuid.NewString(),
		UserID:        ownerID,
		ApplicationID: params.ApplicationID,
		Title:         strings.TrimSpace(params.Title),
		Description:   params.Description,
		ReminderDate:  due,
		CreatedAt:     s.config.Clock.Now().UTC(),
	}
	if err := s.config.Store.Create(ctx, &r); err != nil {
		return nil, errors.Trace(err)
	}

	s.log.WithFields(logger.Fields{"reminder_id": r.ID, "user_id": ownerID}).Debug("reminder created")
	return &models.ReminderDetail{Reminder: r, Application: *app}, nil
}

func (s *Service) ListAll(ctx context.Context, ownerID string, page Page) ([]models.ReminderDetail, error) {
	list, err := s.config.Store.List(ctx, ownerID, page)
	return list, errors.Trace(err)
}

// ListUpcoming returns pending reminders dated within the next seven days.
func (s *Service) ListUpcoming(ctx context.Context, ownerID string) ([]models.ReminderDetail, error) {
	now := s.config.Clock.Now().UTC()
	list, err := s.config.Store.ListPendingBetween(ctx, ownerID, now, now.Add(UpcomingWindow))
	return list, errors.Trace(err)
}

// MarkComplete stamps the reminder completed. Repeating it re-stamps
// completedAt.
func (s *Service) MarkComplete(ctx context.Context, id, ownerID string) (*models.ReminderDetail, error) {
	if err := s.config.Store.Complete(ctx, id, ownerID, s.config.Clock.Now().UTC()); err != nil {
		return nil, errors.Trace(err)
	}
	detail, err := s.config.Store.Get(ctx, id, ownerID)
	return detail, errors.Trace(err)
}

func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	return errors.Trace(s.config.Store.Delete(ctx, id, ownerID))
}

// SweepDue delivers every due reminder and returns how many were
// attempted. Only a failure to load the due set is returned; delivery
// and bookkeeping failures are logged and leave the reminder for the
// next sweep. Reminders of owners with email reminders turned off are
// left pending and not counted.
func (s *Service) SweepDue(ctx context.Context) (int, error) {
	started := s.config.Clock.Now()
	defer func() { s.config.Metrics.SweepFinished(s.config.Clock.Now().Sub(started)) }()

	due, err := s.config.Store.Due(ctx, started.UTC())
	if err != nil {
		return 0, errors.Annotate(err, "loading due reminders")
	}
	if len(due) == 0 {
		return 0, nil
	}

	var sent atomic.Int64
	deliver := func(r models.DueReminder) {
		if s.deliver(ctx, r) {
			sent.Add(1)
		}
	}

	if s.config.Concurrency < 2 {
		for _, r := range due {
			deliver(r)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(s.config.Concurrency)
		for _, r := range due {
			g.Go(func() error {
				deliver(r)
				return nil
			})
		}
		_ = g.Wait()
	}

	s.log.WithFields(logger.Fields{"processed": len(due), "sent": sent.Load()}).Info("reminder sweep finished")
	return len(due), nil
}

func (s *Service) deliver(ctx context.Context, r models.DueReminder) bool {
	log := s.log.WithField("reminder_id", r.ID)

	_, err := s.config.Notifier.SendReminder(ctx, r.Owner.Email, mail.ReminderAlert{
		Title:         r.Title,
		Description:   r.Description,
		Due:           r.ReminderDate,
		JobTitle:      r.Application.JobTitle,
		Company:       r.Application.Company,
		ApplicationID: r.ApplicationID,
	})
	if err != nil {
		log.WithError(err).Error("failed to send reminder email")
		s.config.Metrics.ReminderSwept(metrics.ResultFailed)
		return false
	}

	marked, err := s.config.Store.MarkSent(ctx, r.ID, s.config.Clock.Now().UTC())
	switch {
	case err != nil:
		log.WithError(err).Error("reminder sent but could not be marked sent")
		s.config.Metrics.ReminderSwept(metrics.ResultSent)
	case !marked:
		log.Warn("reminder already marked sent by another sweep")
		s.config.Metrics.ReminderSwept(metrics.ResultSkipped)
	default:
		s.config.Metrics.ReminderSwept(metrics.ResultSent)
	}
	return true
}
