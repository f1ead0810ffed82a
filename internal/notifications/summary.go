// Package notifications sends the weekly application summary.
package notifications

import (
	"context"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"

	"github.com/eleven-am/hiretrack/internal/logger"
	"github.com/eleven-am/hiretrack/internal/mail"
	"github.com/eleven-am/hiretrack/internal/metrics"
)

// SummaryWindow is the look-back for "new this week".
const SummaryWindow = 7 * 24 * time.Hour

// Notifier delivers the summary email. *mail.Mailer satisfies it.
type Notifier interface {
	SendWeeklySummary(ctx context.Context, to string, summary mail.WeeklySummary) (mail.Result, error)
}

type Config struct {
	Store    Store
	Notifier Notifier
	Clock    clock.Clock
	Metrics  *metrics.Metrics
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
	return &Service{config: config, log: logger.Mail().WithField("job", "weekly-summary")}, nil
}

// Report is the outcome of one summary run.
type Report struct {
	Sent   int
	Failed int
}

// SendWeeklySummaries emails every subscriber. A failure for one user is
// logged and counted; only failing to load the subscriber list aborts.
func (s *Service) SendWeeklySummaries(ctx context.Context) (Report, error) {
	var report Report
	subscribers, err := s.config.Store.Subscribers(ctx)
	if err != nil {
		return report, errors.Annotate(err, "loading summary subscribers")
	}

	since := s.config.Clock.Now().UTC().Add(-SummaryWindow)
	for _, user := range subscribers {
		if err := ctx.Err(); err != nil {
			return report, errors.Trace(err)
		}
		log := s.log.WithField("user_id", user.ID)

		counts, err := s.config.Store.Counts(ctx, user.ID, since)
		if err != nil {
			log.WithError(err).Error("failed to count applications")
			report.Failed++
			s.config.Metrics.SummarySent(metrics.ResultFailed)
			continue
		}
		_, err = s.config.Notifier.SendWeeklySummary(ctx, user.Email, mail.WeeklySummary{
			Name:        user.DisplayName(),
			Total:       counts.Total,
			NewThisWeek: counts.NewThisWeek,
			Interviews:  counts.Interviews,
			Offers:      counts.Offers,
		})
		if err != nil {
			log.WithError(err).Error("failed to send weekly summary")
			report.Failed++
			s.config.Metrics.SummarySent(metrics.ResultFailed)
			continue
		}
		report.Sent++
		s.config.Metrics.SummarySent(metrics.ResultSent)
	}

	s.log.WithField("sent", report.Sent).WithField("failed", report.Failed).Info("weekly summaries finished")
	return report, nil
}
