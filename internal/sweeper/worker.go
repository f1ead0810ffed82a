// Package sweeper runs the reminder sweep, and optionally the weekly
// summary, on a clock-driven schedule.
package sweeper

import (
	"context"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/worker/v4"
	"github.com/juju/worker/v4/catacomb"

	"github.com/eleven-am/hiretrack/internal/logger"
	"github.com/eleven-am/hiretrack/internal/notifications"
	"github.com/eleven-am/hiretrack/internal/orm"
)

// DefaultInterval is used when Config.Interval is zero.
const DefaultInterval = 5 * time.Minute

// ReminderSweeper is satisfied by *reminders.Service.
type ReminderSweeper interface {
	SweepDue(ctx context.Context) (int, error)
}

// SummarySender is satisfied by *notifications.Service.
type SummarySender interface {
	SendWeeklySummaries(ctx context.Context) (notifications.Report, error)
}

type Config struct {
	Reminders ReminderSweeper
	Clock     clock.Clock
	Interval  time.Duration

	// Summaries is optional. When set with a positive SummaryInterval the
	// weekly summary runs on its own timer.
	Summaries       SummarySender
	SummaryInterval time.Duration
}

func (config Config) Validate() error {
	if config.Reminders == nil {
		return errors.NotValidf("nil Reminders")
	}
	if config.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	if config.Interval < 0 {
		return errors.NotValidf("negative Interval")
	}
	if config.Summaries != nil && config.SummaryInterval <= 0 {
		return errors.NotValidf("Summaries without SummaryInterval")
	}
	return nil
}

// Worker sweeps due reminders once at start and then every interval.
// A failed sweep is logged and retried on the next tick.
type Worker struct {
	catacomb catacomb.Catacomb
	config   Config
	log      logger.Logger
}

func New(config Config) (worker.Worker, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	if config.Interval == 0 {
		config.Interval = DefaultInterval
	}

	w := &Worker{config: config, log: logger.Sweeper()}
	err := catacomb.Invoke(catacomb.Plan{
		Site: &w.catacomb,
		Work: w.loop,
	})
	return w, errors.Trace(err)
}

func (w *Worker) Kill() {
	w.catacomb.Kill(nil)
}

func (w *Worker) Wait() error {
	return w.catacomb.Wait()
}

func (w *Worker) scopedContext() (context.Context, context.CancelFunc) {
	return context.WithCancel(w.catacomb.Context(context.Background()))
}

func (w *Worker) loop() error {
	w.log.WithField("interval", w.config.Interval.String()).Info("reminder sweeper started")
	w.sweep()

	next := w.config.Clock.After(w.config.Interval)
	var summaries <-chan time.Time
	if w.config.Summaries != nil {
		summaries = w.config.Clock.After(w.config.SummaryInterval)
	}
	for {
		select {
		case <-w.catacomb.Dying():
			return w.catacomb.ErrDying()
		case <-next:
			w.sweep()
			next = w.config.Clock.After(w.config.Interval)
		case <-summaries:
			w.summarise()
			summaries = w.config.Clock.After(w.config.SummaryInterval)
		}
	}
}

func (w *Worker) sweep() {
	ctx, cancel := w.scopedContext()
	defer cancel()

	processed, err := w.config.Reminders.SweepDue(ctx)
	if err != nil {
		w.failed(err, "reminder sweep failed")
		return
	}
	if processed > 0 {
		w.log.WithField("processed", processed).Info("reminder sweep finished")
	}
}

func (w *Worker) summarise() {
	ctx, cancel := w.scopedContext()
	defer cancel()

	if _, err := w.config.Summaries.SendWeeklySummaries(ctx); err != nil {
		w.failed(err, "weekly summary run failed")
	}
}

// failed logs a run error. Transient database failures are retried on the
// next tick anyway, so they are only warned about.
func (w *Worker) failed(err error, msg string) {
	log := w.log.WithError(err)
	if orm.IsRetryable(err) {
		log.Warn(msg + ", retrying on next tick")
		return
	}
	log.Error(msg)
}
