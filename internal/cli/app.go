package cli

import (
	"context"
	"net/url"

	"github.com/jmoiron/sqlx"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/afero"

	"github.com/eleven-am/hiretrack/internal/applications"
	"github.com/eleven-am/hiretrack/internal/auth"
	"github.com/eleven-am/hiretrack/internal/config"
	"github.com/eleven-am/hiretrack/internal/cvs"
	"github.com/eleven-am/hiretrack/internal/logger"
	"github.com/eleven-am/hiretrack/internal/mail"
	"github.com/eleven-am/hiretrack/internal/metrics"
	"github.com/eleven-am/hiretrack/internal/notifications"
	"github.com/eleven-am/hiretrack/internal/reminders"
	"github.com/eleven-am/hiretrack/internal/users"
)

// app holds the wired services shared by serve, sweep, summary and seed.
type app struct {
	config   *config.Config
	db       *sqlx.DB
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	issuer   *auth.Issuer
	files    *cvs.FileStore

	users        *users.Service
	userStore    *users.PostgresStore
	applications *applications.Service
	reminders    *reminders.Service
	cvs          *cvs.Service
	summaries    *notifications.Service
}

func openDB(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	if err := cfg.ValidateDatabase(); err != nil {
		return nil, err
	}
	db, err := cfg.Database.DBConfig().Connect(ctx)
	return db, errors.Trace(err)
}

func newSender(cfg config.SMTPConfig) (mail.Sender, error) {
	if cfg.Host == "" {
		logger.Mail().Warn("smtp.host is empty; emails are logged instead of sent")
		return mail.LogSender{}, nil
	}
	sender, err := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
		TLS:      cfg.TLS,
	})
	return sender, errors.Trace(err)
}

// newApp connects to the database and wires every service. The issuer is
// only built when a JWT secret is configured, so offline commands do not
// need one.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &app{config: cfg, db: db, registry: prometheus.NewRegistry()}
	if err := a.wire(); err != nil {
		db.Close()
		return nil, errors.Trace(err)
	}
	return a, nil
}

func (a *app) wire() error {
	cfg, clk := a.config, clock.WallClock

	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(a.registry)

	sender, err := newSender(cfg.SMTP)
	if err != nil {
		return err
	}
	mailer := mail.NewMailer(sender, cfg.FrontendURL)

	a.userStore = users.NewPostgresStore(a.db)
	if cfg.Auth.JWTSecret != "" {
		a.issuer, err = auth.NewIssuer(auth.IssuerConfig{
			AccessSecret:  cfg.Auth.JWTSecret,
			RefreshSecret: cfg.Auth.RefreshSecret,
			AccessTTL:     cfg.Auth.AccessTTL,
			RefreshTTL:    cfg.Auth.RefreshTTL,
			Clock:         clk,
		})
		if err != nil {
			return err
		}
		a.users, err = users.NewService(users.Config{Store: a.userStore, Issuer: a.issuer, Clock: clk})
		if err != nil {
			return err
		}
	}

	a.applications = applications.NewService(applications.NewPostgresStore(a.db), clk)

	a.reminders, err = reminders.NewService(reminders.Config{
		Store:       reminders.NewPostgresStore(a.db),
		Notifier:    mailer,
		Clock:       clk,
		Metrics:     a.metrics,
		Concurrency: cfg.Sweeper.Concurrency,
	})
	if err != nil {
		return err
	}

	a.files, err = cvs.NewFileStore(afero.NewOsFs(), cfg.Storage.CVDir, cfg.Storage.URLPrefix)
	if err != nil {
		return err
	}
	a.cvs, err = cvs.NewService(cvs.Config{Store: cvs.NewPostgresStore(a.db), Files: a.files, Clock: clk})
	if err != nil {
		return err
	}

	a.summaries, err = notifications.NewService(notifications.Config{
		Store:    notifications.NewPostgresStore(a.db),
		Notifier: mailer,
		Clock:    clk,
		Metrics:  a.metrics,
	})
	return err
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		logger.DB().WithError(err).Warn("closing database")
	}
}

// redactURL hides the password of a connection URL for display.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return "<dsn>"
	}
	return u.Redacted()
}
