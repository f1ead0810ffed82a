package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/worker/v4"
	"github.com/spf13/cobra"

	"github.com/eleven-am/hiretrack/internal/api"
	"github.com/eleven-am/hiretrack/internal/logger"
	"github.com/eleven-am/hiretrack/internal/sweeper"
)

const shutdownTimeout = 15 * time.Second

var (
	listenAddr string
	noSweeper  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the HTTP API. Unless disabled, the reminder sweeper runs in the
same process and emails due reminders every sweeper.interval.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address (overrides http.addr)")
	serveCmd.Flags().BoolVar(&noSweeper, "no-sweeper", false, "do not run the reminder sweeper")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := appConfig
	if listenAddr != "" {
		cfg.HTTP.Addr = listenAddr
	}
	if noSweeper {
		cfg.Sweeper.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	router, err := api.NewRouter(api.Config{
		Tokens:       a.issuer,
		Users:        a.users,
		Applications: a.applications,
		Reminders:    a.reminders,
		CVs:          a.cvs,
		BasePath:     cfg.HTTP.BasePath,
		CORSOrigin:   cfg.HTTP.CORSOrigin,
		Files:        a.files.Handler(),
		FilesPrefix:  a.files.URLPrefix(),
		Metrics:      a.metrics,
		Gatherer:     a.registry,
	})
	if err != nil {
		return errors.Trace(err)
	}

	if cfg.Sweeper.Enabled {
		w, err := startSweeper(a)
		if err != nil {
			return err
		}
		defer func() {
			w.Kill()
			if err := w.Wait(); err != nil {
				logger.Sweeper().WithError(err).Error("sweeper stopped with error")
			}
		}()
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	log := logger.HTTP()

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Annotate(err, "http server")
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Annotate(srv.Shutdown(shutdownCtx), "http shutdown")
}

func startSweeper(a *app) (worker.Worker, error) {
	cfg := sweeper.Config{
		Reminders: a.reminders,
		Clock:     clock.WallClock,
		Interval:  a.config.Sweeper.Interval,
	}
	if a.config.Sweeper.SummaryInterval > 0 {
		cfg.Summaries = a.summaries
		cfg.SummaryInterval = a.config.Sweeper.SummaryInterval
	}
	w, err := sweeper.New(cfg)
	return w, errors.Trace(err)
}
