// Package cli implements the hiretrack command line.
package cli

import (
	"github.com/juju/errors"
	"github.com/spf13/cobra"

	"github.com/eleven-am/hiretrack/internal/config"
	"github.com/eleven-am/hiretrack/internal/logger"
	"github.com/eleven-am/hiretrack/pkg/hiretrack"
)

// Global configuration variables
var (
	configFile  string
	appConfig   *config.Config
	databaseURL string
	debug       bool
	verbose     bool
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hiretrack",
		Short: "HireTrack - job application tracker",
		Long: `HireTrack tracks job applications, follow-up reminders and CVs.

It provides:
- The HTTP API with the background reminder sweeper
- Database migrations and demo seeding
- One-off reminder sweeps and weekly summary runs`,
		Version:       hiretrack.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			appConfig, err = config.Load(configFile)
			if err != nil {
				return errors.Trace(err)
			}
			if databaseURL != "" {
				appConfig.Database.URL = databaseURL
			}

			logger.Configure(appConfig.Log.Level, appConfig.Log.Format)
			logger.SetVerbosity(debug, verbose)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: hiretrack.yaml)")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "url", "", "database connection URL")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}
