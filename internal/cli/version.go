package cli

import (
	"github.com/spf13/cobra"

	"github.com/eleven-am/hiretrack/pkg/hiretrack"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display HireTrack version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Print(hiretrack.FullVersionInfo())
	},
}
