package main

import (
	"fmt"
	"os"

	"github.com/eleven-am/hiretrack/internal/cli"
	"github.com/eleven-am/hiretrack/pkg/hiretrack"
)

// Set with -ldflags "-X main.gitCommit=... -X main.buildDate=...".
var (
	gitCommit string
	buildDate string
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func Execute() error {
	hiretrack.SetBuildInfo(gitCommit, buildDate, "")

	cmd := cli.NewRootCommand()
	return cmd.Execute()
}
