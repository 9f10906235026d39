package main

import (
	"os"

	"github.com/estatelens/estatelens/internal/cli"
)

// Build variables - set by ldflags during build.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	cli.Version, cli.Commit, cli.BuildTime = version, commit, buildTime
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
