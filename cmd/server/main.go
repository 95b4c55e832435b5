package main

import (
	"github.com/ridgeline/caseflow/internal/buildinfo"
	"github.com/ridgeline/caseflow/internal/cli"
	"github.com/ridgeline/caseflow/internal/logging"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func init() {
	logging.SetupBaseLogger()
	buildinfo.Version = Version
	buildinfo.Commit = Commit
	buildinfo.BuildDate = BuildDate
}

func main() {
	cli.Execute()
}
