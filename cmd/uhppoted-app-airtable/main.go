package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/go-logr/logr"
	"go.uber.org/automaxprocs/maxprocs"

	uhppoted "github.com/uhppoted/uhppoted-lib/command"

	"github.com/uhppoted/uhppoted-app-airtable/commands"
	"github.com/uhppoted/uhppoted-app-airtable/log"
	"github.com/uhppoted/uhppoted-app-airtable/model"
)

var cli = []uhppoted.Command{
	&commands.MigrateCmd,
	&commands.ExportCmd,
	&commands.VersionCmd,
}

var options = commands.Options{
	Debug: false,
}

var help = uhppoted.NewHelp(commands.APP, cli, nil)

func main() {
	flag.BoolVar(&options.Debug, "debug", options.Debug, "Enable debugging information")
	flag.Parse()

	cmd, err := uhppoted.Parse(cli, nil, help)
	if err != nil {
		fmt.Printf("\nError parsing command line: %v\n\n", err)
		os.Exit(1)
	}

	if cmd == nil {
		help.Execute(context.Background())
		os.Exit(1)
	}

	logger, flush := log.New(commands.APP, os.Stderr, options.Debug)
	options.Log = logger

	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.V(1).Info(fmt.Sprintf(format, args...))
	})); err != nil {
		logger.Error(err, "unable to set GOMAXPROCS")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), interrupts...)

	code := report(logger, cmd.Name(), cmd.Execute(ctx, &options))

	flush()
	cancel()
	os.Exit(code)
}

// report logs the outcome of a command and returns the process exit code.
func report(logger logr.Logger, command string, err error) int {
	code := exitCode(err)

	switch {
	case err == nil:

	case code == 0:
		logger.Info("Exiting the application")

	default:
		logger.Error(err, fmt.Sprintf("%v failed", command))
	}

	return code
}

// exitCode is 0 for success or an interrupted command and 1 for anything else.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0

	case model.KindOf(err) == model.KindCancelled:
		return 0

	default:
		return 1
	}
}
