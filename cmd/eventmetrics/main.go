package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/eventmetrics/cmd/eventmetrics/commands"
	merrors "git.home.luguber.info/inful/eventmetrics/internal/errors"
	"git.home.luguber.info/inful/eventmetrics/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := commands.NewGlobal()
	parser := kong.Parse(cli,
		kong.Name("eventmetrics"),
		kong.Description("Turn identity platform events into Prometheus metrics."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	if err := parser.Run(global, cli); err != nil {
		merrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
