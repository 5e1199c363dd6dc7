// Package commands implements the eventmetrics subcommands.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/eventmetrics/internal/config"
)

// Global carries process wiring shared by every subcommand.
type Global struct {
	Stdout io.Writer
	Stderr io.Writer
	Lookup func(string) (string, bool)
}

// NewGlobal binds the process streams and environment.
func NewGlobal() *Global {
	return &Global{Stdout: os.Stdout, Stderr: os.Stderr, Lookup: os.LookupEnv}
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (defaults plus environment when empty)"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve   ServeCmd   `cmd:"" help:"Serve metrics over HTTP and consume events"`
	Replay  ReplayCmd  `cmd:"" help:"Feed a JSON-lines event log through the listener and print the exposition"`
	Catalog CatalogCmd `cmd:"" help:"List the counters created at startup"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// load reads the configuration and replaces the default logger with the one
// it describes.
func (c *CLI) load(g *Global) (*config.Config, *slog.Logger, error) {
	lookup := g.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	cfg, err := config.LoadWithEnv(c.Config, lookup)
	if err != nil {
		return nil, nil, err
	}
	stderr := g.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	logger := cfg.Logging.NewLogger(stderr, c.Verbose)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
