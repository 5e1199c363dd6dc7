package commands

import (
	"context"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/eventmetrics/internal/daemon"
	"git.home.luguber.info/inful/eventmetrics/internal/logfields"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct{}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, logger, err := root.load(g)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d, err := daemon.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("Starting eventmetrics",
		logfields.Path(cfg.HTTP.MetricsPath),
		logfields.Stream(cfg.NATS.Stream))
	return d.Run(ctx, nil)
}
