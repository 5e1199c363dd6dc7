package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/eventmetrics/internal/daemon"
	merrors "git.home.luguber.info/inful/eventmetrics/internal/errors"
	"git.home.luguber.info/inful/eventmetrics/internal/logfields"
	"git.home.luguber.info/inful/eventmetrics/internal/metrics"
)

// ReplayCmd implements the 'replay' command.
type ReplayCmd struct {
	File string `short:"f" required:"" help:"JSON-lines event log, or - for stdin"`
	Push bool   `help:"Push the resulting registry to the configured gateway"`
}

func (r *ReplayCmd) Run(g *Global, root *CLI) error {
	cfg, logger, err := root.load(g)
	if err != nil {
		return err
	}
	ctx := context.Background()

	d, err := daemon.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := d.Close(); err != nil {
			logger.Warn("Failed to close directory", logfields.Error(err))
		}
	}()
	if r.Push && d.Pusher() == nil {
		return merrors.ValidationFailed("push.address", "--push needs a push gateway address")
	}

	in, closeFn, err := openInput(r.File)
	if err != nil {
		return err
	}
	defer closeFn()

	stats, err := d.Dispatcher().Replay(in)
	if err != nil {
		return err
	}
	logger.Info("Replayed event log",
		logfields.File(r.File),
		slog.Int("user", stats.User),
		slog.Int("admin", stats.Admin),
		slog.Int("rejected", stats.Rejected))

	if err := metrics.NewExporter(d.Registry().Prometheus()).WriteExposition(g.Stdout); err != nil {
		return merrors.ExportFailed(err)
	}

	if r.Push {
		if err := d.Pusher().Push(ctx); err != nil {
			return merrors.ExportFailed(err).WithContext("gateway", d.Pusher().URL())
		}
		logger.Info("Pushed metrics", logfields.Gateway(d.Pusher().URL()))
	}
	return nil
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, merrors.Wrap(err, merrors.CategoryFileSystem, merrors.SeverityError, "failed to open event log").
			WithContext("path", path)
	}
	return f, func() { _ = f.Close() }, nil
}
