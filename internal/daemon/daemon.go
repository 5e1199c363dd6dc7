// Package daemon assembles the long-running exporter: HTTP endpoints, the
// JetStream consumer, the directory watcher and the periodic push.
package daemon

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/eventmetrics/internal/api"
	"git.home.luguber.info/inful/eventmetrics/internal/config"
	merrors "git.home.luguber.info/inful/eventmetrics/internal/errors"
	"git.home.luguber.info/inful/eventmetrics/internal/ingest"
	"git.home.luguber.info/inful/eventmetrics/internal/logfields"
	"git.home.luguber.info/inful/eventmetrics/internal/metrics"
	"git.home.luguber.info/inful/eventmetrics/internal/retry"
)

// ShutdownTimeout bounds the HTTP drain and the final push.
const ShutdownTimeout = 10 * time.Second

// Daemon owns every component built from a Config.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	registry   *metrics.Registry
	listener   *metrics.Listener
	dispatcher *ingest.Dispatcher
	directory  *Directory
	server     *api.Server
	pusher     *metrics.Pusher
}

// New builds the daemon. A malformed push gateway address or an unreachable
// directory fails here rather than at run time.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var regOpts []metrics.Option
	if cfg.Metrics.RuntimeCollectors {
		regOpts = append(regOpts, metrics.WithRuntimeCollectors())
	}
	reg := metrics.NewRegistry(regOpts...)

	policies, err := metrics.ParsePolicySet(string(cfg.Metrics.Specialized))
	if err != nil {
		return nil, merrors.ConfigInvalid("metrics.specialized", err)
	}

	policy := retry.FromConfig(cfg.Retry)
	var dir *Directory
	err = policy.Do(ctx, logger, "open directory", func(ctx context.Context) error {
		var openErr error
		dir, openErr = OpenDirectory(ctx, cfg.Directory, logger)
		return openErr
	})
	if err != nil {
		return nil, err
	}

	listener := metrics.NewListener(reg, dir.Session,
		metrics.WithNamespace(cfg.Metrics.Namespace),
		metrics.WithPolicySet(policies),
		metrics.WithDefaultProvider(cfg.Metrics.DefaultProvider),
		metrics.WithLookupTimeout(cfg.Directory.LookupTimeout),
		metrics.WithLogger(logger))

	pusher, err := NewPusher(cfg.Push, reg, logger)
	if err != nil {
		_ = dir.Close()
		return nil, err
	}

	dispatcher := ingest.NewDispatcher(listener, logger)
	return &Daemon{
		cfg:        cfg,
		logger:     logger,
		registry:   reg,
		listener:   listener,
		dispatcher: dispatcher,
		directory:  dir,
		server:     api.NewServer(cfg.HTTP, reg, dispatcher, logger),
		pusher:     pusher,
	}, nil
}

// NewPusher builds the push path from configuration; nil when disabled.
func NewPusher(cfg config.PushConfig, reg *metrics.Registry, logger *slog.Logger) (*metrics.Pusher, error) {
	pusher, err := metrics.NewPusher(metrics.PushConfig{
		Address:  cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		Job:      cfg.Job,
		Timeout:  cfg.Timeout,
	}, reg.Prometheus(), logger)
	if err != nil {
		return nil, merrors.PushGatewayInvalid(cfg.Address, err)
	}
	return pusher, nil
}

// Registry returns the metrics registry.
func (d *Daemon) Registry() *metrics.Registry { return d.registry }

// Listener returns the event listener.
func (d *Daemon) Listener() *metrics.Listener { return d.listener }

// Dispatcher returns the event dispatcher shared by every ingestion path.
func (d *Daemon) Dispatcher() *ingest.Dispatcher { return d.dispatcher }

// Pusher returns the push path, or nil when disabled.
func (d *Daemon) Pusher() *metrics.Pusher { return d.pusher }

// Close releases the directory backend. Run closes it on return; commands
// that never call Run must call Close themselves. It is safe to call twice.
func (d *Daemon) Close() error { return d.directory.Close() }

// Run serves until ctx is cancelled or a component fails. When l is nil the
// configured HTTP address is used.
func (d *Daemon) Run(ctx context.Context, l net.Listener) error {
	defer func() {
		if err := d.Close(); err != nil {
			d.logger.Warn("Failed to close directory", logfields.Error(err))
		}
	}()

	if l == nil {
		var err error
		l, err = net.Listen("tcp", d.cfg.HTTP.Addr)
		if err != nil {
			return merrors.Wrap(err, merrors.CategoryNetwork, merrors.SeverityFatal, "failed to listen").
				WithContext("addr", d.cfg.HTTP.Addr)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)
	abort := func(cause error) error {
		cancel()
		_ = g.Wait()
		return cause
	}

	g.Go(func() error { return d.server.Serve(l) })
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return d.server.Shutdown(shutdownCtx)
	})

	if d.cfg.NATS.Enabled {
		consumer := ingest.NewConsumer(d.cfg.NATS, d.dispatcher, d.logger)
		policy := retry.FromConfig(d.cfg.Retry)
		if err := policy.Do(gctx, d.logger, "start consumer", consumer.Start); err != nil {
			d.logger.Error("Failed to start event consumer", logfields.Error(err))
			return abort(err)
		}
		g.Go(func() error {
			<-gctx.Done()
			consumer.Stop()
			return nil
		})
	}

	watcher, err := d.directory.Watcher(d.cfg.Directory)
	if err != nil {
		return abort(err)
	}
	if watcher != nil {
		if err := watcher.Start(gctx); err != nil {
			_ = watcher.Stop()
			return abort(err)
		}
		g.Go(func() error {
			<-gctx.Done()
			return watcher.Stop()
		})
	}

	if d.pusher != nil && d.cfg.Push.Interval > 0 {
		scheduler, err := NewScheduler(d.logger)
		if err != nil {
			return abort(err)
		}
		if _, err := scheduler.SchedulePush(gctx, d.cfg.Push.Interval, d.pusher); err != nil {
			_ = scheduler.Stop()
			return abort(err)
		}
		scheduler.Start()
		g.Go(func() error {
			<-gctx.Done()
			return scheduler.Stop()
		})
	}

	d.logger.Info("Daemon started", slog.String("addr", l.Addr().String()))
	err = g.Wait()

	if d.pusher != nil {
		pushCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		d.pusher.PushAndLog(pushCtx)
		cancel()
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	d.logger.Info("Daemon stopped")
	return nil
}
