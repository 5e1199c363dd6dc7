package daemon

import (
	"context"
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/eventmetrics/internal/config"
	"git.home.luguber.info/inful/eventmetrics/internal/directory"
	merrors "git.home.luguber.info/inful/eventmetrics/internal/errors"
	"git.home.luguber.info/inful/eventmetrics/internal/keycloak"
	"git.home.luguber.info/inful/eventmetrics/internal/logfields"
)

// Directory is the lookup backend chosen by configuration, together with the
// hooks the daemon needs to manage it.
type Directory struct {
	Session keycloak.Session
	cache   *directory.Cached
	static  *directory.Static
	closeFn func() error

	closeOnce sync.Once
	closeErr  error
}

// OpenDirectory builds the backend for cfg. A "none" directory yields a nil
// Session, which leaves realm names empty and disables session gauges.
// Database connection failures are retryable; a bad static file is not.
func OpenDirectory(ctx context.Context, cfg config.DirectoryConfig, logger *slog.Logger) (*Directory, error) {
	var (
		backend keycloak.Session
		d       = &Directory{}
	)
	switch cfg.Type {
	case config.DirectoryStatic:
		static, err := directory.LoadStatic(cfg.File)
		if err != nil {
			return nil, merrors.Wrap(err, merrors.CategoryDirectory, merrors.SeverityFatal, "failed to load static directory").
				WithContext("file", cfg.File)
		}
		d.static = static
		backend = static
		logger.Info("Loaded static directory", logfields.File(cfg.File))
	case config.DirectorySQL:
		db, err := directory.OpenSQL(ctx, cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, merrors.DirectoryUnavailable(string(cfg.Type), err).WithContext("driver", cfg.Driver)
		}
		d.closeFn = db.Close
		backend = db
		logger.Info("Connected to directory database", slog.String("driver", cfg.Driver))
	default:
		return d, nil
	}

	d.cache = directory.NewCached(backend, cfg.CacheSize, cfg.CacheTTL)
	d.Session = d.cache
	return d, nil
}

// Watcher returns a file watcher for static directories when watching is
// enabled, or nil otherwise. Reloads purge the lookup cache.
func (d *Directory) Watcher(cfg config.DirectoryConfig) (*directory.Watcher, error) {
	if d.static == nil || !cfg.Watch {
		return nil, nil
	}
	return directory.NewWatcher(d.static, directory.WithOnReload(d.Purge))
}

// Purge drops cached lookups.
func (d *Directory) Purge() {
	if d.cache != nil {
		d.cache.Purge()
	}
}

// Close releases the backend.
func (d *Directory) Close() error {
	d.closeOnce.Do(func() {
		if d.closeFn != nil {
			d.closeErr = d.closeFn()
		}
	})
	return d.closeErr
}
