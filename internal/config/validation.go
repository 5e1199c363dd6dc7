package config

import (
	"strings"

	"github.com/prometheus/common/model"

	merrors "git.home.luguber.info/inful/eventmetrics/internal/errors"
)

// Validate checks cross-field constraints after defaults have been applied.
func Validate(cfg *Config) error {
	if !model.IsValidLegacyMetricName(cfg.Metrics.Namespace) {
		return merrors.ValidationFailed("metrics.namespace", "must be a valid metric name prefix")
	}
	if !strings.HasPrefix(cfg.HTTP.MetricsPath, "/") {
		return merrors.ValidationFailed("http.metrics_path", "must start with /")
	}
	if cfg.NATS.Enabled {
		if cfg.NATS.UserSubject == cfg.NATS.AdminSubject {
			return merrors.ValidationFailed("nats.admin_subject", "must differ from nats.user_subject")
		}
	}
	switch cfg.Directory.Type {
	case DirectoryStatic:
		if cfg.Directory.File == "" {
			return merrors.ValidationFailed("directory.file", "required for the static directory")
		}
	case DirectorySQL:
		if cfg.Directory.DSN == "" {
			return merrors.ValidationFailed("directory.dsn", "required for the sql directory")
		}
	}
	if cfg.Directory.CacheSize < 0 {
		return merrors.ValidationFailed("directory.cache_size", "must not be negative")
	}
	if cfg.Directory.LookupTimeout < 0 || cfg.Directory.CacheTTL < 0 {
		return merrors.ValidationFailed("directory", "lookup_timeout and cache_ttl must not be negative")
	}
	if cfg.Push.Interval < 0 || cfg.Push.Timeout < 0 {
		return merrors.ValidationFailed("push", "interval and timeout must not be negative")
	}
	if cfg.Push.Enabled() && cfg.Push.Timeout > cfg.Push.Interval {
		return merrors.ValidationFailed("push.timeout", "must not exceed push.interval")
	}
	if cfg.Retry.Initial < 0 || cfg.Retry.Max < 0 {
		return merrors.ValidationFailed("retry", "initial and max must not be negative")
	}
	return nil
}
