package config

import (
	"fmt"
	"time"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// MetricsDefaultApplier handles metrics defaults.
type MetricsDefaultApplier struct{}

func (m *MetricsDefaultApplier) Domain() string { return "metrics" }

func (m *MetricsDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "keycloak"
	}
	if cfg.Metrics.DefaultProvider == "" {
		cfg.Metrics.DefaultProvider = "keycloak"
	}
	return nil
}

// HTTPDefaultApplier handles HTTP listener defaults.
type HTTPDefaultApplier struct{}

func (h *HTTPDefaultApplier) Domain() string { return "http" }

func (h *HTTPDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":9464"
	}
	if cfg.HTTP.MetricsPath == "" {
		cfg.HTTP.MetricsPath = "/metrics"
	}
	return nil
}

// NATSDefaultApplier handles JetStream consumer defaults.
type NATSDefaultApplier struct{}

func (n *NATSDefaultApplier) Domain() string { return "nats" }

func (n *NATSDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = "nats://127.0.0.1:4222"
	}
	if cfg.NATS.Stream == "" {
		cfg.NATS.Stream = "KEYCLOAK_EVENTS"
	}
	if cfg.NATS.UserSubject == "" {
		cfg.NATS.UserSubject = "keycloak.events.user"
	}
	if cfg.NATS.AdminSubject == "" {
		cfg.NATS.AdminSubject = "keycloak.events.admin"
	}
	if cfg.NATS.Durable == "" {
		cfg.NATS.Durable = "eventmetrics"
	}
	return nil
}

// DirectoryDefaultApplier handles lookup backend defaults.
type DirectoryDefaultApplier struct{}

func (d *DirectoryDefaultApplier) Domain() string { return "directory" }

func (d *DirectoryDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Directory.Type == DirectorySQL && cfg.Directory.Driver == "" {
		cfg.Directory.Driver = "sqlite"
	}
	if cfg.Directory.CacheSize == 0 {
		cfg.Directory.CacheSize = 1024
	}
	if cfg.Directory.CacheTTL == 0 {
		cfg.Directory.CacheTTL = time.Minute
	}
	if cfg.Directory.LookupTimeout == 0 {
		cfg.Directory.LookupTimeout = 2 * time.Second
	}
	return nil
}

// PushDefaultApplier handles push gateway defaults.
type PushDefaultApplier struct{}

func (p *PushDefaultApplier) Domain() string { return "push" }

func (p *PushDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Push.Job == "" {
		cfg.Push.Job = "keycloak"
	}
	if cfg.Push.Interval == 0 {
		cfg.Push.Interval = 30 * time.Second
	}
	if cfg.Push.Timeout == 0 {
		cfg.Push.Timeout = 10 * time.Second
	}
	return nil
}

// RetryDefaultApplier handles startup retry defaults.
type RetryDefaultApplier struct{}

func (r *RetryDefaultApplier) Domain() string { return "retry" }

func (r *RetryDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Retry.Initial == 0 {
		cfg.Retry.Initial = time.Second
	}
	if cfg.Retry.Max == 0 {
		cfg.Retry.Max = 30 * time.Second
	}
	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry.MaxRetries = 5
	}
	return nil
}

// CompositeDefaultApplier applies defaults across all configuration domains
type CompositeDefaultApplier struct {
	appliers []DefaultApplier
}

// NewDefaultApplier creates a composite default applier with all domain appliers
func NewDefaultApplier() *CompositeDefaultApplier {
	return &CompositeDefaultApplier{
		appliers: []DefaultApplier{
			&MetricsDefaultApplier{},
			&HTTPDefaultApplier{},
			&NATSDefaultApplier{},
			&DirectoryDefaultApplier{},
			&PushDefaultApplier{},
			&RetryDefaultApplier{},
		},
	}
}

// ApplyDefaults applies defaults for all configuration domains
func (c *CompositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, applier := range c.appliers {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("applying defaults for %s: %w", applier.Domain(), err)
		}
	}
	return nil
}
