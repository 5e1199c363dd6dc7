package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"git.home.luguber.info/inful/eventmetrics/internal/logfields"
)

// Push defaults.
const (
	DefaultPushJob     = "keycloak"
	DefaultPushTimeout = 10 * time.Second
)

// ErrInvalidGatewayAddress is returned for addresses that do not parse into
// a host.
var ErrInvalidGatewayAddress = errors.New("invalid push gateway address")

// PushConfig describes the push gateway target.
type PushConfig struct {
	Address  string
	Username string
	Password string
	Job      string
	Timeout  time.Duration
	Grouping map[string]string
}

// NormalizeGatewayAddress prepends http:// when addr has no scheme and
// checks that the result names a host.
func NormalizeGatewayAddress(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	lower := strings.ToLower(addr)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		addr = "http://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidGatewayAddress, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidGatewayAddress, addr)
	}
	return addr, nil
}

// Pusher sends the whole registry to a push gateway.
type Pusher struct {
	url    string
	job    string
	pusher *push.Pusher
	logger *slog.Logger
}

// NewPusher builds a pusher for cfg. It returns nil and no error when
// cfg.Address is empty, meaning pushing is disabled.
func NewPusher(cfg PushConfig, g prom.Gatherer, logger *slog.Logger) (*Pusher, error) {
	if strings.TrimSpace(cfg.Address) == "" {
		return nil, nil
	}
	addr, err := NormalizeGatewayAddress(cfg.Address)
	if err != nil {
		return nil, err
	}
	if cfg.Job == "" {
		cfg.Job = DefaultPushJob
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultPushTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := push.New(addr, cfg.Job).
		Gatherer(g).
		Client(&http.Client{Timeout: cfg.Timeout})
	if cfg.Username != "" && cfg.Password != "" {
		p = p.BasicAuth(cfg.Username, cfg.Password)
	}
	for k, v := range cfg.Grouping {
		p = p.Grouping(k, v)
	}
	logger.Info("Push gateway configured", logfields.Gateway(addr), logfields.Job(cfg.Job))
	return &Pusher{url: addr, job: cfg.Job, pusher: p, logger: logger}, nil
}

// URL returns the normalised gateway address.
func (p *Pusher) URL() string { return p.url }

// Push replaces the job's metrics on the gateway with the current registry.
func (p *Pusher) Push(ctx context.Context) error {
	if err := p.pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push to %s: %w", p.url, err)
	}
	return nil
}

// PushAndLog pushes and logs a failure instead of returning it. It is a
// no-op on a nil receiver so disabled pushing needs no caller checks.
func (p *Pusher) PushAndLog(ctx context.Context) {
	if p == nil {
		return
	}
	start := time.Now()
	if err := p.Push(ctx); err != nil {
		p.logger.Warn("Push to gateway failed", logfields.Gateway(p.url), logfields.Error(err))
		return
	}
	p.logger.Debug("Pushed metrics",
		logfields.Gateway(p.url),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
}
