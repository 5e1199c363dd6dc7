// Package ingest feeds serialized platform events into the metrics listener,
// from HTTP request bodies, JetStream messages or replayed event logs.
package ingest

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"log/slog"

	merrors "git.home.luguber.info/inful/eventmetrics/internal/errors"
	"git.home.luguber.info/inful/eventmetrics/internal/keycloak"
	"git.home.luguber.info/inful/eventmetrics/internal/logfields"
	"git.home.luguber.info/inful/eventmetrics/internal/metrics"
)

// Handler receives decoded events. *metrics.Listener implements it.
type Handler interface {
	OnEvent(*keycloak.Event)
	OnAdminEvent(*keycloak.AdminEvent) error
}

var _ Handler = (*metrics.Listener)(nil)

// Dispatcher decodes events and hands them to a Handler.
type Dispatcher struct {
	handler Handler
	logger  *slog.Logger
}

// NewDispatcher returns a dispatcher for h.
func NewDispatcher(h Handler, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{handler: h, logger: logger}
}

// User decodes a single user event from r and records it.
func (d *Dispatcher) User(r io.Reader) error {
	ev, err := keycloak.DecodeEvent(r)
	if err != nil {
		return merrors.InvalidEvent(err)
	}
	d.handler.OnEvent(ev)
	return nil
}

// Admin decodes a single admin event from r and records it.
func (d *Dispatcher) Admin(r io.Reader) error {
	ev, err := keycloak.DecodeAdminEvent(r)
	if err != nil {
		return merrors.InvalidEvent(err)
	}
	return d.admin(ev)
}

func (d *Dispatcher) admin(ev *keycloak.AdminEvent) error {
	if err := d.handler.OnAdminEvent(ev); err != nil {
		reason := "invalid admin event"
		switch {
		case errors.Is(err, metrics.ErrMissingResourceType):
			reason = "missing resource type"
		case errors.Is(err, metrics.ErrMissingOperationType):
			reason = "missing operation type"
		case errors.Is(err, metrics.ErrInvalidOperationType):
			reason = "invalid operation type"
		}
		return merrors.RejectedEvent(reason, err).WithContext("event_id", ev.ID)
	}
	return nil
}

// ReplayStats summarises a replayed event log.
type ReplayStats struct {
	User     int
	Admin    int
	Rejected int
}

// Replay reads newline-delimited JSON events from r. Blank lines are skipped;
// undecodable or rejected lines are logged and counted, never fatal.
func (d *Dispatcher) Replay(r io.Reader) (ReplayStats, error) {
	var stats ReplayStats
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		user, admin, err := keycloak.DecodeLine(line)
		if err != nil {
			stats.Rejected++
			d.logger.Warn("Skipping undecodable event line", slog.Int("line", lineNo), logfields.Error(err))
			continue
		}
		if user != nil {
			d.handler.OnEvent(user)
			stats.User++
			continue
		}
		if err := d.admin(admin); err != nil {
			stats.Rejected++
			d.logger.Warn("Skipping rejected admin event", slog.Int("line", lineNo), logfields.Error(err))
			continue
		}
		stats.Admin++
	}
	if err := scanner.Err(); err != nil {
		return stats, merrors.Wrap(err, merrors.CategoryFileSystem, merrors.SeverityError, "failed to read event log")
	}
	return stats, nil
}
