package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/common/model"

	"git.home.luguber.info/inful/eventmetrics/internal/directory"
	"git.home.luguber.info/inful/eventmetrics/internal/keycloak"
	"git.home.luguber.info/inful/eventmetrics/internal/logfields"
)

// Contract violations reported by OnAdminEvent.
var (
	ErrMissingResourceType  = errors.New("admin event without resource type")
	ErrMissingOperationType = errors.New("admin event without operation type")
	ErrInvalidOperationType = errors.New("admin operation type is not a valid metric name")
)

// ErrInvalidEventType is logged when a user event type yields a name outside
// the classic metric name charset.
var ErrInvalidEventType = errors.New("event type is not a valid metric name")

// Help texts of the per-client session gauges.
const (
	activeSessionsHelp  = "Number of active user sessions by client"
	offlineSessionsHelp = "Number of active offline user sessions by client"
)

// Listener translates platform events into registry updates. It is safe for
// concurrent use and never fails the caller for user events.
type Listener struct {
	registry        *Registry
	session         keycloak.Session
	realms          *directory.RealmResolver
	names           Names
	specialized     PolicySet
	defaultProvider string
	lookupTimeout   time.Duration
	logger          *slog.Logger
}

// ListenerOption configures a Listener.
type ListenerOption func(*Listener)

// WithNamespace overrides DefaultNamespace.
func WithNamespace(ns string) ListenerOption {
	return func(l *Listener) { l.names = Names{Namespace: ns} }
}

// WithPolicySet selects the event types that get specialized series.
func WithPolicySet(set PolicySet) ListenerOption {
	return func(l *Listener) { l.specialized = set }
}

// WithDefaultProvider overrides DefaultProvider.
func WithDefaultProvider(p string) ListenerOption {
	return func(l *Listener) { l.defaultProvider = p }
}

// WithLookupTimeout bounds each realm, client and session lookup.
// Non-positive values keep directory.DefaultLookupTimeout.
func WithLookupTimeout(d time.Duration) ListenerOption {
	return func(l *Listener) {
		if d > 0 {
			l.lookupTimeout = d
		}
	}
}

// WithLogger sets the logger used for dropped increments.
func WithLogger(logger *slog.Logger) ListenerOption {
	return func(l *Listener) { l.logger = logger }
}

// NewListener wires a listener to reg and pre-creates the generic counter
// catalog. session may be nil, in which case realms resolve to "" and no
// session gauges are registered.
func NewListener(reg *Registry, session keycloak.Session, opts ...ListenerOption) *Listener {
	l := &Listener{
		registry:        reg,
		session:         session,
		names:           Names{Namespace: DefaultNamespace},
		specialized:     FullPolicies(),
		defaultProvider: DefaultProvider,
		lookupTimeout:   directory.DefaultLookupTimeout,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.realms = directory.NewRealmResolver(session, l.lookupTimeout, l.logger)

	for _, entry := range BuildCatalog(l.names, l.specialized) {
		reg.GetOrCreateCounter(entry.Name, entry.Help)
	}
	return l
}

// Registry returns the registry the listener writes to.
func (l *Listener) Registry() *Registry { return l.registry }

// Names returns the naming scheme in use.
func (l *Listener) Names() Names { return l.names }

// OnEvent records a user event. Events without a type are ignored and
// increment failures are logged, never returned.
func (l *Listener) OnEvent(ev *keycloak.Event) {
	if ev == nil || ev.Type == "" {
		return
	}
	ctx := context.Background()
	realm := l.realms.Resolve(ctx, ev.RealmID)
	realmName := ""
	if realm != nil {
		realmName = realm.Name
	}

	if ev.ClientID != "" {
		l.bindSessionGauges(ctx, realm, realmName, ev.ClientID)
	}

	var err error
	name := l.names.UserEvent(ev.Type)
	switch {
	case l.specialized.Has(ev.Type):
		err = l.applyPolicy(ev, realmName)
	case !model.IsValidLegacyMetricName(name):
		err = ErrInvalidEventType
	default:
		err = l.registry.IncrementCounter(name, NewTags(TagRealm, realmName, TagClientID, ev.ClientID))
	}
	if err != nil {
		l.logger.Warn("Dropped event increment",
			logfields.EventType(ev.Type.String()),
			logfields.Realm(realmName),
			logfields.ClientID(ev.ClientID),
			logfields.Error(err))
	}
}

// OnAdminEvent records an admin event. A nil event is ignored; events
// missing their operation or resource type are rejected, as are operation
// types that cannot form a metric name.
func (l *Listener) OnAdminEvent(ev *keycloak.AdminEvent) error {
	if ev == nil {
		return nil
	}
	if ev.OperationType == "" {
		return ErrMissingOperationType
	}
	if ev.ResourceType == "" {
		return ErrMissingResourceType
	}
	name := l.names.AdminEvent(ev.OperationType)
	if !model.IsValidLegacyMetricName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidOperationType, ev.OperationType.String())
	}
	realmName := l.realms.Name(context.Background(), ev.RealmID)
	c := l.registry.GetOrCreateCounter(name, GenericAdminHelp)
	return c.Inc(NewTags(TagRealm, realmName, TagResource, ev.ResourceType.String()))
}

// bindSessionGauges (re)binds the two per-client session gauges. The
// captures query the session provider at scrape time.
func (l *Listener) bindSessionGauges(ctx context.Context, realm *keycloak.Realm, realmName, clientID string) {
	if l.session == nil {
		return
	}
	var client *keycloak.Client
	if realm != nil {
		lookupCtx, cancel := context.WithTimeout(ctx, l.lookupTimeout)
		c, err := l.session.GetClientByClientID(lookupCtx, realm, clientID)
		cancel()
		if err != nil && !errors.Is(err, keycloak.ErrNotFound) {
			l.logger.Warn("Client lookup failed", logfields.Realm(realmName), logfields.ClientID(clientID), logfields.Error(err))
		}
		client = c
	}

	tags := NewTags(TagRealm, realmName, TagClientID, clientID)
	gauges := []struct {
		name, help string
		count      func(context.Context, *keycloak.Realm, *keycloak.Client) (int64, error)
	}{
		{l.names.ActiveSessions(), activeSessionsHelp, l.session.ActiveUserSessions},
		{l.names.OfflineSessions(), offlineSessionsHelp, l.session.OfflineSessionsCount},
	}
	for _, g := range gauges {
		capture := l.sessionCapture(realm, client, g.count)
		if err := l.registry.RegisterGauge(g.name, g.help, tags, capture); err != nil {
			l.logger.Warn("Dropped session gauge", logfields.Metric(g.name), logfields.Error(err))
		}
	}
}

func (l *Listener) sessionCapture(realm *keycloak.Realm, client *keycloak.Client, count func(context.Context, *keycloak.Realm, *keycloak.Client) (int64, error)) func() float64 {
	return func() float64 {
		if realm == nil || client == nil {
			return 0
		}
		ctx, cancel := context.WithTimeout(context.Background(), l.lookupTimeout)
		defer cancel()
		n, err := count(ctx, realm, client)
		if err != nil {
			l.logger.Debug("Session count unavailable",
				logfields.Realm(realm.Name), logfields.ClientID(client.ClientID), logfields.Error(err))
			return 0
		}
		return float64(n)
	}
}
