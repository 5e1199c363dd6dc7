// Package directory answers realm, client and session lookups for the
// metrics engine. Backends are a static YAML file or the identity
// platform's own database; Cached wraps either with a TTL cache.
package directory

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/eventmetrics/internal/keycloak"
	"git.home.luguber.info/inful/eventmetrics/internal/logfields"
)

// DefaultLookupTimeout bounds a single realm or client lookup.
const DefaultLookupTimeout = 2 * time.Second

// RealmResolver turns realm identifiers into display names. Lookups that
// fail for any reason resolve to the empty string.
type RealmResolver struct {
	realms  keycloak.RealmProvider
	timeout time.Duration
	logger  *slog.Logger
}

// NewRealmResolver returns a resolver over realms. A nil provider resolves
// every identifier to the empty string.
func NewRealmResolver(realms keycloak.RealmProvider, timeout time.Duration, logger *slog.Logger) *RealmResolver {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RealmResolver{realms: realms, timeout: timeout, logger: logger}
}

// Resolve returns the realm for id, or nil when id is empty or unknown.
func (r *RealmResolver) Resolve(ctx context.Context, id string) *keycloak.Realm {
	if id == "" || r.realms == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	realm, err := r.realms.GetRealm(ctx, id)
	if err != nil {
		if !errors.Is(err, keycloak.ErrNotFound) {
			r.logger.Warn("Realm lookup failed", logfields.RealmID(id), logfields.Error(err))
		}
		return nil
	}
	return realm
}

// Name returns the display name of realm id, or "" when it cannot be resolved.
func (r *RealmResolver) Name(ctx context.Context, id string) string {
	if realm := r.Resolve(ctx, id); realm != nil {
		return realm.Name
	}
	return ""
}
