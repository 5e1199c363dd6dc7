package directory

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"git.home.luguber.info/inful/eventmetrics/internal/keycloak"
)

// Cache defaults.
const (
	DefaultCacheSize = 1024
	DefaultCacheTTL  = time.Minute
)

// Cached memoises realm and client lookups of another directory for a
// bounded time. Misses are remembered too so unknown identifiers do not hit
// the backend on every event. Session counts always go to the backend.
type Cached struct {
	next    keycloak.Session
	realms  *expirable.LRU[string, *keycloak.Realm]
	clients *expirable.LRU[string, *keycloak.Client]
	group   singleflight.Group
}

// NewCached wraps next. Non-positive size or ttl select the defaults.
func NewCached(next keycloak.Session, size int, ttl time.Duration) *Cached {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{
		next:    next,
		realms:  expirable.NewLRU[string, *keycloak.Realm](size, nil, ttl),
		clients: expirable.NewLRU[string, *keycloak.Client](size, nil, ttl),
	}
}

// Purge drops every cached entry.
func (c *Cached) Purge() {
	c.realms.Purge()
	c.clients.Purge()
}

// GetRealm implements keycloak.RealmProvider.
func (c *Cached) GetRealm(ctx context.Context, id string) (*keycloak.Realm, error) {
	if realm, ok := c.realms.Get(id); ok {
		return found(realm)
	}
	v, err, _ := c.group.Do("realm/"+id, func() (any, error) {
		realm, err := c.next.GetRealm(ctx, id)
		if err != nil && !errors.Is(err, keycloak.ErrNotFound) {
			return nil, err
		}
		c.realms.Add(id, realm)
		return realm, nil
	})
	if err != nil {
		return nil, err
	}
	return found(v.(*keycloak.Realm))
}

// GetClientByClientID implements keycloak.ClientProvider.
func (c *Cached) GetClientByClientID(ctx context.Context, realm *keycloak.Realm, clientID string) (*keycloak.Client, error) {
	if realm == nil {
		return nil, keycloak.ErrNotFound
	}
	key := clientKey(realm.ID, clientID)
	if client, ok := c.clients.Get(key); ok {
		return found(client)
	}
	v, err, _ := c.group.Do("client/"+key, func() (any, error) {
		client, err := c.next.GetClientByClientID(ctx, realm, clientID)
		if err != nil && !errors.Is(err, keycloak.ErrNotFound) {
			return nil, err
		}
		c.clients.Add(key, client)
		return client, nil
	})
	if err != nil {
		return nil, err
	}
	return found(v.(*keycloak.Client))
}

// ActiveUserSessions implements keycloak.SessionProvider.
func (c *Cached) ActiveUserSessions(ctx context.Context, realm *keycloak.Realm, client *keycloak.Client) (int64, error) {
	return c.next.ActiveUserSessions(ctx, realm, client)
}

// OfflineSessionsCount implements keycloak.SessionProvider.
func (c *Cached) OfflineSessionsCount(ctx context.Context, realm *keycloak.Realm, client *keycloak.Client) (int64, error) {
	return c.next.OfflineSessionsCount(ctx, realm, client)
}

func found[T any](v *T) (*T, error) {
	if v == nil {
		return nil, keycloak.ErrNotFound
	}
	return v, nil
}
