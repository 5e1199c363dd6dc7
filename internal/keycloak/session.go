package keycloak

import (
	"context"
	"errors"
)

// ErrNotFound is returned by providers when a realm or client does not exist.
var ErrNotFound = errors.New("not found")

// Realm is the subset of a realm model needed for tagging.
type Realm struct {
	ID   string `db:"id" yaml:"id"`
	Name string `db:"name" yaml:"name"`
}

// Client is the subset of a client model needed for session counting.
// ID is the internal identifier, ClientID the public client_id.
type Client struct {
	ID       string `db:"id" yaml:"id"`
	ClientID string `db:"client_id" yaml:"client_id"`
	RealmID  string `db:"realm_id" yaml:"-"`
}

// RealmProvider looks realms up by identifier.
type RealmProvider interface {
	GetRealm(ctx context.Context, id string) (*Realm, error)
}

// ClientProvider looks clients up by their public client_id within a realm.
type ClientProvider interface {
	GetClientByClientID(ctx context.Context, realm *Realm, clientID string) (*Client, error)
}

// SessionProvider reports live session counts. Implementations are queried
// at scrape time and must not cache on behalf of the caller.
type SessionProvider interface {
	ActiveUserSessions(ctx context.Context, realm *Realm, client *Client) (int64, error)
	OfflineSessionsCount(ctx context.Context, realm *Realm, client *Client) (int64, error)
}

// Session bundles the lookup capabilities the metrics engine consumes.
type Session interface {
	RealmProvider
	ClientProvider
	SessionProvider
}
