package directory

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/eventmetrics/internal/keycloak"
)

// StaticClient is a client entry of the static directory file. Session
// counts are fixed values, useful for demos and tests.
type StaticClient struct {
	ID              string `yaml:"id"`
	ClientID        string `yaml:"client_id"`
	ActiveSessions  int64  `yaml:"active_sessions"`
	OfflineSessions int64  `yaml:"offline_sessions"`
}

// StaticRealm is a realm entry of the static directory file.
type StaticRealm struct {
	ID      string         `yaml:"id"`
	Name    string         `yaml:"name"`
	Clients []StaticClient `yaml:"clients"`
}

// StaticFile is the on-disk layout of the static directory.
type StaticFile struct {
	Realms []StaticRealm `yaml:"realms"`
}

type staticIndex struct {
	realms  map[string]*StaticRealm
	clients map[string]*StaticClient // realm id + "/" + client_id
}

// Static is an in-memory directory loaded from YAML. Reload swaps the whole
// index so readers never see a partially loaded file.
type Static struct {
	path string

	mu    sync.RWMutex
	index staticIndex
}

// NewStatic builds a directory from already decoded content.
func NewStatic(file StaticFile) (*Static, error) {
	s := &Static{}
	if err := s.apply(file); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadStatic reads the directory file at path.
func LoadStatic(path string) (*Static, error) {
	s := &Static{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the file the directory was loaded from.
func (s *Static) Path() string { return s.path }

// Reload re-reads the backing file. On error the previous content is kept.
func (s *Static) Reload() error {
	if s.path == "" {
		return fmt.Errorf("static directory has no backing file")
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read directory file: %w", err)
	}
	var file StaticFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse directory file %s: %w", s.path, err)
	}
	return s.apply(file)
}

func (s *Static) apply(file StaticFile) error {
	idx := staticIndex{
		realms:  make(map[string]*StaticRealm, len(file.Realms)),
		clients: make(map[string]*StaticClient),
	}
	for i := range file.Realms {
		realm := &file.Realms[i]
		if realm.ID == "" {
			return fmt.Errorf("realm %d: id is required", i)
		}
		if _, dup := idx.realms[realm.ID]; dup {
			return fmt.Errorf("realm %s: duplicate id", realm.ID)
		}
		idx.realms[realm.ID] = realm
		for j := range realm.Clients {
			c := &realm.Clients[j]
			if c.ClientID == "" {
				return fmt.Errorf("realm %s client %d: client_id is required", realm.ID, j)
			}
			if c.ID == "" {
				c.ID = c.ClientID
			}
			idx.clients[clientKey(realm.ID, c.ClientID)] = c
		}
	}

	s.mu.Lock()
	s.index = idx
	s.mu.Unlock()
	return nil
}

func clientKey(realmID, clientID string) string {
	return realmID + "/" + clientID
}

// GetRealm implements keycloak.RealmProvider.
func (s *Static) GetRealm(_ context.Context, id string) (*keycloak.Realm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.index.realms[id]
	if !ok {
		return nil, fmt.Errorf("realm %s: %w", id, keycloak.ErrNotFound)
	}
	return &keycloak.Realm{ID: r.ID, Name: r.Name}, nil
}

// GetClientByClientID implements keycloak.ClientProvider.
func (s *Static) GetClientByClientID(_ context.Context, realm *keycloak.Realm, clientID string) (*keycloak.Client, error) {
	if realm == nil {
		return nil, fmt.Errorf("client %s: %w", clientID, keycloak.ErrNotFound)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.index.clients[clientKey(realm.ID, clientID)]
	if !ok {
		return nil, fmt.Errorf("client %s in realm %s: %w", clientID, realm.ID, keycloak.ErrNotFound)
	}
	return &keycloak.Client{ID: c.ID, ClientID: c.ClientID, RealmID: realm.ID}, nil
}

// ActiveUserSessions implements keycloak.SessionProvider.
func (s *Static) ActiveUserSessions(_ context.Context, realm *keycloak.Realm, client *keycloak.Client) (int64, error) {
	c, err := s.client(realm, client)
	if err != nil {
		return 0, err
	}
	return c.ActiveSessions, nil
}

// OfflineSessionsCount implements keycloak.SessionProvider.
func (s *Static) OfflineSessionsCount(_ context.Context, realm *keycloak.Realm, client *keycloak.Client) (int64, error) {
	c, err := s.client(realm, client)
	if err != nil {
		return 0, err
	}
	return c.OfflineSessions, nil
}

func (s *Static) client(realm *keycloak.Realm, client *keycloak.Client) (StaticClient, error) {
	if realm == nil || client == nil {
		return StaticClient{}, keycloak.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.index.clients[clientKey(realm.ID, client.ClientID)]
	if !ok {
		return StaticClient{}, keycloak.ErrNotFound
	}
	return *c, nil
}
