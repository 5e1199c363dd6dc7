package directory

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/eventmetrics/internal/keycloak"
)

const sampleDirectory = `
realms:
  - id: r-1
    name: master
    clients:
      - id: c-uuid
        client_id: account
        active_sessions: 4
        offline_sessions: 1
  - id: r-2
    name: customers
`

func writeFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "directory.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestStaticLookups(t *testing.T) {
	s, err := LoadStatic(writeFile(t, t.TempDir(), sampleDirectory))
	require.NoError(t, err)
	ctx := t.Context()

	realm, err := s.GetRealm(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, "master", realm.Name)

	_, err = s.GetRealm(ctx, "missing")
	require.ErrorIs(t, err, keycloak.ErrNotFound)

	client, err := s.GetClientByClientID(ctx, realm, "account")
	require.NoError(t, err)
	assert.Equal(t, "c-uuid", client.ID)

	active, err := s.ActiveUserSessions(ctx, realm, client)
	require.NoError(t, err)
	assert.EqualValues(t, 4, active)
	offline, err := s.OfflineSessionsCount(ctx, realm, client)
	require.NoError(t, err)
	assert.EqualValues(t, 1, offline)

	other, err := s.GetRealm(ctx, "r-2")
	require.NoError(t, err)
	_, err = s.GetClientByClientID(ctx, other, "account")
	require.ErrorIs(t, err, keycloak.ErrNotFound)

	_, err = s.ActiveUserSessions(ctx, nil, client)
	require.ErrorIs(t, err, keycloak.ErrNotFound)
}

func TestStaticRejectsInvalidContent(t *testing.T) {
	_, err := NewStatic(StaticFile{Realms: []StaticRealm{{Name: "no-id"}}})
	require.Error(t, err)

	_, err = NewStatic(StaticFile{Realms: []StaticRealm{{ID: "a"}, {ID: "a"}}})
	require.Error(t, err)
}

func TestStaticReloadKeepsContentOnError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, sampleDirectory)
	s, err := LoadStatic(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("realms: [unclosed"), 0o600))
	require.Error(t, s.Reload())

	realm, err := s.GetRealm(t.Context(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, "master", realm.Name)
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, sampleDirectory)
	s, err := LoadStatic(path)
	require.NoError(t, err)

	reloaded := make(chan struct{}, 1)
	w, err := NewWatcher(s,
		WithDebounce(10*time.Millisecond),
		WithOnReload(func() {
			select {
			case reloaded <- struct{}{}:
			default:
			}
		}),
	)
	require.NoError(t, err)
	require.NoError(t, w.Start(t.Context()))
	t.Cleanup(func() { _ = w.Stop() })

	writeFile(t, dir, "realms:\n  - id: r-1\n    name: renamed\n")

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("directory was not reloaded")
	}
	realm, err := s.GetRealm(t.Context(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", realm.Name)
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
