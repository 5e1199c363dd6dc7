package metrics

import (
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/eventmetrics/internal/directory"
	"git.home.luguber.info/inful/eventmetrics/internal/keycloak"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDirectory(t *testing.T) *directory.Static {
	t.Helper()
	d, err := directory.NewStatic(directory.StaticFile{Realms: []directory.StaticRealm{
		{
			ID:   "realm-1",
			Name: "R1",
			Clients: []directory.StaticClient{
				{ID: "c1-uuid", ClientID: "C1", ActiveSessions: 3, OfflineSessions: 1},
			},
		},
		{ID: "realm-2", Name: "R2"},
	}})
	require.NoError(t, err)
	return d
}

func newTestListener(t *testing.T, opts ...ListenerOption) (*Listener, *Registry) {
	t.Helper()
	reg := NewRegistry()
	opts = append([]ListenerOption{WithLogger(quietLogger())}, opts...)
	return NewListener(reg, newTestDirectory(t), opts...), reg
}

func value(t *testing.T, reg *Registry, name string, kv ...string) float64 {
	t.Helper()
	v, ok := reg.Value(name, NewTags(kv...))
	require.True(t, ok, "series %s not found", Identity{Name: name, Tags: NewTags(kv...)})
	return v
}

func TestCatalogSkipsSpecializedTypes(t *testing.T) {
	for _, tc := range []struct {
		name string
		set  PolicySet
	}{
		{"minimal", MinimalPolicies()},
		{"full", FullPolicies()},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, reg := newTestListener(t, WithPolicySet(tc.set))
			want := len(keycloak.EventTypes()) - len(tc.set) + len(keycloak.OperationTypes())
			assert.Len(t, reg.CounterNames(), want)

			for _, typ := range tc.set.Types() {
				_, ok := reg.Lookup("keycloak_user_event_" + typ.String())
				assert.False(t, ok, typ)
			}
			c, ok := reg.Lookup("keycloak_admin_event_CREATE")
			require.True(t, ok)
			assert.Equal(t, GenericAdminHelp, c.Help())
			c, ok = reg.Lookup("keycloak_user_event_UPDATE_EMAIL")
			require.True(t, ok)
			assert.Equal(t, GenericUserHelp, c.Help())
		})
	}
	assert.Len(t, MinimalPolicies(), 3)
	assert.Len(t, FullPolicies(), 10)
}

func TestGenericEventsCountPerSeries(t *testing.T) {
	l, reg := newTestListener(t)

	updateEmail := &keycloak.Event{Type: keycloak.EventUpdateEmail, RealmID: "realm-1", ClientID: "C1"}
	l.OnEvent(updateEmail)
	l.OnEvent(updateEmail)
	assert.Equal(t, 2.0, value(t, reg, "keycloak_user_event_UPDATE_EMAIL", "realm", "R1", "client_id", "C1"))

	l.OnEvent(&keycloak.Event{Type: keycloak.EventRevokeGrant, RealmID: "realm-1", ClientID: "C1"})
	assert.Equal(t, 1.0, value(t, reg, "keycloak_user_event_REVOKE_GRANT", "realm", "R1", "client_id", "C1"))
	assert.Equal(t, 2.0, value(t, reg, "keycloak_user_event_UPDATE_EMAIL", "realm", "R1", "client_id", "C1"))
}

func TestAdminEventsCountPerSeries(t *testing.T) {
	l, reg := newTestListener(t)

	ev := &keycloak.AdminEvent{
		OperationType: keycloak.OperationAction,
		ResourceType:  keycloak.ResourceAuthorizationScope,
		RealmID:       "realm-1",
	}
	require.NoError(t, l.OnAdminEvent(ev))
	require.NoError(t, l.OnAdminEvent(ev))
	assert.Equal(t, 2.0, value(t, reg, "keycloak_admin_event_ACTION", "realm", "R1", "resource", "AUTHORIZATION_SCOPE"))
}

func TestAdminEventContractViolations(t *testing.T) {
	l, _ := newTestListener(t)

	require.NoError(t, l.OnAdminEvent(nil))
	err := l.OnAdminEvent(&keycloak.AdminEvent{OperationType: keycloak.OperationCreate, RealmID: "realm-1"})
	require.ErrorIs(t, err, ErrMissingResourceType)
	err = l.OnAdminEvent(&keycloak.AdminEvent{ResourceType: keycloak.ResourceUser})
	require.ErrorIs(t, err, ErrMissingOperationType)
}

func TestEventsWithoutTypeAreDropped(t *testing.T) {
	l, reg := newTestListener(t)

	l.OnEvent(nil)
	l.OnEvent(&keycloak.Event{})
	l.OnEvent(&keycloak.Event{RealmID: "realm-1", ClientID: "C1"})

	samples, err := reg.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, samples)
}

func TestMissingFieldsDefaultToEmpty(t *testing.T) {
	l, reg := newTestListener(t)

	l.OnEvent(&keycloak.Event{Type: keycloak.EventLogout})
	assert.Equal(t, 1.0, value(t, reg, "keycloak_user_event_LOGOUT", "realm", "", "client_id", ""))

	l.OnEvent(&keycloak.Event{Type: keycloak.EventLogout, RealmID: "unknown-realm"})
	assert.Equal(t, 2.0, value(t, reg, "keycloak_user_event_LOGOUT", "realm", "", "client_id", ""))

	l.OnEvent(&keycloak.Event{Type: keycloak.EventLoginError})
	assert.Equal(t, 1.0, value(t, reg, "keycloak_failed_login_attempts",
		"realm", "", "provider", "keycloak", "client_id", "", "error", ""))

	require.NoError(t, l.OnAdminEvent(&keycloak.AdminEvent{
		OperationType: keycloak.OperationDelete,
		ResourceType:  keycloak.ResourceUser,
	}))
	assert.Equal(t, 1.0, value(t, reg, "keycloak_admin_event_DELETE", "realm", "", "resource", "USER"))
}

func TestLoginSplit(t *testing.T) {
	l, reg := newTestListener(t)
	base := []string{"realm", "R1", "provider", "keycloak", "client_id", "C1"}

	l.OnEvent(&keycloak.Event{Type: keycloak.EventLogin, RealmID: "realm-1", ClientID: "C1"})
	assert.Equal(t, 1.0, value(t, reg, "keycloak_login_attempts", base...))
	assert.Equal(t, 1.0, value(t, reg, "keycloak_logins", base...))

	l.OnEvent(&keycloak.Event{
		Type:     keycloak.EventLoginError,
		RealmID:  "realm-1",
		ClientID: "C1",
		Error:    "invalid_user_credentials",
	})
	assert.Equal(t, 2.0, value(t, reg, "keycloak_login_attempts", base...))
	assert.Equal(t, 1.0, value(t, reg, "keycloak_logins", base...))
	assert.Equal(t, 1.0, value(t, reg, "keycloak_failed_login_attempts",
		append(base, "error", "invalid_user_credentials")...))

	_, ok := reg.Lookup("keycloak_user_event_LOGIN")
	assert.False(t, ok)
}

func TestProviderDefaulting(t *testing.T) {
	l, reg := newTestListener(t)

	l.OnEvent(&keycloak.Event{Type: keycloak.EventLogin, RealmID: "realm-1"})
	l.OnEvent(&keycloak.Event{
		Type:    keycloak.EventLogin,
		RealmID: "realm-1",
		Details: map[string]string{keycloak.DetailIdentityProvider: "github"},
	})

	assert.Equal(t, 1.0, value(t, reg, "keycloak_logins", "realm", "R1", "provider", "keycloak", "client_id", ""))
	assert.Equal(t, 1.0, value(t, reg, "keycloak_logins", "realm", "R1", "provider", "github", "client_id", ""))
}

func TestEmptyProviderDetailFallsBack(t *testing.T) {
	l, reg := newTestListener(t)
	l.OnEvent(&keycloak.Event{
		Type:    keycloak.EventLogin,
		RealmID: "realm-1",
		Details: map[string]string{keycloak.DetailIdentityProvider: ""},
	})
	assert.Equal(t, 1.0, value(t, reg, "keycloak_logins", "realm", "R1", "provider", "keycloak", "client_id", ""))
}

func TestConfiguredDefaultProvider(t *testing.T) {
	l, reg := newTestListener(t, WithDefaultProvider("internal"))
	l.OnEvent(&keycloak.Event{Type: keycloak.EventRegister})
	assert.Equal(t, 1.0, value(t, reg, "keycloak_registrations", "realm", "", "provider", "internal", "client_id", ""))
}

func TestRealmIsolation(t *testing.T) {
	l, reg := newTestListener(t)

	l.OnEvent(&keycloak.Event{Type: keycloak.EventLogin, RealmID: "realm-1"})
	l.OnEvent(&keycloak.Event{Type: keycloak.EventLogin, RealmID: "realm-2"})

	assert.Equal(t, 1.0, value(t, reg, "keycloak_logins", "realm", "R1", "provider", "keycloak", "client_id", ""))
	assert.Equal(t, 1.0, value(t, reg, "keycloak_logins", "realm", "R2", "provider", "keycloak", "client_id", ""))
}

func TestSpecializedPolicies(t *testing.T) {
	cases := []struct {
		typ       keycloak.EventType
		series    string
		withError bool
	}{
		{keycloak.EventRegister, "keycloak_registrations", false},
		{keycloak.EventRegisterError, "keycloak_registrations_errors", true},
		{keycloak.EventRefreshToken, "keycloak_refresh_tokens", false},
		{keycloak.EventRefreshTokenError, "keycloak_refresh_tokens_errors", true},
		{keycloak.EventClientLogin, "keycloak_client_logins", false},
		{keycloak.EventClientLoginError, "keycloak_failed_client_login_attempts", true},
		{keycloak.EventCodeToToken, "keycloak_code_to_tokens", false},
		{keycloak.EventCodeToTokenError, "keycloak_code_to_tokens_errors", true},
	}
	for _, tc := range cases {
		t.Run(tc.typ.String(), func(t *testing.T) {
			l, reg := newTestListener(t)
			l.OnEvent(&keycloak.Event{Type: tc.typ, RealmID: "realm-1", ClientID: "C1", Error: "boom"})

			kv := []string{"realm", "R1", "provider", "keycloak", "client_id", "C1"}
			if tc.withError {
				kv = append(kv, "error", "boom")
			}
			assert.Equal(t, 1.0, value(t, reg, tc.series, kv...))
			_, ok := reg.Lookup("keycloak_user_event_" + tc.typ.String())
			assert.False(t, ok)
		})
	}
}

func TestMinimalPolicySetRoutesOthersToGenericCounters(t *testing.T) {
	l, reg := newTestListener(t, WithPolicySet(MinimalPolicies()))

	l.OnEvent(&keycloak.Event{Type: keycloak.EventRegisterError, RealmID: "realm-1", Error: "x"})
	assert.Equal(t, 1.0, value(t, reg, "keycloak_user_event_REGISTER_ERROR", "realm", "R1", "client_id", ""))

	_, ok := reg.Lookup("keycloak_registrations_errors")
	assert.False(t, ok)
}

func TestSessionGauges(t *testing.T) {
	l, reg := newTestListener(t)

	ev := &keycloak.Event{Type: keycloak.EventType("UPDATE_PROFILE"), RealmID: "realm-1", ClientID: "C1"}
	l.OnEvent(ev)
	l.OnEvent(ev)

	assert.Equal(t, 3.0, value(t, reg, "keycloak_user_active_sessions_by_client", "realm", "R1", "client_id", "C1"))
	assert.Equal(t, 1.0, value(t, reg, "keycloak_user_active_offline_sessions_by_client", "realm", "R1", "client_id", "C1"))

	n, err := testutil.GatherAndCount(reg, "keycloak_user_active_sessions_by_client")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	l.OnEvent(&keycloak.Event{Type: keycloak.EventLogout, RealmID: "realm-2", ClientID: "ghost"})
	assert.Equal(t, 0.0, value(t, reg, "keycloak_user_active_sessions_by_client", "realm", "R2", "client_id", "ghost"))

	l.OnEvent(&keycloak.Event{Type: keycloak.EventLogout, ClientID: "C1"})
	assert.Equal(t, 0.0, value(t, reg, "keycloak_user_active_sessions_by_client", "realm", "", "client_id", "C1"))
}

func TestNoSessionProvider(t *testing.T) {
	reg := NewRegistry()
	l := NewListener(reg, nil, WithLogger(quietLogger()))

	l.OnEvent(&keycloak.Event{Type: keycloak.EventLogin, RealmID: "realm-1", ClientID: "C1"})
	assert.Equal(t, 1.0, value(t, reg, "keycloak_logins", "realm", "", "provider", "keycloak", "client_id", "C1"))
	assert.Empty(t, reg.GaugeNames())
}

func TestNamespaceOption(t *testing.T) {
	l, reg := newTestListener(t, WithNamespace("idp"))
	l.OnEvent(&keycloak.Event{Type: keycloak.EventLogout})
	l.OnEvent(&keycloak.Event{Type: keycloak.EventLogin})

	assert.Equal(t, 1.0, value(t, reg, "idp_user_event_LOGOUT", "realm", "", "client_id", ""))
	assert.Equal(t, 1.0, value(t, reg, "idp_logins", "realm", "", "provider", "keycloak", "client_id", ""))
	assert.Equal(t, "idp_user_active_sessions_by_client", l.Names().ActiveSessions())
}

func TestIncrementFailuresAreDropped(t *testing.T) {
	l, reg := newTestListener(t)
	require.NoError(t, reg.IncrementCounter("keycloak_user_event_LOGOUT", NewTags("unexpected", "x")))

	assert.NotPanics(t, func() {
		l.OnEvent(&keycloak.Event{Type: keycloak.EventLogout, RealmID: "realm-1"})
	})
	_, ok := reg.Value("keycloak_user_event_LOGOUT", NewTags("realm", "R1", "client_id", ""))
	assert.False(t, ok)
}

func TestConcurrentEvents(t *testing.T) {
	l, reg := newTestListener(t)
	const workers, perWorker = 16, 50

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				l.OnEvent(&keycloak.Event{Type: keycloak.EventLogin, RealmID: "realm-1", ClientID: "C1"})
				l.OnEvent(&keycloak.Event{Type: keycloak.EventLogout, RealmID: "realm-1", ClientID: "C1"})
			}
		}()
	}
	wg.Wait()

	total := float64(workers * perWorker)
	assert.Equal(t, total, value(t, reg, "keycloak_logins", "realm", "R1", "provider", "keycloak", "client_id", "C1"))
	assert.Equal(t, total, value(t, reg, "keycloak_user_event_LOGOUT", "realm", "R1", "client_id", "C1"))
}

func TestTypesOutsideMetricCharsetAreDropped(t *testing.T) {
	l, reg := newTestListener(t)
	before := len(reg.CounterNames())

	l.OnEvent(&keycloak.Event{Type: "not-a-name", RealmID: "realm-1"})
	err := l.OnAdminEvent(&keycloak.AdminEvent{OperationType: "bad op", ResourceType: keycloak.ResourceUser, RealmID: "realm-1"})
	require.ErrorIs(t, err, ErrInvalidOperationType)
	assert.Len(t, reg.CounterNames(), before)

	// Unknown but well-formed types still get a counter on first sight.
	l.OnEvent(&keycloak.Event{Type: "FUTURE_EVENT", RealmID: "realm-1"})
	require.NoError(t, l.OnAdminEvent(&keycloak.AdminEvent{OperationType: "ARCHIVE", ResourceType: keycloak.ResourceUser, RealmID: "realm-1"}))
	assert.Equal(t, 1.0, value(t, reg, "keycloak_user_event_FUTURE_EVENT", "realm", "R1", "client_id", ""))
	assert.Equal(t, 1.0, value(t, reg, "keycloak_admin_event_ARCHIVE", "realm", "R1", "resource", "USER"))

	var out strings.Builder
	require.NoError(t, NewExporter(reg.Prometheus()).WriteExposition(&out))
	assert.NotContains(t, out.String(), "not-a-name")
	assert.NotContains(t, out.String(), "bad op")
	assert.NotContains(t, out.String(), `{"`)
	assert.Contains(t, out.String(), "keycloak_user_event_FUTURE_EVENT{")
}

func TestNonPositiveLookupTimeoutKeepsDefault(t *testing.T) {
	l, reg := newTestListener(t, WithLookupTimeout(-time.Second))
	assert.Equal(t, directory.DefaultLookupTimeout, l.lookupTimeout)

	l.OnEvent(&keycloak.Event{Type: keycloak.EventUpdateEmail, RealmID: "realm-1", ClientID: "C1"})
	assert.Equal(t, 3.0, value(t, reg, "keycloak_user_active_sessions_by_client", "realm", "R1", "client_id", "C1"))
	assert.Equal(t, 1.0, value(t, reg, "keycloak_user_active_offline_sessions_by_client", "realm", "R1", "client_id", "C1"))
}
