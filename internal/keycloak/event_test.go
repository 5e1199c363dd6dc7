package keycloak

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	ev, err := DecodeEvent(strings.NewReader(`{
		"type": "LOGIN",
		"realmId": "r-1",
		"clientId": "account",
		"details": {"identity_provider": "github"}
	}`))
	require.NoError(t, err)
	assert.Equal(t, EventLogin, ev.Type)
	assert.Equal(t, "r-1", ev.RealmID)
	assert.Equal(t, "account", ev.ClientID)
	assert.Equal(t, "github", ev.Detail(DetailIdentityProvider))
	assert.NotEmpty(t, ev.ID)
	assert.NotZero(t, ev.Time)
}

func TestDecodeEventKeepsGivenIdentity(t *testing.T) {
	ev, err := DecodeEvent(strings.NewReader(`{"id":"e-1","time":1700000000000,"type":"LOGOUT"}`))
	require.NoError(t, err)
	assert.Equal(t, "e-1", ev.ID)
	assert.EqualValues(t, 1700000000000, ev.Time)
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	_, err := DecodeEvent(strings.NewReader(`{"type":`))
	require.Error(t, err)
}

func TestDetailOnNilEvent(t *testing.T) {
	var ev *Event
	assert.Equal(t, "", ev.Detail("x"))
	assert.Equal(t, "", (&Event{}).Detail("x"))
}

func TestDecodeLine(t *testing.T) {
	user, admin, err := DecodeLine([]byte(`{"type":"UPDATE_EMAIL","realmId":"r"}`))
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Nil(t, admin)
	assert.Equal(t, EventUpdateEmail, user.Type)

	user, admin, err = DecodeLine([]byte(`{"operationType":"ACTION","resourceType":"AUTHORIZATION_SCOPE","realmId":"r"}`))
	require.NoError(t, err)
	assert.Nil(t, user)
	require.NotNil(t, admin)
	assert.Equal(t, OperationAction, admin.OperationType)
	assert.Equal(t, ResourceAuthorizationScope, admin.ResourceType)

	_, admin, err = DecodeLine([]byte(`{"operationType":"CREATE"}`))
	require.NoError(t, err)
	assert.Equal(t, ResourceType(""), admin.ResourceType)

	_, _, err = DecodeLine([]byte(`not json`))
	require.Error(t, err)
}

func TestEnumTables(t *testing.T) {
	types := EventTypes()
	assert.Contains(t, types, EventLogin)
	assert.Contains(t, types, EventRevokeGrant)
	assert.True(t, EventCodeToTokenError.Known())
	assert.False(t, EventType("NOPE").Known())

	types[0] = "MUTATED"
	assert.Equal(t, EventLogin, EventTypes()[0])

	assert.Len(t, OperationTypes(), 4)
	assert.True(t, ResourceAuthorizationScope.Known())
	assert.True(t, OperationAction.Known())
	assert.Equal(t, "ACTION", OperationAction.String())
}
