package keycloak

// EventType enumerates user event kinds. The zero value means "no type".
type EventType string

// OperationType enumerates admin operations.
type OperationType string

// ResourceType enumerates resources targeted by admin operations.
type ResourceType string

const (
	EventLogin             EventType = "LOGIN"
	EventLoginError        EventType = "LOGIN_ERROR"
	EventRegister          EventType = "REGISTER"
	EventRegisterError     EventType = "REGISTER_ERROR"
	EventLogout            EventType = "LOGOUT"
	EventLogoutError       EventType = "LOGOUT_ERROR"
	EventCodeToToken       EventType = "CODE_TO_TOKEN"
	EventCodeToTokenError  EventType = "CODE_TO_TOKEN_ERROR"
	EventClientLogin       EventType = "CLIENT_LOGIN"
	EventClientLoginError  EventType = "CLIENT_LOGIN_ERROR"
	EventRefreshToken      EventType = "REFRESH_TOKEN"
	EventRefreshTokenError EventType = "REFRESH_TOKEN_ERROR"
	EventUpdateEmail       EventType = "UPDATE_EMAIL"
	EventRevokeGrant       EventType = "REVOKE_GRANT"
)

const (
	OperationCreate OperationType = "CREATE"
	OperationUpdate OperationType = "UPDATE"
	OperationDelete OperationType = "DELETE"
	OperationAction OperationType = "ACTION"
)

const (
	ResourceRealm              ResourceType = "REALM"
	ResourceUser               ResourceType = "USER"
	ResourceClient             ResourceType = "CLIENT"
	ResourceGroup              ResourceType = "GROUP"
	ResourceAuthorizationScope ResourceType = "AUTHORIZATION_SCOPE"
)

// eventTypes is the closed set of user event kinds, in declaration order.
var eventTypes = []EventType{
	"LOGIN", "LOGIN_ERROR",
	"REGISTER", "REGISTER_ERROR",
	"LOGOUT", "LOGOUT_ERROR",
	"CODE_TO_TOKEN", "CODE_TO_TOKEN_ERROR",
	"CLIENT_LOGIN", "CLIENT_LOGIN_ERROR",
	"REFRESH_TOKEN", "REFRESH_TOKEN_ERROR",
	"VALIDATE_ACCESS_TOKEN", "VALIDATE_ACCESS_TOKEN_ERROR",
	"INTROSPECT_TOKEN", "INTROSPECT_TOKEN_ERROR",
	"FEDERATED_IDENTITY_LINK", "FEDERATED_IDENTITY_LINK_ERROR",
	"REMOVE_FEDERATED_IDENTITY", "REMOVE_FEDERATED_IDENTITY_ERROR",
	"UPDATE_EMAIL", "UPDATE_EMAIL_ERROR",
	"UPDATE_PROFILE", "UPDATE_PROFILE_ERROR",
	"UPDATE_PASSWORD", "UPDATE_PASSWORD_ERROR",
	"UPDATE_TOTP", "UPDATE_TOTP_ERROR",
	"UPDATE_CREDENTIAL", "UPDATE_CREDENTIAL_ERROR",
	"VERIFY_EMAIL", "VERIFY_EMAIL_ERROR",
	"VERIFY_PROFILE", "VERIFY_PROFILE_ERROR",
	"REMOVE_TOTP", "REMOVE_TOTP_ERROR",
	"REMOVE_CREDENTIAL", "REMOVE_CREDENTIAL_ERROR",
	"GRANT_CONSENT", "GRANT_CONSENT_ERROR",
	"UPDATE_CONSENT", "UPDATE_CONSENT_ERROR",
	"REVOKE_GRANT", "REVOKE_GRANT_ERROR",
	"SEND_VERIFY_EMAIL", "SEND_VERIFY_EMAIL_ERROR",
	"SEND_RESET_PASSWORD", "SEND_RESET_PASSWORD_ERROR",
	"SEND_IDENTITY_PROVIDER_LINK", "SEND_IDENTITY_PROVIDER_LINK_ERROR",
	"RESET_PASSWORD", "RESET_PASSWORD_ERROR",
	"RESTART_AUTHENTICATION", "RESTART_AUTHENTICATION_ERROR",
	"INVALID_SIGNATURE", "INVALID_SIGNATURE_ERROR",
	"REGISTER_NODE", "REGISTER_NODE_ERROR",
	"UNREGISTER_NODE", "UNREGISTER_NODE_ERROR",
	"USER_INFO_REQUEST", "USER_INFO_REQUEST_ERROR",
	"IDENTITY_PROVIDER_LINK_ACCOUNT", "IDENTITY_PROVIDER_LINK_ACCOUNT_ERROR",
	"IDENTITY_PROVIDER_LOGIN", "IDENTITY_PROVIDER_LOGIN_ERROR",
	"IDENTITY_PROVIDER_FIRST_LOGIN", "IDENTITY_PROVIDER_FIRST_LOGIN_ERROR",
	"IDENTITY_PROVIDER_POST_LOGIN", "IDENTITY_PROVIDER_POST_LOGIN_ERROR",
	"IDENTITY_PROVIDER_RESPONSE", "IDENTITY_PROVIDER_RESPONSE_ERROR",
	"IDENTITY_PROVIDER_RETRIEVE_TOKEN", "IDENTITY_PROVIDER_RETRIEVE_TOKEN_ERROR",
	"IMPERSONATE", "IMPERSONATE_ERROR",
	"CUSTOM_REQUIRED_ACTION", "CUSTOM_REQUIRED_ACTION_ERROR",
	"EXECUTE_ACTIONS", "EXECUTE_ACTIONS_ERROR",
	"EXECUTE_ACTION_TOKEN", "EXECUTE_ACTION_TOKEN_ERROR",
	"CLIENT_INFO", "CLIENT_INFO_ERROR",
	"CLIENT_REGISTER", "CLIENT_REGISTER_ERROR",
	"CLIENT_UPDATE", "CLIENT_UPDATE_ERROR",
	"CLIENT_DELETE", "CLIENT_DELETE_ERROR",
	"CLIENT_INITIATED_ACCOUNT_LINKING", "CLIENT_INITIATED_ACCOUNT_LINKING_ERROR",
	"TOKEN_EXCHANGE", "TOKEN_EXCHANGE_ERROR",
	"OAUTH2_DEVICE_AUTH", "OAUTH2_DEVICE_AUTH_ERROR",
	"OAUTH2_DEVICE_VERIFY_USER_CODE", "OAUTH2_DEVICE_VERIFY_USER_CODE_ERROR",
	"OAUTH2_DEVICE_CODE_TO_TOKEN", "OAUTH2_DEVICE_CODE_TO_TOKEN_ERROR",
	"AUTHREQID_TO_TOKEN", "AUTHREQID_TO_TOKEN_ERROR",
	"PERMISSION_TOKEN", "PERMISSION_TOKEN_ERROR",
	"DELETE_ACCOUNT", "DELETE_ACCOUNT_ERROR",
	"PUSHED_AUTHORIZATION_REQUEST", "PUSHED_AUTHORIZATION_REQUEST_ERROR",
	"USER_DISABLED_BY_PERMANENT_LOCKOUT", "USER_DISABLED_BY_TEMPORARY_LOCKOUT",
	"OAUTH2_EXTENSION_GRANT", "OAUTH2_EXTENSION_GRANT_ERROR",
	"FEDERATED_IDENTITY_OVERRIDE_LINK", "FEDERATED_IDENTITY_OVERRIDE_LINK_ERROR",
	"INVITE_ORG", "INVITE_ORG_ERROR",
}

var operationTypes = []OperationType{OperationCreate, OperationUpdate, OperationDelete, OperationAction}

var resourceTypes = []ResourceType{
	"REALM", "REALM_ROLE", "REALM_ROLE_MAPPING", "REALM_SCOPE_MAPPING",
	"AUTH_FLOW", "AUTH_EXECUTION_FLOW", "AUTH_EXECUTION", "AUTHENTICATOR_CONFIG",
	"REQUIRED_ACTION", "IDENTITY_PROVIDER", "IDENTITY_PROVIDER_MAPPER",
	"PROTOCOL_MAPPER", "USER", "USER_LOGIN_FAILURE", "USER_SESSION",
	"USER_FEDERATION_PROVIDER", "USER_FEDERATION_MAPPER", "GROUP", "GROUP_MEMBERSHIP",
	"CLIENT", "CLIENT_INITIAL_ACCESS_MODEL", "CLIENT_ROLE", "CLIENT_ROLE_MAPPING",
	"CLIENT_SCOPE", "CLIENT_SCOPE_MAPPING", "CLIENT_SCOPE_CLIENT_MAPPING",
	"CLUSTER_NODE", "COMPONENT", "AUTHORIZATION_RESOURCE_SERVER",
	"AUTHORIZATION_RESOURCE", "AUTHORIZATION_SCOPE", "AUTHORIZATION_POLICY",
	"CUSTOM", "USER_PROFILE", "ORGANIZATION", "ORGANIZATION_MEMBERSHIP",
}

var (
	eventTypeSet     = setOf(eventTypes)
	operationTypeSet = setOf(operationTypes)
	resourceTypeSet  = setOf(resourceTypes)
)

func setOf[T comparable](values []T) map[T]struct{} {
	m := make(map[T]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

// EventTypes returns every known user event kind. The slice is a copy.
func EventTypes() []EventType { return append([]EventType(nil), eventTypes...) }

// OperationTypes returns every known admin operation.
func OperationTypes() []OperationType { return append([]OperationType(nil), operationTypes...) }

// ResourceTypes returns every known admin resource type.
func ResourceTypes() []ResourceType { return append([]ResourceType(nil), resourceTypes...) }

func (t EventType) String() string     { return string(t) }
func (t OperationType) String() string { return string(t) }
func (t ResourceType) String() string  { return string(t) }

// Known reports whether t belongs to the closed event type set.
func (t EventType) Known() bool {
	_, ok := eventTypeSet[t]
	return ok
}

// Known reports whether t belongs to the closed operation set.
func (t OperationType) Known() bool {
	_, ok := operationTypeSet[t]
	return ok
}

// Known reports whether t belongs to the closed resource set.
func (t ResourceType) Known() bool {
	_, ok := resourceTypeSet[t]
	return ok
}
