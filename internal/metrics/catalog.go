package metrics

import (
	"git.home.luguber.info/inful/eventmetrics/internal/keycloak"
)

// DefaultNamespace prefixes every series emitted for the identity platform.
const DefaultNamespace = "keycloak"

// Names derives metric names inside a namespace.
type Names struct {
	Namespace string
}

// UserEvent returns the generic counter name for a user event type.
func (n Names) UserEvent(t keycloak.EventType) string {
	return n.Series("user_event_" + string(t))
}

// AdminEvent returns the generic counter name for an admin operation.
func (n Names) AdminEvent(op keycloak.OperationType) string {
	return n.Series("admin_event_" + string(op))
}

// ActiveSessions is the gauge of online sessions per client.
func (n Names) ActiveSessions() string { return n.Series("user_active_sessions_by_client") }

// OfflineSessions is the gauge of offline sessions per client.
func (n Names) OfflineSessions() string {
	return n.Series("user_active_offline_sessions_by_client")
}

// Series joins suffix onto the namespace.
func (n Names) Series(suffix string) string {
	if n.Namespace == "" {
		return suffix
	}
	return n.Namespace + "_" + suffix
}

// CatalogEntry is a counter pre-created at listener construction.
type CatalogEntry struct {
	Name string
	Help string
}

// BuildCatalog lists one generic counter per user event type outside the
// specialized set, followed by one per admin operation type.
func BuildCatalog(names Names, specialized PolicySet) []CatalogEntry {
	var entries []CatalogEntry
	for _, t := range keycloak.EventTypes() {
		if specialized.Has(t) {
			continue
		}
		entries = append(entries, CatalogEntry{Name: names.UserEvent(t), Help: GenericUserHelp})
	}
	for _, op := range keycloak.OperationTypes() {
		entries = append(entries, CatalogEntry{Name: names.AdminEvent(op), Help: GenericAdminHelp})
	}
	return entries
}
