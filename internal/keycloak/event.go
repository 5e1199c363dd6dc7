// Package keycloak models the events and lookup capabilities exposed by the
// identity platform. Values here are consumed read-only by the metrics engine.
package keycloak

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// DetailIdentityProvider is the event detail key carrying the brokered provider alias.
const DetailIdentityProvider = "identity_provider"

// Event is a user-facing authentication or lifecycle event.
// Empty strings stand for absent fields.
type Event struct {
	ID        string            `json:"id,omitempty"`
	Time      int64             `json:"time,omitempty"`
	Type      EventType         `json:"type,omitempty"`
	RealmID   string            `json:"realmId,omitempty"`
	ClientID  string            `json:"clientId,omitempty"`
	UserID    string            `json:"userId,omitempty"`
	SessionID string            `json:"sessionId,omitempty"`
	IPAddress string            `json:"ipAddress,omitempty"`
	Error     string            `json:"error,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// Detail returns the detail value for key, or "" when absent.
func (e *Event) Detail(key string) string {
	if e == nil || e.Details == nil {
		return ""
	}
	return e.Details[key]
}

// AuthDetails identifies who performed an administrative operation.
type AuthDetails struct {
	RealmID   string `json:"realmId,omitempty"`
	ClientID  string `json:"clientId,omitempty"`
	UserID    string `json:"userId,omitempty"`
	IPAddress string `json:"ipAddress,omitempty"`
}

// AdminEvent is an administrative operation on a realm resource.
type AdminEvent struct {
	ID            string        `json:"id,omitempty"`
	Time          int64         `json:"time,omitempty"`
	RealmID       string        `json:"realmId,omitempty"`
	AuthDetails   *AuthDetails  `json:"authDetails,omitempty"`
	OperationType OperationType `json:"operationType,omitempty"`
	ResourceType  ResourceType  `json:"resourceType,omitempty"`
	ResourcePath  string        `json:"resourcePath,omitempty"`
	Error         string        `json:"error,omitempty"`
}

// DecodeEvent reads a single JSON encoded user event. Missing IDs and
// timestamps are filled in so downstream logs can correlate the event.
func DecodeEvent(r io.Reader) (*Event, error) {
	var ev Event
	if err := json.NewDecoder(r).Decode(&ev); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	stamp(&ev.ID, &ev.Time)
	return &ev, nil
}

// DecodeAdminEvent reads a single JSON encoded admin event.
func DecodeAdminEvent(r io.Reader) (*AdminEvent, error) {
	var ev AdminEvent
	if err := json.NewDecoder(r).Decode(&ev); err != nil {
		return nil, fmt.Errorf("decode admin event: %w", err)
	}
	stamp(&ev.ID, &ev.Time)
	return &ev, nil
}

func stamp(id *string, ts *int64) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if *ts == 0 {
		*ts = time.Now().UnixMilli()
	}
}

// DecodeLine decodes one line of a mixed event log. Lines carrying an
// operationType or resourceType are admin events; all others are user events.
// Exactly one of the returned events is non-nil when err is nil.
func DecodeLine(line []byte) (*Event, *AdminEvent, error) {
	var probe struct {
		OperationType *string `json:"operationType"`
		ResourceType  *string `json:"resourceType"`
	}
	if err := json.Unmarshal(line, &probe); err != nil {
		return nil, nil, fmt.Errorf("decode event line: %w", err)
	}
	if probe.OperationType != nil || probe.ResourceType != nil {
		ev, err := DecodeAdminEvent(bytes.NewReader(line))
		return nil, ev, err
	}
	ev, err := DecodeEvent(bytes.NewReader(line))
	return ev, nil, err
}
