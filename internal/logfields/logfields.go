package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRealm      = "realm"
	KeyRealmID    = "realm_id"
	KeyClientID   = "client_id"
	KeyEventID    = "event_id"
	KeyEventType  = "event_type"
	KeyOperation  = "operation_type"
	KeyResource   = "resource_type"
	KeyMetric     = "metric"
	KeyProvider   = "provider"
	KeySubject    = "subject"
	KeyStream     = "stream"
	KeyGateway    = "gateway"
	KeyJob        = "job"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyRequestID  = "request_id"
	KeyRemoteAddr = "remote_addr"
	KeyDurationMS = "duration_ms"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Realm(name string) slog.Attr     { return slog.String(KeyRealm, name) }
func RealmID(id string) slog.Attr     { return slog.String(KeyRealmID, id) }
func ClientID(id string) slog.Attr    { return slog.String(KeyClientID, id) }
func EventID(id string) slog.Attr     { return slog.String(KeyEventID, id) }
func EventType(t string) slog.Attr    { return slog.String(KeyEventType, t) }
func Operation(op string) slog.Attr   { return slog.String(KeyOperation, op) }
func Resource(r string) slog.Attr     { return slog.String(KeyResource, r) }
func Metric(name string) slog.Attr    { return slog.String(KeyMetric, name) }
func Provider(p string) slog.Attr     { return slog.String(KeyProvider, p) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func Stream(s string) slog.Attr       { return slog.String(KeyStream, s) }
func Gateway(url string) slog.Attr    { return slog.String(KeyGateway, url) }
func Job(name string) slog.Attr       { return slog.String(KeyJob, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func RequestID(id string) slog.Attr   { return slog.String(KeyRequestID, id) }
func RemoteAddr(a string) slog.Attr   { return slog.String(KeyRemoteAddr, a) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
