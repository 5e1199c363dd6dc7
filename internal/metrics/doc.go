// Package metrics turns identity platform events into Prometheus series.
//
// A Registry owns every counter and gauge. Definitions are created lazily,
// at most once per name, and their label keys are fixed by the first
// observation. A Listener translates user and admin events into registry
// updates:
//
//	reg := metrics.NewRegistry()
//	l := metrics.NewListener(reg, session)
//	l.OnEvent(ev)
//
// Most user event types feed a generic counter named
// <namespace>_user_event_<TYPE> tagged with realm and client_id.
// Authentication flow events (login, registration, token refresh, code
// exchange, client login) feed specialized series that also carry the
// identity provider, and error variants carry the error code. Admin events
// feed <namespace>_admin_event_<OPERATION> tagged with realm and resource.
//
// Events carrying a client id additionally bind two callback gauges that
// count that client's online and offline sessions at scrape time.
//
// Exporter renders the registry in the text exposition format and Pusher
// sends it to a push gateway.
package metrics
