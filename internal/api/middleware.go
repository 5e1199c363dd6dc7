package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	merrors "git.home.luguber.info/inful/eventmetrics/internal/errors"
	"git.home.luguber.info/inful/eventmetrics/internal/logfields"
)

// RequestLogger logs method, path, status and duration of every request.
// Scrapes are logged at debug level.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			level := slog.LevelInfo
			if r.Method == http.MethodGet {
				level = slog.LevelDebug
			}
			attrs := append(requestAttrs(r),
				logfields.Status(ww.Status()),
				logfields.DurationMS(float64(time.Since(start).Microseconds())/1000),
				logfields.RemoteAddr(r.RemoteAddr))
			logger.Log(r.Context(), level, "HTTP request", attrs...)
		})
	}
}

// Recoverer turns handler panics into a structured 500 response.
func Recoverer(logger *slog.Logger, adapter *merrors.HTTPErrorAdapter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("HTTP handler panic", append(requestAttrs(r), slog.Any("panic", rec))...)
				err := merrors.New(merrors.CategoryInternal, merrors.SeverityError, "internal server error").
					WithContext("path", r.URL.Path)
				adapter.WriteErrorResponse(w, r, err)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
