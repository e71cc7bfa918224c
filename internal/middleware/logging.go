// Package middleware holds the request logging and panic recovery shared by
// the API and web surfaces
package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

// StatusRecorder captures the status code and body size of a response
type StatusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

// NewStatusRecorder wraps w; the status defaults to 200 until written
func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	return &StatusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (rw *StatusRecorder) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *StatusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// Flush passes through so event streams still reach the client
func (rw *StatusRecorder) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController
func (rw *StatusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Logging logs one line per request once it completes. Server errors log at
// Error, client errors at Warn and health checks at Debug. Requests on a game
// route carry its id, and event streams are logged when the watcher leaves.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := NewStatusRecorder(w)

			next.ServeHTTP(rec, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Int("size", rec.size),
				slog.Duration("duration", time.Since(start)),
			}
			if id := GameID(r); id != "" {
				attrs = append(attrs, slog.String("game_id", id))
			}

			msg := "http request"
			if isStream(rec) {
				msg = "event stream closed"
			}
			logger.LogAttrs(r.Context(), levelFor(r, rec.status), msg, attrs...)
		})
	}
}

// GameID returns the game id routed for r, or "" off game routes
func GameID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

func levelFor(r *http.Request, status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	case strings.HasSuffix(r.URL.Path, "/health"):
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

func isStream(rec *StatusRecorder) bool {
	return strings.HasPrefix(rec.Header().Get("Content-Type"), "text/event-stream")
}
