// Package middleware holds the HTTP middleware and JSON response helpers of the API.
package middleware

import (
	"context"
	"encoding/json"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/berlinbruno/money-trail/internal/logger"
)

const (
	HeaderRequestID = "X-Request-ID"
	// HeaderSyncRunID carries the run id of an on-demand sync.
	HeaderSyncRunID = "X-Sync-Run-ID"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	requestLogKey
)

// requestLog collects what the access log line needs from inside the router.
type requestLog struct {
	mu     sync.Mutex
	route  string
	fields map[string]string
}

func requestLogFrom(ctx context.Context) *requestLog {
	rl, _ := ctx.Value(requestLogKey).(*requestLog)
	return rl
}

// Annotate adds key=value to the access log line of the request in ctx.
// Outside AccessLog it does nothing.
func Annotate(ctx context.Context, key, value string) {
	rl := requestLogFrom(ctx)
	if rl == nil {
		return
	}
	rl.mu.Lock()
	rl.fields[key] = value
	rl.mu.Unlock()
}

// Route records the matched path template, e.g. /api/transactions/{id}, so
// that requests for different ids log under one route. Register with Router.Use.
func Route(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl := requestLogFrom(r.Context()); rl != nil {
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					rl.mu.Lock()
					rl.route = tpl
					rl.mu.Unlock()
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// AccessLog writes one line per request and puts a request-scoped logger into
// the context. Server errors log at error level, client errors at warn.
func AccessLog(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			rl := &requestLog{fields: map[string]string{}}

			reqLog := log.With().Str("request_id", RequestIDFromContext(r.Context())).Logger()
			ctx := logger.WithContext(r.Context(), reqLog)
			ctx = context.WithValue(ctx, requestLogKey, rl)
			next.ServeHTTP(rec, r.WithContext(ctx))

			var ev *zerolog.Event
			switch {
			case rec.status >= http.StatusInternalServerError:
				ev = reqLog.Error()
			case rec.status >= http.StatusBadRequest:
				ev = reqLog.Warn()
			default:
				ev = reqLog.Info()
			}
			ev = ev.Str("method", r.Method).Str("path", r.URL.Path)

			rl.mu.Lock()
			if rl.route != "" {
				ev = ev.Str("route", rl.route)
			}
			for _, k := range slices.Sorted(maps.Keys(rl.fields)) {
				ev = ev.Str(k, rl.fields[k])
			}
			rl.mu.Unlock()

			ev.Int("status", rec.status).
				Int("bytes", rec.bytes).
				Dur("duration", time.Since(start)).
				Msg("api request")
		})
	}
}

// CORS allows browser dashboards on other origins to call the API and read the
// id headers.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, "+HeaderRequestID)
		h.Set("Access-Control-Expose-Headers", HeaderRequestID+", "+HeaderSyncRunID)
		h.Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Recovery turns a handler panic into a 500 JSON error.
func Recovery(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					log.Error().
						Interface("panic", v).
						Str("request_id", RequestIDFromContext(r.Context())).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Msg("handler panicked")
					WriteError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequestID echoes the caller's X-Request-ID or assigns a uuid.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// RequestIDFromContext returns the id set by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// WriteJSON writes data as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteError writes {"error": message}.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}
