package server

import (
	"context"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/google/uuid"

	"vehicle-tracking-backend/internal/httpapi"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// RequestID assigns a request id to each inbound request (or propagates the
// client-provided X-Request-ID) and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		rw.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(rw, r.WithContext(ctx))
	})
}

// GetRequestID returns the request id from ctx, or "" when absent.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Recover catches handler panics, logs the input summary and stack, and
// converts them to a generic 500 so internal state never leaks to the caller.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic handling %s %s (request_id=%s): %v\n%s",
					r.Method, r.URL.Path, GetRequestID(r.Context()), rec, debug.Stack())
				httpapi.InternalError(rw, "internal server error")
			}
		}()
		next.ServeHTTP(rw, r)
	})
}
