// Package api implements the corkboard REST API using chi.
package api

import (
	"log/slog"
	"net/http"
)

// Recoverer converts panics into a structured 500 response so one broken
// request never takes the process down with it.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.Error("panic while serving request",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec))
				writeJSON(w, http.StatusInternalServerError, errorBody("Something went wrong!"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// NotFoundHandler is the structured fallback for addresses nothing else
// claims.
func NotFoundHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorBody("Endpoint not found"))
}
