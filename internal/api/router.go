package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the full corkboard router: the JSON API under /api, the
// application shell for the root and for well-formed board addresses, and
// static assets for everything else.
//
// The shell routing matters to the sync engine: a top-level segment that
// looks like a board identifier must reach the shell (which hands the
// segment to the engine) instead of 404ing, whether or not such a board
// exists.
func NewRouter(h *Handler, sseHandler http.Handler, staticDir string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/", h.CreateBoard)
		r.Get("/health", h.Health)
		if sseHandler != nil {
			r.Get("/events", sseHandler.ServeHTTP)
		}
		r.Get("/{boardID}", h.GetBoard)
		r.Put("/{boardID}", h.ReplaceBoard)
		r.Delete("/{boardID}", h.RemoveBoard)
	})

	shell := NewShellHandler(staticDir)
	r.Get("/", shell.ServeShell)
	r.Get("/{boardID:[a-z0-9]{8}}", shell.ServeShell)
	r.Get("/*", shell.ServeStatic)

	r.NotFound(NotFoundHandler)
	r.MethodNotAllowed(NotFoundHandler)

	return r
}
