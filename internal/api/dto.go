package api

import "github.com/mtaverne/corkboard/internal/store"

// RemoveResponse is returned after a successful board removal.
type RemoveResponse struct {
	Message    string `json:"message"`
	ID         string `json:"id"`
	NotesCount int    `json:"notesCount"`
}

// HealthResponse wraps store diagnostics for GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
	store.Diagnostics
}
