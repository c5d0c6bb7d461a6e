package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mtaverne/corkboard/internal/apperr"
	"github.com/mtaverne/corkboard/internal/board"
	"github.com/mtaverne/corkboard/internal/store"
)

// maxBodyBytes caps board payloads. Notes are short text; anything near the
// cap is abuse, not a board.
const maxBodyBytes = 1 << 20

// BoardEvents receives board lifecycle notifications after successful
// mutations. kind is one of "created", "updated", "deleted".
type BoardEvents interface {
	PublishBoardEvent(kind, id string)
}

// Handler holds API route handlers.
type Handler struct {
	store  store.BoardStore
	events BoardEvents
}

// NewHandler creates a new Handler. events may be nil.
func NewHandler(s store.BoardStore, events BoardEvents) *Handler {
	return &Handler{store: s, events: events}
}

func (h *Handler) publish(kind, id string) {
	if h.events != nil {
		h.events.PublishBoardEvent(kind, id)
	}
}

// decodeNotes reads the request body as a JSON array of notes. Anything
// else (object, scalar, invalid JSON) is a validation failure.
func decodeNotes(w http.ResponseWriter, r *http.Request) ([]board.Note, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var notes []board.Note
	if err := json.NewDecoder(r.Body).Decode(&notes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("notes must be a non-empty array"))
		return nil, false
	}
	return notes, true
}

// writeStoreError maps store errors onto the wire taxonomy: validation
// failures are 400, missing boards 404, everything else 500.
func writeStoreError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody("notes must be a non-empty array"))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("Board not found"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("Something went wrong!"))
	}
}

// CreateBoard handles POST /api/.
func (h *Handler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	notes, ok := decodeNotes(w, r)
	if !ok {
		return
	}
	rec, err := h.store.Create(notes)
	if err != nil {
		writeStoreError(w, "create board", err)
		return
	}
	slog.Info("board created", slog.String("id", rec.ID), slog.Int("notes", len(rec.Notes)))
	h.publish("created", rec.ID)
	writeJSON(w, http.StatusCreated, rec)
}

// GetBoard handles GET /api/{boardID}.
func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "boardID")
	rec, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			writeJSON(w, http.StatusBadRequest, errorBody("Invalid board id"))
			return
		}
		writeStoreError(w, "get board", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// ReplaceBoard handles PUT /api/{boardID}.
func (h *Handler) ReplaceBoard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "boardID")
	notes, ok := decodeNotes(w, r)
	if !ok {
		return
	}
	rec, err := h.store.Replace(id, notes)
	if err != nil {
		writeStoreError(w, "replace board", err)
		return
	}
	h.publish("updated", rec.ID)
	writeJSON(w, http.StatusOK, rec)
}

// RemoveBoard handles DELETE /api/{boardID}.
func (h *Handler) RemoveBoard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "boardID")
	sum, err := h.store.Remove(id)
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			writeJSON(w, http.StatusBadRequest, errorBody("Invalid board id"))
			return
		}
		writeStoreError(w, "remove board", err)
		return
	}
	slog.Info("board deleted", slog.String("id", sum.ID), slog.Int("notes", sum.NotesCount))
	h.publish("deleted", sum.ID)
	writeJSON(w, http.StatusOK, RemoveResponse{
		Message:    "Board deleted",
		ID:         sum.ID,
		NotesCount: sum.NotesCount,
	})
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	diag, err := h.store.Diagnostics()
	if err != nil {
		slog.Error("diagnostics failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("Something went wrong!"))
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Diagnostics: *diag})
}
