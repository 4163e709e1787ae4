package http

import (
	"context"
	"net/http"

	"github.com/fjod/gamestore/internal/domain"
	"github.com/go-chi/chi/v5"
)

type libraryManager interface {
	ListLibrary(ctx context.Context, userID string) ([]*domain.LibraryEntry, error)
	ClaimFreeGame(ctx context.Context, userID, gameID string) (*domain.LibraryEntry, error)
	UpdatePlaytime(ctx context.Context, userID, gameID string, minutes int, installed bool) (*domain.LibraryEntry, error)
}

type LibraryHandler struct {
	library libraryManager
}

func NewLibraryHandler(library libraryManager) *LibraryHandler {
	return &LibraryHandler{library: library}
}

type PlaytimeRequestDTO struct {
	Minutes   int  `json:"minutes"`
	Installed bool `json:"installed"`
}

func (h *LibraryHandler) ListLibrary(w http.ResponseWriter, r *http.Request) {
	entries, err := h.library.ListLibrary(r.Context(), getUserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, entries)
}

func (h *LibraryHandler) ClaimFreeGame(w http.ResponseWriter, r *http.Request) {
	entry, err := h.library.ClaimFreeGame(r.Context(), getUserIDFromContext(r.Context()), chi.URLParam(r, "game_id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, entry)
}

func (h *LibraryHandler) UpdatePlaytime(w http.ResponseWriter, r *http.Request) {
	var req PlaytimeRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	entry, err := h.library.UpdatePlaytime(r.Context(), getUserIDFromContext(r.Context()), chi.URLParam(r, "game_id"), req.Minutes, req.Installed)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, entry)
}
