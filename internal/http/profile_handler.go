package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/fjod/gamestore/internal/service"
)

// Multipart overhead on top of the 5 MiB image limit enforced by the service.
const maxUploadBytes = 6 << 20

type profileManager interface {
	GetProfile(ctx context.Context, userID string) (*service.Profile, error)
	UpdateProfile(ctx context.Context, userID, username, displayName, bio string) (*service.Profile, error)
	UploadProfileImage(ctx context.Context, userID string, data []byte, contentType string) (*service.Profile, error)
}

type ProfileHandler struct {
	profiles profileManager
}

func NewProfileHandler(profiles profileManager) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

type UpdateProfileRequestDTO struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.GetProfile(r.Context(), getUserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	profile, err := h.profiles.UpdateProfile(r.Context(), getUserIDFromContext(r.Context()), req.Username, req.DisplayName, req.Bio)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, profile)
}

// UploadImage reads the "image" part of a multipart form.
func (h *ProfileHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, http.StatusRequestEntityTooLarge, "too_large", "image is too large")
			return
		}
		respondError(w, r, http.StatusBadRequest, "invalid_request", "multipart field \"image\" is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "could not read image")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	profile, err := h.profiles.UploadProfileImage(r.Context(), getUserIDFromContext(r.Context()), data, contentType)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, profile)
}
