package http

import (
	"context"
	"net/http"

	"github.com/fjod/gamestore/internal/service"
)

type sessionIssuer interface {
	SignUp(ctx context.Context, email, password, username string) (*service.Session, error)
	SignIn(ctx context.Context, email, password string) (*service.Session, error)
}

type AuthHandler struct {
	auth sessionIssuer
}

func NewAuthHandler(auth sessionIssuer) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type SignUpRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type SignInRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	session, err := h.auth.SignUp(r.Context(), req.Email, req.Password, req.Username)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, session)
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	session, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, session)
}
