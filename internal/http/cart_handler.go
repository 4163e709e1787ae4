package http

import (
	"context"
	"net/http"

	"github.com/fjod/gamestore/internal/domain"
	"github.com/go-chi/chi/v5"
)

type cartManager interface {
	GetOrCreateCart(ctx context.Context, userID string) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, gameID string) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, userID, gameID string, quantity int) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) (*domain.Cart, error)
}

// cartStore serves both the cart routes and checkout.
type cartStore interface {
	cartManager
	cartReader
}

type eligibleAdder interface {
	Execute(ctx context.Context, userID, gameID string) (*domain.Cart, error)
}

type CartHandler struct {
	carts cartManager
	adder eligibleAdder
}

func NewCartHandler(carts cartManager, adder eligibleAdder) *CartHandler {
	return &CartHandler{carts: carts, adder: adder}
}

type AddItemRequestDTO struct {
	GameID string `json:"game_id"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.GetOrCreateCart(r.Context(), getUserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, cart)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.GameID == "" {
		respondError(w, r, http.StatusBadRequest, "invalid_game_id", "game_id is required")
		return
	}

	cart, err := h.adder.Execute(r.Context(), getUserIDFromContext(r.Context()), req.GameID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, cart)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity < 0 || req.Quantity > 99 {
		respondError(w, r, http.StatusBadRequest, "invalid_quantity", "quantity must be between 0 and 99")
		return
	}

	cart, err := h.carts.UpdateQuantity(r.Context(), getUserIDFromContext(r.Context()), chi.URLParam(r, "game_id"), req.Quantity)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.RemoveItem(r.Context(), getUserIDFromContext(r.Context()), chi.URLParam(r, "game_id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, cart)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.Clear(r.Context(), getUserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, cart)
}
