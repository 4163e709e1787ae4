package http

import (
	"context"
	"net/http"

	"github.com/fjod/gamestore/internal/domain"
)

type paymentProcessor interface {
	ProcessPayment(ctx context.Context, cart *domain.Cart, method domain.PaymentMethod, details domain.PaymentDetails) (*domain.Order, error)
}

type cartReader interface {
	CartForCheckout(ctx context.Context, userID string) (*domain.Cart, error)
}

type CheckoutHandler struct {
	carts    cartReader
	checkout paymentProcessor
}

func NewCheckoutHandler(carts cartReader, checkout paymentProcessor) *CheckoutHandler {
	return &CheckoutHandler{carts: carts, checkout: checkout}
}

type CheckoutRequestDTO struct {
	PaymentMethod  domain.PaymentMethod  `json:"payment_method"`
	PaymentDetails domain.PaymentDetails `json:"payment_details"`
}

// Checkout charges the caller's current cart.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	cart, err := h.carts.CartForCheckout(r.Context(), getUserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	order, err := h.checkout.ProcessPayment(r.Context(), cart, req.PaymentMethod, req.PaymentDetails)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, order)
}
