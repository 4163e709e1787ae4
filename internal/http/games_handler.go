package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/fjod/gamestore/internal/domain"
	"github.com/fjod/gamestore/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type gameCatalog interface {
	ListGames(ctx context.Context, opts service.FilterOptions) ([]*domain.Game, error)
	GetGame(ctx context.Context, id string) (*domain.Game, error)
}

type gameReviews interface {
	AddReview(ctx context.Context, userID, gameID string, rating int, content string) (*domain.Review, error)
	ListReviews(ctx context.Context, gameID string) ([]*domain.Review, error)
}

type GamesHandler struct {
	catalog gameCatalog
	reviews gameReviews
}

func NewGamesHandler(catalog gameCatalog, reviews gameReviews) *GamesHandler {
	return &GamesHandler{catalog: catalog, reviews: reviews}
}

type AddReviewRequestDTO struct {
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

func (h *GamesHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	opts, msg := parseFilter(r)
	if msg != "" {
		respondError(w, r, http.StatusBadRequest, "invalid_argument", msg)
		return
	}
	games, err := h.catalog.ListGames(r.Context(), opts)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, games)
}

func (h *GamesHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.catalog.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, game)
}

func (h *GamesHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListReviews(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, reviews)
}

func (h *GamesHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	var req AddReviewRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	review, err := h.reviews.AddReview(r.Context(), userID, chi.URLParam(r, "id"), req.Rating, req.Content)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, review)
}

// parseFilter reads the catalog query string. It returns a message for the
// first malformed parameter.
func parseFilter(r *http.Request) (service.FilterOptions, string) {
	q := r.URL.Query()
	opts := service.FilterOptions{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Sort:     service.SortKey(q.Get("sort")),
	}

	for name, dst := range map[string]*bool{"free": &opts.OnlyFree, "featured": &opts.OnlyFeatured} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, name + " must be a boolean"
			}
			*dst = b
		}
	}
	for name, dst := range map[string]**decimal.Decimal{"min_price": &opts.MinPrice, "max_price": &opts.MaxPrice} {
		if v := q.Get(name); v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				return opts, name + " must be a number"
			}
			*dst = &d
		}
	}
	return opts, ""
}
