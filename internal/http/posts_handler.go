package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/fjod/gamestore/internal/domain"
	"github.com/go-chi/chi/v5"
)

type communityFeed interface {
	CreatePost(ctx context.Context, userID, content, imageURL string) (*domain.Post, error)
	ListPosts(ctx context.Context, limit int) ([]*domain.Post, error)
	GetPost(ctx context.Context, postID string) (*domain.Post, error)
	AddComment(ctx context.Context, userID, postID, content string) (*domain.Comment, error)
	ListComments(ctx context.Context, postID string) ([]*domain.Comment, error)
	LikePost(ctx context.Context, userID, postID string) error
}

type PostsHandler struct {
	feed communityFeed
}

func NewPostsHandler(feed communityFeed) *PostsHandler {
	return &PostsHandler{feed: feed}
}

type CreatePostRequestDTO struct {
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
}

type AddCommentRequestDTO struct {
	Content string `json:"content"`
}

func (h *PostsHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = n
	}
	posts, err := h.feed.ListPosts(r.Context(), limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, posts)
}

func (h *PostsHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	post, err := h.feed.CreatePost(r.Context(), getUserIDFromContext(r.Context()), req.Content, req.ImageURL)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, post)
}

func (h *PostsHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.feed.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, post)
}

func (h *PostsHandler) LikePost(w http.ResponseWriter, r *http.Request) {
	if err := h.feed.LikePost(r.Context(), getUserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PostsHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.feed.ListComments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, comments)
}

func (h *PostsHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req AddCommentRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	comment, err := h.feed.AddComment(r.Context(), getUserIDFromContext(r.Context()), chi.URLParam(r, "id"), req.Content)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, comment)
}
