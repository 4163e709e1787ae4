package http

import (
	"context"
	"net/http"

	"github.com/fjod/gamestore/internal/chat"
)

type recommender interface {
	Ask(ctx context.Context, userID string, history []chat.Message, question string) (string, error)
}

type ChatHandler struct {
	assistant recommender
}

func NewChatHandler(assistant recommender) *ChatHandler {
	return &ChatHandler{assistant: assistant}
}

type ChatRequestDTO struct {
	Question string         `json:"question"`
	History  []chat.Message `json:"history"`
}

type ChatResponseDTO struct {
	Reply string `json:"reply"`
}

func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req ChatRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	reply, err := h.assistant.Ask(r.Context(), getUserIDFromContext(r.Context()), req.History, req.Question)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, ChatResponseDTO{Reply: reply})
}
