package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fjod/gamestore/internal/chat"
	"github.com/sony/gobreaker/v2"
)

const (
	maxQuestionLength = 1000
	maxHistory        = 10
)

type completer interface {
	Complete(ctx context.Context, messages []chat.Message) (string, error)
}

type titleLister interface {
	ActiveTitles(ctx context.Context) ([]string, error)
}

type RecommendationService struct {
	chat    completer
	catalog titleLister
}

func NewRecommendationService(chat completer, catalog titleLister) *RecommendationService {
	return &RecommendationService{chat: chat, catalog: catalog}
}

// Ask answers question in the context of the earlier conversation. Only the
// last few history messages are sent.
func (s *RecommendationService) Ask(ctx context.Context, userID string, history []chat.Message, question string) (string, error) {
	if userID == "" {
		return "", ErrNotAuthenticated
	}
	question = strings.TrimSpace(question)
	if question == "" || utf8.RuneCountInString(question) > maxQuestionLength {
		return "", fmt.Errorf("%w: question must be 1 to %d characters", ErrInvalidInput, maxQuestionLength)
	}
	for _, m := range history {
		if m.Role != "user" && m.Role != "assistant" {
			return "", fmt.Errorf("%w: unsupported message role %q", ErrInvalidInput, m.Role)
		}
	}
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	titles, err := s.catalog.ActiveTitles(ctx)
	if err != nil {
		return "", err
	}

	messages := make([]chat.Message, 0, len(history)+2)
	messages = append(messages, chat.Message{Role: "system", Content: systemPrompt(titles)})
	messages = append(messages, history...)
	messages = append(messages, chat.Message{Role: "user", Content: question})

	reply, err := s.chat.Complete(ctx, messages)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: chat assistant is temporarily unavailable", ErrRemote)
		}
		return "", fmt.Errorf("%w: chat: %v", ErrRemote, err)
	}
	return reply, nil
}

func systemPrompt(titles []string) string {
	var b strings.Builder
	b.WriteString("You are the game store assistant. Recommend games only from this catalog, ")
	b.WriteString("and say so when nothing fits:\n")
	for _, t := range titles {
		b.WriteString("- ")
		b.WriteString(t)
		b.WriteString("\n")
	}
	b.WriteString("Keep answers short and mention the exact title of each recommendation.")
	return b.String()
}
