package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fjod/gamestore/internal/domain"
	"github.com/fjod/gamestore/internal/repository"
)

const maxReviewLength = 2000

type ReviewService struct {
	reviews repository.ReviewRepository
	library ownershipChecker
	users   usernameReader
	effects *SideEffects
	now     func() time.Time
}

func NewReviewService(reviews repository.ReviewRepository, library ownershipChecker, users usernameReader, effects *SideEffects) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		library: library,
		users:   users,
		effects: effects,
		now:     time.Now,
	}
}

// AddReview stores the user's single review for the game, replacing any
// earlier one while keeping when it was first written. Only owners may
// review.
func (s *ReviewService) AddReview(ctx context.Context, userID, gameID string, rating int, content string) (*domain.Review, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	content, err := validateText(content, maxReviewLength, "review")
	if err != nil {
		return nil, err
	}

	owned, err := s.library.Exists(ctx, userID, gameID)
	if err != nil {
		return nil, fmt.Errorf("%w: check library: %v", ErrRemote, err)
	}
	if !owned {
		return nil, fmt.Errorf("%w: only owners can review a game", ErrBusinessRule)
	}

	username, err := authorName(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	review := &domain.Review{
		ID:        userID + ":" + gameID,
		GameID:    gameID,
		UserID:    userID,
		Username:  username,
		Rating:    rating,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.reviews.UpsertReview(ctx, review); err != nil {
		return nil, fmt.Errorf("%w: save review: %v", ErrRemote, err)
	}

	s.effects.RefreshRating(ctx, gameID)
	return review, nil
}

func (s *ReviewService) ListReviews(ctx context.Context, gameID string) ([]*domain.Review, error) {
	reviews, err := s.reviews.ListByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("%w: list reviews: %v", ErrRemote, err)
	}
	return reviews, nil
}
