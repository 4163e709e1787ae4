package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/gamestore/internal/domain"
	"github.com/fjod/gamestore/internal/repository"
	"github.com/shopspring/decimal"
)

type LibraryService struct {
	library repository.LibraryRepository
	games   gameReader
	now     func() time.Time
}

func NewLibraryService(library repository.LibraryRepository, games gameReader) *LibraryService {
	return &LibraryService{library: library, games: games, now: time.Now}
}

func (s *LibraryService) ListLibrary(ctx context.Context, userID string) ([]*domain.LibraryEntry, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	entries, err := s.library.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list library: %v", ErrRemote, err)
	}
	return entries, nil
}

func (s *LibraryService) Owns(ctx context.Context, userID, gameID string) (bool, error) {
	owned, err := s.library.Exists(ctx, userID, gameID)
	if err != nil {
		return false, fmt.Errorf("%w: check library: %v", ErrRemote, err)
	}
	return owned, nil
}

// ClaimFreeGame adds a free, active game to the library without an order.
func (s *LibraryService) ClaimFreeGame(ctx context.Context, userID, gameID string) (*domain.LibraryEntry, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	game, err := s.games.GetGame(ctx, gameID)
	if errors.Is(err, repository.ErrGameNotFound) {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get game: %v", ErrRemote, err)
	}
	if !game.IsActive {
		return nil, ErrUnavailable
	}
	if !game.IsFree {
		return nil, fmt.Errorf("%w: only free games can be claimed", ErrBusinessRule)
	}

	owned, err := s.Owns(ctx, userID, gameID)
	if err != nil {
		return nil, err
	}
	if owned {
		return nil, ErrAlreadyOwned
	}

	entry := &domain.LibraryEntry{
		UserID:        userID,
		GameID:        game.ID,
		GameTitle:     game.Title,
		GameImage:     game.ImageURL,
		PurchasePrice: decimal.Zero,
		AcquiredAt:    s.now(),
	}
	if err := s.library.Upsert(ctx, entry); err != nil {
		return nil, fmt.Errorf("%w: save library entry: %v", ErrRemote, err)
	}
	return entry, nil
}

// UpdatePlaytime records one play session.
func (s *LibraryService) UpdatePlaytime(ctx context.Context, userID, gameID string, minutes int, installed bool) (*domain.LibraryEntry, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if minutes < 0 {
		return nil, fmt.Errorf("%w: minutes must not be negative", ErrInvalidInput)
	}

	err := s.library.RecordPlay(ctx, userID, gameID, minutes, installed, s.now())
	if errors.Is(err, repository.ErrEntryNotFound) {
		return nil, fmt.Errorf("%w: game %s is not in the library", ErrNotFound, gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: record play: %v", ErrRemote, err)
	}

	entry, err := s.library.Get(ctx, userID, gameID)
	if err != nil {
		return nil, fmt.Errorf("%w: get library entry: %v", ErrRemote, err)
	}
	return entry, nil
}
