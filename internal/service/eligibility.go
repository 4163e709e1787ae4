package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/gamestore/internal/domain"
	"github.com/fjod/gamestore/internal/repository"
	"github.com/shopspring/decimal"
)

var (
	ErrOutOfStock   = fmt.Errorf("%w: out of stock", ErrBusinessRule)
	ErrUnavailable  = fmt.Errorf("%w: game is not available", ErrBusinessRule)
	ErrAlreadyOwned = fmt.Errorf("%w: game already in library", ErrBusinessRule)
	ErrFreeGame     = fmt.Errorf("%w: free games are claimed directly into the library", ErrBusinessRule)
)

type gameReader interface {
	GetGame(ctx context.Context, id string) (*domain.Game, error)
}

type ownershipChecker interface {
	Exists(ctx context.Context, userID, gameID string) (bool, error)
}

type cartAdder interface {
	AddItem(ctx context.Context, userID, gameID, title, image string, price decimal.Decimal) (*domain.Cart, error)
}

// AddToCart is the eligibility gate in front of CartService.AddItem.
type AddToCart struct {
	games   gameReader
	library ownershipChecker
	carts   cartAdder
}

func NewAddToCart(games gameReader, library ownershipChecker, carts cartAdder) *AddToCart {
	return &AddToCart{games: games, library: library, carts: carts}
}

// Execute checks, in order: stock, availability, ownership, price. The first
// failing rule is returned.
func (uc *AddToCart) Execute(ctx context.Context, userID, gameID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	game, err := uc.games.GetGame(ctx, gameID)
	if errors.Is(err, repository.ErrGameNotFound) {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get game: %v", ErrRemote, err)
	}

	if err := checkEligibility(game); err != nil {
		return nil, err
	}

	owned, err := uc.library.Exists(ctx, userID, gameID)
	if err != nil {
		return nil, fmt.Errorf("%w: check library: %v", ErrRemote, err)
	}
	if owned {
		return nil, ErrAlreadyOwned
	}
	if game.IsFree {
		return nil, ErrFreeGame
	}

	return uc.carts.AddItem(ctx, userID, game.ID, game.Title, game.ImageURL, game.Price)
}

func checkEligibility(game *domain.Game) error {
	if game.Stock <= 0 && !game.IsFree {
		return ErrOutOfStock
	}
	if !game.IsActive {
		return ErrUnavailable
	}
	return nil
}
