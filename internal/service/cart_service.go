package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/gamestore/internal/cache"
	"github.com/fjod/gamestore/internal/domain"
	"github.com/fjod/gamestore/internal/logger"
	"github.com/fjod/gamestore/internal/metrics"
	"github.com/fjod/gamestore/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type CartService struct {
	repo  repository.CartRepository
	cache cache.CartCache
	log   *zap.Logger
	now   func() time.Time
	sfg   singleflight.Group // Prevents cache stampede
}

func NewCartService(repo repository.CartRepository, cache cache.CartCache, log *zap.Logger) *CartService {
	return &CartService{
		repo:  repo,
		cache: cache,
		log:   log,
		now:   time.Now,
	}
}

// GetOrCreateCart returns the user's cart, creating an empty one on first
// access. Concurrent reads for the same user share one lookup.
func (s *CartService) GetOrCreateCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.sideEffectFailed(ctx, "cache_get", err)
		}

		cart, err = s.load(ctx, userID)
		if err != nil {
			return nil, err
		}

		go func(c domain.Cart) {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.Set(ctx, userID, &c); err != nil {
				s.sideEffectFailed(ctx, "cache_set", err)
			}
		}(*cart)

		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	// Callers may mutate the cart; never hand out the shared instance.
	shared := v.(*domain.Cart)
	cp := *shared
	cp.Items = append([]domain.CartItem{}, shared.Items...)
	return &cp, nil
}

func (s *CartService) AddItem(ctx context.Context, userID, gameID, title, image string, price decimal.Decimal) (*domain.Cart, error) {
	if gameID == "" || price.IsNegative() {
		return nil, fmt.Errorf("%w: game id and a non-negative price are required", ErrInvalidInput)
	}
	return s.mutate(ctx, userID, func(c *domain.Cart, now time.Time) error {
		c.AddItem(gameID, title, image, price, now)
		return nil
	})
}

func (s *CartService) RemoveItem(ctx context.Context, userID, gameID string) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart, now time.Time) error {
		c.RemoveItem(gameID, now)
		return nil
	})
}

// UpdateQuantity removes the item when quantity <= 0.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, gameID string, quantity int) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart, now time.Time) error {
		c.UpdateQuantity(gameID, quantity, now)
		return nil
	})
}

// Clear empties the cart but keeps the document.
func (s *CartService) Clear(ctx context.Context, userID string) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart, now time.Time) error {
		c.Clear(now)
		return nil
	})
}

// CartForCheckout reads the cart from the store, skipping the cache, so the
// order is built from the version checkout will later settle against.
func (s *CartService) CartForCheckout(ctx context.Context, userID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return s.load(ctx, userID)
}

// SettleCheckout removes a purchased snapshot from the cart. When the cart is
// still at the snapshot's version it is emptied; otherwise only the bought
// quantities are taken out and lines added since then stay.
func (s *CartService) SettleCheckout(ctx context.Context, snapshot *domain.Cart) (*domain.Cart, error) {
	if snapshot == nil {
		return nil, ErrNotAuthenticated
	}
	return s.mutate(ctx, snapshot.UserID, func(c *domain.Cart, now time.Time) error {
		if c.Version == snapshot.Version {
			c.Clear(now)
			return nil
		}
		c.Subtract(snapshot.Items, now)
		return nil
	})
}

// mutate reads the cart from the store, never the cache, so the version it
// writes against is current. Writes are conditional on that version.
func (s *CartService) mutate(ctx context.Context, userID string, apply func(c *domain.Cart, now time.Time) error) (*domain.Cart, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := apply(cart, s.now()); err != nil {
		return nil, err
	}

	if err := s.repo.SaveCart(ctx, cart); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, fmt.Errorf("%w: cart changed, reload and retry", ErrConflict)
		}
		return nil, fmt.Errorf("%w: save cart: %v", ErrRemote, err)
	}

	s.refreshCache(ctx, cart)
	return cart, nil
}

func (s *CartService) load(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repository.ErrCartNotFound) {
		return nil, fmt.Errorf("%w: get cart: %v", ErrRemote, err)
	}

	cart = domain.NewCart(userID, s.now())
	err = s.repo.CreateCart(ctx, cart)
	if errors.Is(err, repository.ErrDuplicate) {
		// Another request created it first.
		cart, err = s.repo.GetCart(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("%w: get cart: %v", ErrRemote, err)
		}
		return cart, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: create cart: %v", ErrRemote, err)
	}
	return cart, nil
}

// refreshCache writes the saved cart through to the cache. The cache keeps
// the higher version, so a read-through refill racing this write cannot
// restore an older cart. If the write fails the entry is dropped instead.
func (s *CartService) refreshCache(ctx context.Context, cart *domain.Cart) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	err := s.cache.Set(ctx, cart.UserID, cart)
	if err == nil {
		return
	}
	s.sideEffectFailed(ctx, "cache_set", err)
	if err := s.cache.Delete(ctx, cart.UserID); err != nil {
		s.sideEffectFailed(ctx, "cache_invalidate", err)
	}
}

func (s *CartService) sideEffectFailed(ctx context.Context, effect string, err error) {
	metrics.RecordSideEffectFailure(effect)
	logger.WithTrace(ctx, s.log).Warn("cart side effect failed", zap.String("effect", effect), zap.Error(err))
}
