package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fjod/gamestore/internal/cache"
	"github.com/fjod/gamestore/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCartService(repo *mockCartRepo, c *mockCache) *CartService {
	s := NewCartService(repo, c, nopLogger())
	s.now = fixedClock()
	return s
}

func assertCartInvariants(t *testing.T, c *domain.Cart) {
	t.Helper()
	sum := decimal.Zero
	for _, it := range c.Items {
		assert.True(t, it.Subtotal.Equal(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))), "subtotal of %s", it.GameID)
		sum = sum.Add(it.Subtotal)
	}
	assert.True(t, c.Total.Equal(sum), "total %s != %s", c.Total, sum)
}

func TestGetOrCreateCart_CreatesEmptyCart(t *testing.T) {
	repo := newMockCartRepo()
	s := newCartService(repo, newMockCache())

	cart, err := s.GetOrCreateCart(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, "user-1", cart.UserID)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.Total.IsZero())
	assert.NotNil(t, repo.stored("user-1"), "new cart must be persisted")
}

func TestGetOrCreateCart_ServesFromCache(t *testing.T) {
	repo := newMockCartRepo()
	c := newMockCache()
	cached := domain.NewCart("user-1", fixedClock()())
	cached.AddItem("g1", "Alpha", "", money("5"), fixedClock()())
	require.NoError(t, c.Set(context.Background(), "user-1", cached))
	s := newCartService(repo, c)

	cart, err := s.GetOrCreateCart(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, 0, repo.gets)
}

func TestGetOrCreateCart_CacheErrorFallsBackToStore(t *testing.T) {
	repo := newMockCartRepo()
	c := newMockCache()
	c.getErr = errors.New("redis down")
	s := newCartService(repo, c)

	cart, err := s.GetOrCreateCart(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, "user-1", cart.UserID)
}

func TestGetOrCreateCart_StoreErrorIsRemote(t *testing.T) {
	repo := newMockCartRepo()
	repo.getErr = errors.New("mongo down")
	s := newCartService(repo, newMockCache())

	_, err := s.GetOrCreateCart(context.Background(), "user-1")

	assert.ErrorIs(t, err, ErrRemote)
}

func TestGetOrCreateCart_RequiresUser(t *testing.T) {
	s := newCartService(newMockCartRepo(), newMockCache())

	_, err := s.GetOrCreateCart(context.Background(), "")

	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestGetOrCreateCart_ConcurrentFirstAccessCreatesOneCart(t *testing.T) {
	repo := newMockCartRepo()
	s := newCartService(repo, newMockCache())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.GetOrCreateCart(context.Background(), "user-1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, repo.carts, 1)
}

func TestAddItem_SameGameTwiceIncrementsQuantity(t *testing.T) {
	repo := newMockCartRepo()
	c := newMockCache()
	s := newCartService(repo, c)
	ctx := context.Background()

	_, err := s.AddItem(ctx, "user-1", "A", "Alpha", "", money("10"))
	require.NoError(t, err)
	cart, err := s.AddItem(ctx, "user-1", "A", "Alpha", "", money("10"))
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, "20", cart.Items[0].Subtotal.String())
	assert.Equal(t, "20", cart.Total.String())
	assertCartInvariants(t, cart)

	stored := repo.stored("user-1")
	assert.Equal(t, "20", stored.Total.String())
	assert.Equal(t, int64(2), stored.Version)
	cached, err := c.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), cached.Version, "each mutation writes through to the cache")
	assert.Equal(t, 2, cached.Items[0].Quantity)
}

func TestMutation_CacheWriteFailureDropsEntry(t *testing.T) {
	repo := newMockCartRepo()
	c := newMockCache()
	s := newCartService(repo, c)
	ctx := context.Background()

	_, err := s.AddItem(ctx, "user-1", "A", "Alpha", "", money("10"))
	require.NoError(t, err)
	c.setErr = errors.New("redis down")

	_, err = s.AddItem(ctx, "user-1", "B", "Beta", "", money("5"))
	require.NoError(t, err, "cache failures never fail a mutation")

	assert.Equal(t, 1, c.deletes)
	_, err = c.Get(ctx, "user-1")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestGetOrCreateCart_LateRefillDoesNotHideNewerCart(t *testing.T) {
	repo := newMockCartRepo()
	c := newMockCache()
	s := newCartService(repo, c)
	ctx := context.Background()

	_, err := s.AddItem(ctx, "user-1", "A", "Alpha", "", money("10"))
	require.NoError(t, err)
	stale := repo.stored("user-1")

	_, err = s.AddItem(ctx, "user-1", "B", "Beta", "", money("5"))
	require.NoError(t, err)

	// A read-through refill that loaded the older cart lands last.
	require.NoError(t, c.Set(ctx, "user-1", stale))

	cart, err := s.GetOrCreateCart(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

func TestCartForCheckout_SkipsCache(t *testing.T) {
	repo := newMockCartRepo()
	c := newMockCache()
	s := newCartService(repo, c)
	ctx := context.Background()

	_, err := s.AddItem(ctx, "user-1", "A", "Alpha", "", money("10"))
	require.NoError(t, err)
	c.carts["user-1"] = domain.NewCart("user-1", fixedClock()())
	c.carts["user-1"].Version = 99

	cart, err := s.CartForCheckout(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, int64(1), cart.Version)

	_, err = s.CartForCheckout(ctx, "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSettleCheckout_KeepsLinesAddedAfterSnapshot(t *testing.T) {
	repo := newMockCartRepo()
	s := newCartService(repo, newMockCache())
	ctx := context.Background()

	_, err := s.AddItem(ctx, "user-1", "A", "Alpha", "", money("10"))
	require.NoError(t, err)
	snapshot, err := s.CartForCheckout(ctx, "user-1")
	require.NoError(t, err)

	_, err = s.AddItem(ctx, "user-1", "A", "Alpha", "", money("10"))
	require.NoError(t, err)
	_, err = s.AddItem(ctx, "user-1", "B", "Beta", "", money("5"))
	require.NoError(t, err)

	cart, err := s.SettleCheckout(ctx, snapshot)
	require.NoError(t, err)

	require.Len(t, cart.Items, 2)
	assert.Equal(t, "A", cart.Items[0].GameID)
	assert.Equal(t, 1, cart.Items[0].Quantity, "only the bought unit is taken out")
	assert.Equal(t, "B", cart.Items[1].GameID)
	assert.Equal(t, "15", cart.Total.String())
	assertCartInvariants(t, cart)
}

func TestSettleCheckout_EmptiesUnchangedCart(t *testing.T) {
	repo := newMockCartRepo()
	s := newCartService(repo, newMockCache())
	ctx := context.Background()

	_, err := s.AddItem(ctx, "user-1", "A", "Alpha", "", money("10"))
	require.NoError(t, err)
	snapshot, err := s.CartForCheckout(ctx, "user-1")
	require.NoError(t, err)

	cart, err := s.SettleCheckout(ctx, snapshot)
	require.NoError(t, err)

	assert.True(t, cart.IsEmpty())
	assert.True(t, repo.stored("user-1").Total.IsZero())
}

func TestAddItem_RejectsNegativePrice(t *testing.T) {
	s := newCartService(newMockCartRepo(), newMockCache())

	_, err := s.AddItem(context.Background(), "user-1", "A", "Alpha", "", money("-1"))

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMutations_KeepInvariants(t *testing.T) {
	repo := newMockCartRepo()
	s := newCartService(repo, newMockCache())
	ctx := context.Background()

	steps := []func() (*domain.Cart, error){
		func() (*domain.Cart, error) { return s.AddItem(ctx, "u", "A", "Alpha", "", money("19.99")) },
		func() (*domain.Cart, error) { return s.AddItem(ctx, "u", "B", "Beta", "", money("40")) },
		func() (*domain.Cart, error) { return s.AddItem(ctx, "u", "A", "Alpha", "", money("1")) },
		func() (*domain.Cart, error) { return s.UpdateQuantity(ctx, "u", "B", 3) },
		func() (*domain.Cart, error) { return s.RemoveItem(ctx, "u", "A") },
		func() (*domain.Cart, error) { return s.UpdateQuantity(ctx, "u", "missing", 2) },
		func() (*domain.Cart, error) { return s.Clear(ctx, "u") },
	}
	for i, step := range steps {
		cart, err := step()
		require.NoError(t, err, "step %d", i)
		assertCartInvariants(t, cart)
		assertCartInvariants(t, repo.stored("u"))
	}
	assert.True(t, repo.stored("u").IsEmpty())
}

func TestUpdateQuantity_ZeroEqualsRemove(t *testing.T) {
	ctx := context.Background()
	build := func() *CartService {
		s := newCartService(newMockCartRepo(), newMockCache())
		_, err := s.AddItem(ctx, "u", "A", "Alpha", "", money("10"))
		require.NoError(t, err)
		_, err = s.AddItem(ctx, "u", "B", "Beta", "", money("3"))
		require.NoError(t, err)
		return s
	}

	viaUpdate, err := build().UpdateQuantity(ctx, "u", "A", 0)
	require.NoError(t, err)
	viaRemove, err := build().RemoveItem(ctx, "u", "A")
	require.NoError(t, err)

	assert.Equal(t, viaRemove.Items, viaUpdate.Items)
	assert.True(t, viaRemove.Total.Equal(viaUpdate.Total))
}

func TestClear_KeepsCartDocument(t *testing.T) {
	repo := newMockCartRepo()
	s := newCartService(repo, newMockCache())
	ctx := context.Background()
	_, err := s.AddItem(ctx, "u", "A", "Alpha", "", money("10"))
	require.NoError(t, err)

	cart, err := s.Clear(ctx, "u")

	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	stored := repo.stored("u")
	require.NotNil(t, stored)
	assert.True(t, stored.Total.IsZero())
}

func TestMutation_VersionConflictSurfacesErrConflict(t *testing.T) {
	repo := newMockCartRepo()
	s := newCartService(repo, newMockCache())
	ctx := context.Background()
	_, err := s.AddItem(ctx, "u", "A", "Alpha", "", money("10"))
	require.NoError(t, err)

	// Another writer commits between our read and our write.
	repo.beforeSave = func(stored *domain.Cart) {
		stored.Version++
	}

	_, err = s.AddItem(ctx, "u", "B", "Beta", "", money("5"))

	assert.ErrorIs(t, err, ErrConflict)
	stored := repo.stored("u")
	assert.Len(t, stored.Items, 1, "losing write must not be applied")
}

func TestMutation_CacheInvalidationFailureIsIgnored(t *testing.T) {
	c := newMockCache()
	c.delErr = errors.New("redis down")
	s := newCartService(newMockCartRepo(), c)

	cart, err := s.AddItem(context.Background(), "u", "A", "Alpha", "", money("10"))

	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestMutation_StoreErrorIsRemote(t *testing.T) {
	repo := newMockCartRepo()
	s := newCartService(repo, newMockCache())
	_, err := s.AddItem(context.Background(), "u", "A", "Alpha", "", money("10"))
	require.NoError(t, err)
	repo.saveErr = errors.New("write timeout")

	_, err = s.RemoveItem(context.Background(), "u", "A")

	assert.ErrorIs(t, err, ErrRemote)
}
