package service

import (
	"context"
	"testing"

	"github.com/fjod/gamestore/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeGame(id string) *domain.Game {
	g := testGame(id, "Free "+id, "0")
	g.IsFree = true
	return g
}

func TestClaimFreeGame(t *testing.T) {
	library := newMockLibraryRepo()
	s := NewLibraryService(library, newMockGameRepo(freeGame("f1")))
	s.now = fixedClock()

	entry, err := s.ClaimFreeGame(context.Background(), "user-1", "f1")

	require.NoError(t, err)
	assert.Equal(t, "Free f1", entry.GameTitle)
	assert.True(t, entry.PurchasePrice.IsZero())
	assert.Empty(t, entry.OrderID)
	assert.Equal(t, fixedClock()(), entry.AcquiredAt)

	owned, err := s.Owns(context.Background(), "user-1", "f1")
	require.NoError(t, err)
	assert.True(t, owned)
}

func TestClaimFreeGame_Rules(t *testing.T) {
	inactive := freeGame("off")
	inactive.IsActive = false
	games := newMockGameRepo(freeGame("f1"), inactive, testGame("paid", "Paid", "10"))

	library := newMockLibraryRepo()
	require.NoError(t, library.Upsert(context.Background(), &domain.LibraryEntry{UserID: "user-1", GameID: "f1"}))
	s := NewLibraryService(library, games)

	tests := []struct {
		name   string
		userID string
		gameID string
		want   error
	}{
		{"anonymous", "", "f1", ErrNotAuthenticated},
		{"unknown game", "user-1", "missing", ErrNotFound},
		{"inactive", "user-1", "off", ErrUnavailable},
		{"paid game", "user-1", "paid", ErrBusinessRule},
		{"already owned", "user-1", "f1", ErrAlreadyOwned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ClaimFreeGame(context.Background(), tt.userID, tt.gameID)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, 1, library.upserts, "no rejected claim writes to the library")
}

func TestUpdatePlaytime(t *testing.T) {
	library := newMockLibraryRepo()
	require.NoError(t, library.Upsert(context.Background(), &domain.LibraryEntry{UserID: "user-1", GameID: "g1"}))
	s := NewLibraryService(library, newMockGameRepo())
	s.now = fixedClock()
	ctx := context.Background()

	_, err := s.UpdatePlaytime(ctx, "user-1", "g1", 30, true)
	require.NoError(t, err)
	entry, err := s.UpdatePlaytime(ctx, "user-1", "g1", 15, false)
	require.NoError(t, err)

	assert.Equal(t, 45, entry.PlayTimeMinutes)
	assert.False(t, entry.IsInstalled)
	require.NotNil(t, entry.LastPlayed)
	assert.Equal(t, fixedClock()(), *entry.LastPlayed)
}

func TestUpdatePlaytime_Errors(t *testing.T) {
	s := NewLibraryService(newMockLibraryRepo(), newMockGameRepo())
	ctx := context.Background()

	_, err := s.UpdatePlaytime(ctx, "user-1", "g1", -1, false)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.UpdatePlaytime(ctx, "user-1", "not-owned", 10, false)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.UpdatePlaytime(ctx, "", "g1", 10, false)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestListLibrary(t *testing.T) {
	library := newMockLibraryRepo()
	require.NoError(t, library.Upsert(context.Background(), &domain.LibraryEntry{UserID: "user-1", GameID: "g1"}))
	require.NoError(t, library.Upsert(context.Background(), &domain.LibraryEntry{UserID: "user-2", GameID: "g2"}))
	s := NewLibraryService(library, newMockGameRepo())

	entries, err := s.ListLibrary(context.Background(), "user-1")

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "g1", entries[0].GameID)
}
