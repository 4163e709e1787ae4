package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/gamestore/internal/domain"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrVersionConflict = errors.New("cart was modified concurrently")
	ErrOrderNotFound   = errors.New("order not found")
	ErrGameNotFound    = errors.New("game not found")
	ErrEntryNotFound   = errors.New("library entry not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrDuplicate       = errors.New("document already exists")
)

// CartRepository defines the interface for cart data operations
// Consumers define this interface, not the MongoDB implementation
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	CreateCart(ctx context.Context, cart *domain.Cart) error
	// SaveCart overwrites the whole document if its stored version still
	// equals cart.Version, then bumps cart.Version.
	SaveCart(ctx context.Context, cart *domain.Cart) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus, now time.Time) error
}

type LibraryRepository interface {
	Upsert(ctx context.Context, entry *domain.LibraryEntry) error
	Get(ctx context.Context, userID, gameID string) (*domain.LibraryEntry, error)
	Exists(ctx context.Context, userID, gameID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.LibraryEntry, error)
	RecordPlay(ctx context.Context, userID, gameID string, minutes int, installed bool, at time.Time) error
}

type GameRepository interface {
	ListGames(ctx context.Context) ([]*domain.Game, error)
	GetGame(ctx context.Context, id string) (*domain.Game, error)
	UpsertGame(ctx context.Context, game *domain.Game) error
	UpdateRating(ctx context.Context, id string, rating float64, count int) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id, username, displayName, bio string, now time.Time) error
	UpdateProfileImage(ctx context.Context, id, url, path string, now time.Time) error
}

type PostRepository interface {
	CreatePost(ctx context.Context, post *domain.Post) error
	GetPost(ctx context.Context, id string) (*domain.Post, error)
	ListPosts(ctx context.Context, limit int64) ([]*domain.Post, error)
	IncrementCounter(ctx context.Context, id, field string, delta int) error
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *domain.Comment) error
	ListByPost(ctx context.Context, postID string) ([]*domain.Comment, error)
}

type ReviewRepository interface {
	UpsertReview(ctx context.Context, review *domain.Review) error
	ListByGame(ctx context.Context, gameID string) ([]*domain.Review, error)
}
