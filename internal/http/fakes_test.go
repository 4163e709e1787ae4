package http

import (
	"context"
	"sync"

	"github.com/fjod/gamestore/internal/chat"
	"github.com/fjod/gamestore/internal/domain"
	"github.com/fjod/gamestore/internal/service"
	"github.com/shopspring/decimal"
)

// fakeServices implements every use case interface the router needs. Each
// call records the user and arguments it saw and returns err when set.
type fakeServices struct {
	mu sync.Mutex

	err      error
	lastUser string
	lastArgs []any

	cart     *domain.Cart
	filter   service.FilterOptions
	upload   []byte
	uploadCT string
	history  []chat.Message
}

func newFakeServices() *fakeServices {
	cart := domain.NewCart("user-1", fixedTime)
	cart.AddItem("g1", "Alpha", "", decimal.RequireFromString("59.99"), fixedTime)
	return &fakeServices{cart: cart}
}

func (f *fakeServices) record(userID string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUser = userID
	f.lastArgs = args
	return f.err
}

func (f *fakeServices) SignUp(_ context.Context, email, _, username string) (*service.Session, error) {
	if err := f.record("", email, username); err != nil {
		return nil, err
	}
	return &service.Session{AccessToken: "token", UserID: "user-1"}, nil
}

func (f *fakeServices) SignIn(_ context.Context, email, _ string) (*service.Session, error) {
	if err := f.record("", email); err != nil {
		return nil, err
	}
	return &service.Session{AccessToken: "token", UserID: "user-1"}, nil
}

func (f *fakeServices) ListGames(_ context.Context, opts service.FilterOptions) ([]*domain.Game, error) {
	f.filter = opts
	if err := f.record(""); err != nil {
		return nil, err
	}
	return []*domain.Game{{ID: "g1", Title: "Alpha", Price: decimal.RequireFromString("59.99")}}, nil
}

func (f *fakeServices) GetGame(_ context.Context, id string) (*domain.Game, error) {
	if err := f.record("", id); err != nil {
		return nil, err
	}
	return &domain.Game{ID: id, Title: "Alpha"}, nil
}

func (f *fakeServices) AddReview(_ context.Context, userID, gameID string, rating int, content string) (*domain.Review, error) {
	if err := f.record(userID, gameID, rating, content); err != nil {
		return nil, err
	}
	return &domain.Review{ID: userID + ":" + gameID, Rating: rating}, nil
}

func (f *fakeServices) ListReviews(_ context.Context, gameID string) ([]*domain.Review, error) {
	return []*domain.Review{}, f.record("", gameID)
}

func (f *fakeServices) GetOrCreateCart(_ context.Context, userID string) (*domain.Cart, error) {
	if err := f.record(userID); err != nil {
		return nil, err
	}
	return f.cart, nil
}

func (f *fakeServices) CartForCheckout(_ context.Context, userID string) (*domain.Cart, error) {
	if err := f.record(userID); err != nil {
		return nil, err
	}
	return f.cart, nil
}

func (f *fakeServices) RemoveItem(_ context.Context, userID, gameID string) (*domain.Cart, error) {
	if err := f.record(userID, gameID); err != nil {
		return nil, err
	}
	return f.cart, nil
}

func (f *fakeServices) UpdateQuantity(_ context.Context, userID, gameID string, quantity int) (*domain.Cart, error) {
	if err := f.record(userID, gameID, quantity); err != nil {
		return nil, err
	}
	return f.cart, nil
}

func (f *fakeServices) Clear(_ context.Context, userID string) (*domain.Cart, error) {
	if err := f.record(userID); err != nil {
		return nil, err
	}
	return domain.NewCart(userID, fixedTime), nil
}

func (f *fakeServices) Execute(_ context.Context, userID, gameID string) (*domain.Cart, error) {
	if err := f.record(userID, gameID); err != nil {
		return nil, err
	}
	return f.cart, nil
}

func (f *fakeServices) ProcessPayment(_ context.Context, cart *domain.Cart, method domain.PaymentMethod, details domain.PaymentDetails) (*domain.Order, error) {
	if err := f.record(cart.UserID, method, details.Phone); err != nil {
		return nil, err
	}
	return &domain.Order{
		ID:            "order-1",
		UserID:        cart.UserID,
		Items:         domain.OrderItemsFromCart(cart),
		TotalAmount:   cart.Total,
		Status:        domain.OrderStatusCompleted,
		PaymentMethod: method,
	}, nil
}

func (f *fakeServices) ListOrders(_ context.Context, userID string) ([]*domain.Order, error) {
	return []*domain.Order{}, f.record(userID)
}

func (f *fakeServices) GetOrder(_ context.Context, userID, orderID string) (*domain.Order, error) {
	if err := f.record(userID, orderID); err != nil {
		return nil, err
	}
	return &domain.Order{ID: orderID, UserID: userID}, nil
}

func (f *fakeServices) CancelOrder(_ context.Context, userID, orderID string) (*domain.Order, error) {
	if err := f.record(userID, orderID); err != nil {
		return nil, err
	}
	return &domain.Order{ID: orderID, UserID: userID, Status: domain.OrderStatusCancelled}, nil
}

func (f *fakeServices) ListLibrary(_ context.Context, userID string) ([]*domain.LibraryEntry, error) {
	return []*domain.LibraryEntry{}, f.record(userID)
}

func (f *fakeServices) ClaimFreeGame(_ context.Context, userID, gameID string) (*domain.LibraryEntry, error) {
	if err := f.record(userID, gameID); err != nil {
		return nil, err
	}
	return &domain.LibraryEntry{UserID: userID, GameID: gameID}, nil
}

func (f *fakeServices) UpdatePlaytime(_ context.Context, userID, gameID string, minutes int, installed bool) (*domain.LibraryEntry, error) {
	if err := f.record(userID, gameID, minutes, installed); err != nil {
		return nil, err
	}
	return &domain.LibraryEntry{UserID: userID, GameID: gameID, PlayTimeMinutes: minutes}, nil
}

func (f *fakeServices) CreatePost(_ context.Context, userID, content, imageURL string) (*domain.Post, error) {
	if err := f.record(userID, content, imageURL); err != nil {
		return nil, err
	}
	return &domain.Post{ID: "post-1", UserID: userID, Content: content}, nil
}

func (f *fakeServices) ListPosts(_ context.Context, limit int) ([]*domain.Post, error) {
	return []*domain.Post{}, f.record("", limit)
}

func (f *fakeServices) GetPost(_ context.Context, postID string) (*domain.Post, error) {
	if err := f.record("", postID); err != nil {
		return nil, err
	}
	return &domain.Post{ID: postID}, nil
}

func (f *fakeServices) AddComment(_ context.Context, userID, postID, content string) (*domain.Comment, error) {
	if err := f.record(userID, postID, content); err != nil {
		return nil, err
	}
	return &domain.Comment{ID: "c1", PostID: postID, UserID: userID, Content: content}, nil
}

func (f *fakeServices) ListComments(_ context.Context, postID string) ([]*domain.Comment, error) {
	return []*domain.Comment{}, f.record("", postID)
}

func (f *fakeServices) LikePost(_ context.Context, userID, postID string) error {
	return f.record(userID, postID)
}

func (f *fakeServices) GetProfile(_ context.Context, userID string) (*service.Profile, error) {
	if err := f.record(userID); err != nil {
		return nil, err
	}
	return &service.Profile{User: &domain.User{ID: userID}}, nil
}

func (f *fakeServices) UpdateProfile(_ context.Context, userID, username, displayName, bio string) (*service.Profile, error) {
	if err := f.record(userID, username, displayName, bio); err != nil {
		return nil, err
	}
	return &service.Profile{User: &domain.User{ID: userID, Username: username}}, nil
}

func (f *fakeServices) UploadProfileImage(_ context.Context, userID string, data []byte, contentType string) (*service.Profile, error) {
	f.upload = data
	f.uploadCT = contentType
	if err := f.record(userID); err != nil {
		return nil, err
	}
	return &service.Profile{User: &domain.User{ID: userID, ProfileImageURL: "https://blobs.test/x.png"}}, nil
}

func (f *fakeServices) Ask(_ context.Context, userID string, history []chat.Message, question string) (string, error) {
	f.history = history
	if err := f.record(userID, question); err != nil {
		return "", err
	}
	return "Try Celeste.", nil
}
