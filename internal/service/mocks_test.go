package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fjod/gamestore/internal/cache"
	"github.com/fjod/gamestore/internal/domain"
	"github.com/fjod/gamestore/internal/events"
	"github.com/fjod/gamestore/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func copyCart(c *domain.Cart) *domain.Cart {
	cp := *c
	cp.Items = append([]domain.CartItem{}, c.Items...)
	return &cp
}

type mockCartRepo struct {
	m       sync.Mutex
	carts   map[string]*domain.Cart
	getErr  error
	saveErr error
	gets    int
	// beforeSave runs inside SaveCart before the version check.
	beforeSave func(stored *domain.Cart)
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{carts: map[string]*domain.Cart{}}
}

func (m *mockCartRepo) GetCart(_ context.Context, userID string) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.gets++
	if m.getErr != nil {
		return nil, m.getErr
	}
	c, ok := m.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return copyCart(c), nil
}

func (m *mockCartRepo) CreateCart(_ context.Context, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if _, ok := m.carts[cart.UserID]; ok {
		return repository.ErrDuplicate
	}
	m.carts[cart.UserID] = copyCart(cart)
	return nil
}

func (m *mockCartRepo) SaveCart(_ context.Context, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	stored, ok := m.carts[cart.UserID]
	if !ok {
		return repository.ErrVersionConflict
	}
	if m.beforeSave != nil {
		m.beforeSave(stored)
	}
	if stored.Version != cart.Version {
		return repository.ErrVersionConflict
	}
	cart.Version++
	m.carts[cart.UserID] = copyCart(cart)
	return nil
}

func (m *mockCartRepo) stored(userID string) *domain.Cart {
	m.m.Lock()
	defer m.m.Unlock()
	if c, ok := m.carts[userID]; ok {
		return copyCart(c)
	}
	return nil
}

// mockCache keeps the higher version on Set, like the Redis cache.
type mockCache struct {
	m       sync.Mutex
	carts   map[string]*domain.Cart
	getErr  error
	setErr  error
	delErr  error
	sets    int
	deletes int
}

func newMockCache() *mockCache {
	return &mockCache{carts: map[string]*domain.Cart{}}
}

func (m *mockCache) Get(_ context.Context, userID string) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	c, ok := m.carts[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return copyCart(c), nil
}

func (m *mockCache) Set(_ context.Context, userID string, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	if cur, ok := m.carts[userID]; ok && cur.Version > cart.Version {
		return nil
	}
	m.carts[userID] = copyCart(cart)
	return nil
}

func (m *mockCache) Delete(_ context.Context, userID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.deletes++
	delete(m.carts, userID)
	return m.delErr
}

type mockGameRepo struct {
	games     map[string]*domain.Game
	err       error
	ratingErr error
	ratings   map[string]float64
}

func newMockGameRepo(games ...*domain.Game) *mockGameRepo {
	m := &mockGameRepo{games: map[string]*domain.Game{}, ratings: map[string]float64{}}
	for _, g := range games {
		m.games[g.ID] = g
	}
	return m
}

func (m *mockGameRepo) ListGames(context.Context) ([]*domain.Game, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*domain.Game, 0, len(m.games))
	for _, g := range m.games {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (m *mockGameRepo) GetGame(_ context.Context, id string) (*domain.Game, error) {
	if m.err != nil {
		return nil, m.err
	}
	g, ok := m.games[id]
	if !ok {
		return nil, repository.ErrGameNotFound
	}
	return g, nil
}

func (m *mockGameRepo) UpsertGame(_ context.Context, g *domain.Game) error {
	if m.err != nil {
		return m.err
	}
	m.games[g.ID] = g
	return nil
}

func (m *mockGameRepo) UpdateRating(_ context.Context, id string, rating float64, count int) error {
	if m.ratingErr != nil {
		return m.ratingErr
	}
	m.ratings[id] = rating
	if g, ok := m.games[id]; ok {
		g.Rating = rating
		g.RatingCount = count
	}
	return nil
}

type mockLibraryRepo struct {
	m         sync.Mutex
	entries   map[string]*domain.LibraryEntry
	upsertErr error
	existsErr error
	upserts   int
}

func newMockLibraryRepo() *mockLibraryRepo {
	return &mockLibraryRepo{entries: map[string]*domain.LibraryEntry{}}
}

func (m *mockLibraryRepo) key(userID, gameID string) string { return userID + ":" + gameID }

func (m *mockLibraryRepo) Upsert(_ context.Context, e *domain.LibraryEntry) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.upserts++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	cp := *e
	m.entries[m.key(e.UserID, e.GameID)] = &cp
	return nil
}

func (m *mockLibraryRepo) Get(_ context.Context, userID, gameID string) (*domain.LibraryEntry, error) {
	m.m.Lock()
	defer m.m.Unlock()
	e, ok := m.entries[m.key(userID, gameID)]
	if !ok {
		return nil, repository.ErrEntryNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *mockLibraryRepo) Exists(_ context.Context, userID, gameID string) (bool, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.entries[m.key(userID, gameID)]
	return ok, nil
}

func (m *mockLibraryRepo) ListByUser(_ context.Context, userID string) ([]*domain.LibraryEntry, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var out []*domain.LibraryEntry
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockLibraryRepo) RecordPlay(_ context.Context, userID, gameID string, minutes int, installed bool, at time.Time) error {
	m.m.Lock()
	defer m.m.Unlock()
	e, ok := m.entries[m.key(userID, gameID)]
	if !ok {
		return repository.ErrEntryNotFound
	}
	e.PlayTimeMinutes += minutes
	e.IsInstalled = installed
	e.LastPlayed = &at
	return nil
}

type mockOrderRepo struct {
	orders    map[string]*domain.Order
	createErr error
	updateErr error
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: map[string]*domain.Order{}}
}

func (m *mockOrderRepo) CreateOrder(_ context.Context, o *domain.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *mockOrderRepo) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) ListOrdersByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id string, from, to domain.OrderStatus, now time.Time) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	o, ok := m.orders[id]
	if !ok || o.Status != from {
		return repository.ErrOrderNotFound
	}
	o.Status = to
	o.UpdatedAt = now
	return nil
}

type mockUserRepo struct {
	users     map[string]*domain.User
	createErr error
	imageErr  error
}

func newMockUserRepo(users ...*domain.User) *mockUserRepo {
	m := &mockUserRepo{users: map[string]*domain.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) CreateUser(_ context.Context, u *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.users[u.ID]; ok {
		return repository.ErrDuplicate
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetUser(_ context.Context, id string) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, id, username, displayName, bio string, now time.Time) error {
	u, ok := m.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Username, u.DisplayName, u.Bio, u.UpdatedAt = username, displayName, bio, now
	return nil
}

func (m *mockUserRepo) UpdateProfileImage(_ context.Context, id, url, path string, now time.Time) error {
	if m.imageErr != nil {
		return m.imageErr
	}
	u, ok := m.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.ProfileImageURL, u.ProfileImagePath, u.UpdatedAt = url, path, now
	return nil
}

type mockPostRepo struct {
	posts   map[string]*domain.Post
	incErr  error
	incCall int
}

func newMockPostRepo(posts ...*domain.Post) *mockPostRepo {
	m := &mockPostRepo{posts: map[string]*domain.Post{}}
	for _, p := range posts {
		m.posts[p.ID] = p
	}
	return m
}

func (m *mockPostRepo) CreatePost(_ context.Context, p *domain.Post) error {
	m.posts[p.ID] = p
	return nil
}

func (m *mockPostRepo) GetPost(_ context.Context, id string) (*domain.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, repository.ErrPostNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPostRepo) ListPosts(_ context.Context, limit int64) ([]*domain.Post, error) {
	out := make([]*domain.Post, 0, len(m.posts))
	for _, p := range m.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockPostRepo) IncrementCounter(_ context.Context, id, field string, delta int) error {
	m.incCall++
	if m.incErr != nil {
		return m.incErr
	}
	p, ok := m.posts[id]
	if !ok {
		return repository.ErrPostNotFound
	}
	switch field {
	case "comments_count":
		p.CommentsCount += delta
	case "likes_count":
		p.LikesCount += delta
	}
	return nil
}

type mockCommentRepo struct {
	comments  []*domain.Comment
	createErr error
}

func (m *mockCommentRepo) CreateComment(_ context.Context, c *domain.Comment) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.comments = append(m.comments, c)
	return nil
}

func (m *mockCommentRepo) ListByPost(_ context.Context, postID string) ([]*domain.Comment, error) {
	var out []*domain.Comment
	for _, c := range m.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

type mockReviewRepo struct {
	reviews map[string]*domain.Review
	err     error
}

func newMockReviewRepo() *mockReviewRepo {
	return &mockReviewRepo{reviews: map[string]*domain.Review{}}
}

func (m *mockReviewRepo) UpsertReview(_ context.Context, r *domain.Review) error {
	if m.err != nil {
		return m.err
	}
	if prev, ok := m.reviews[r.ID]; ok {
		r.CreatedAt = prev.CreatedAt
	}
	m.reviews[r.ID] = r
	return nil
}

func (m *mockReviewRepo) ListByGame(_ context.Context, gameID string) ([]*domain.Review, error) {
	var out []*domain.Review
	for _, r := range m.reviews {
		if r.GameID == gameID {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockBlobStore struct {
	uploads   map[string][]byte
	deleted   []string
	uploadErr error
	deleteErr error
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{uploads: map[string][]byte{}}
}

func (m *mockBlobStore) Upload(_ context.Context, path string, data []byte, _ string) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	m.uploads[path] = data
	return nil
}

func (m *mockBlobStore) Delete(_ context.Context, path string) error {
	m.deleted = append(m.deleted, path)
	return m.deleteErr
}

func (m *mockBlobStore) PublicURL(path string) string {
	return "https://blobs.test/" + path
}

type mockPublisher struct {
	m      sync.Mutex
	events []*events.OrderCompleted
	err    error
}

func (m *mockPublisher) PublishOrderCompleted(_ context.Context, e *events.OrderCompleted) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func (m *mockPublisher) published() []*events.OrderCompleted {
	m.m.Lock()
	defer m.m.Unlock()
	return append([]*events.OrderCompleted{}, m.events...)
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testGame(id, title, price string) *domain.Game {
	return &domain.Game{
		ID:       id,
		Title:    title,
		Price:    money(price),
		IsActive: true,
		Stock:    10,
	}
}

func fixedClock() func() time.Time {
	t := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}
