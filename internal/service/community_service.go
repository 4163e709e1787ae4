package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fjod/gamestore/internal/domain"
	"github.com/fjod/gamestore/internal/repository"
	"github.com/google/uuid"
)

const (
	maxPostLength    = 2000
	maxCommentLength = 500
	defaultPostLimit = 20
	maxPostLimit     = 100
)

type usernameReader interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

type CommunityService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	users    usernameReader
	effects  *SideEffects
	now      func() time.Time
}

func NewCommunityService(posts repository.PostRepository, comments repository.CommentRepository, users usernameReader, effects *SideEffects) *CommunityService {
	return &CommunityService{
		posts:    posts,
		comments: comments,
		users:    users,
		effects:  effects,
		now:      time.Now,
	}
}

func (s *CommunityService) CreatePost(ctx context.Context, userID, content, imageURL string) (*domain.Post, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	content, err := validateText(content, maxPostLength, "post")
	if err != nil {
		return nil, err
	}
	username, err := authorName(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}

	post := &domain.Post{
		ID:        uuid.NewString(),
		UserID:    userID,
		Username:  username,
		Content:   content,
		ImageURL:  strings.TrimSpace(imageURL),
		CreatedAt: s.now(),
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("%w: create post: %v", ErrRemote, err)
	}
	return post, nil
}

// ListPosts returns the newest posts first. A non-positive limit means the
// default page size.
func (s *CommunityService) ListPosts(ctx context.Context, limit int) ([]*domain.Post, error) {
	if limit <= 0 {
		limit = defaultPostLimit
	}
	if limit > maxPostLimit {
		limit = maxPostLimit
	}
	posts, err := s.posts.ListPosts(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("%w: list posts: %v", ErrRemote, err)
	}
	return posts, nil
}

func (s *CommunityService) GetPost(ctx context.Context, postID string) (*domain.Post, error) {
	post, err := s.posts.GetPost(ctx, postID)
	if errors.Is(err, repository.ErrPostNotFound) {
		return nil, fmt.Errorf("%w: post %s", ErrNotFound, postID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get post: %v", ErrRemote, err)
	}
	return post, nil
}

// AddComment succeeds once the comment is stored. The post's comment counter
// is bumped afterwards and its failure is only logged.
func (s *CommunityService) AddComment(ctx context.Context, userID, postID, content string) (*domain.Comment, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	content, err := validateText(content, maxCommentLength, "comment")
	if err != nil {
		return nil, err
	}
	if _, err := s.GetPost(ctx, postID); err != nil {
		return nil, err
	}
	username, err := authorName(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		UserID:    userID,
		Username:  username,
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("%w: create comment: %v", ErrRemote, err)
	}

	s.effects.IncrementCommentCount(ctx, postID)
	return comment, nil
}

func (s *CommunityService) ListComments(ctx context.Context, postID string) ([]*domain.Comment, error) {
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("%w: list comments: %v", ErrRemote, err)
	}
	return comments, nil
}

func (s *CommunityService) LikePost(ctx context.Context, userID, postID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	err := s.posts.IncrementCounter(ctx, postID, "likes_count", 1)
	if errors.Is(err, repository.ErrPostNotFound) {
		return fmt.Errorf("%w: post %s", ErrNotFound, postID)
	}
	if err != nil {
		return fmt.Errorf("%w: like post: %v", ErrRemote, err)
	}
	return nil
}

func validateText(text string, maxLen int, what string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: %s must not be empty", ErrInvalidInput, what)
	}
	if utf8.RuneCountInString(text) > maxLen {
		return "", fmt.Errorf("%w: %s is longer than %d characters", ErrInvalidInput, what, maxLen)
	}
	return text, nil
}

func authorName(ctx context.Context, users usernameReader, userID string) (string, error) {
	user, err := users.GetUser(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return "", fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	if err != nil {
		return "", fmt.Errorf("%w: get user: %v", ErrRemote, err)
	}
	if user.Username != "" {
		return user.Username, nil
	}
	return user.DisplayName, nil
}
