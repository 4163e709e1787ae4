package service

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/fjod/gamestore/internal/domain"
	"github.com/fjod/gamestore/internal/events"
	"github.com/fjod/gamestore/internal/logger"
	"github.com/fjod/gamestore/internal/metrics"
	"github.com/fjod/gamestore/internal/repository"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// SideEffects runs the follow-up writes that must never fail the operation
// that triggered them. None of its methods return an error: failures are
// logged and counted.
type SideEffects struct {
	SideEffectDeps
	log *zap.Logger
	wg  sync.WaitGroup
}

type SideEffectDeps struct {
	Posts     repository.PostRepository
	Library   repository.LibraryRepository
	Reviews   repository.ReviewRepository
	Games     repository.GameRepository
	Blobs     BlobStore
	Publisher events.Publisher
}

func NewSideEffects(deps SideEffectDeps, log *zap.Logger) *SideEffects {
	return &SideEffects{SideEffectDeps: deps, log: log}
}

func (e *SideEffects) IncrementCommentCount(ctx context.Context, postID string) {
	if err := e.Posts.IncrementCounter(ctx, postID, "comments_count", 1); err != nil {
		e.failed(ctx, "comment_count", err, zap.String("post_id", postID))
	}
}

// GrantLibrary writes one entry per order line. A failed line does not stop
// the others.
func (e *SideEffects) GrantLibrary(ctx context.Context, order *domain.Order) {
	for _, item := range order.Items {
		entry := &domain.LibraryEntry{
			UserID:        order.UserID,
			GameID:        item.GameID,
			GameTitle:     item.GameTitle,
			GameImage:     item.GameImage,
			OrderID:       order.ID,
			PurchasePrice: item.UnitPrice,
			AcquiredAt:    order.CreatedAt,
		}
		if err := e.Library.Upsert(ctx, entry); err != nil {
			e.failed(ctx, "library_upsert", err,
				zap.String("order_id", order.ID),
				zap.String("game_id", item.GameID))
		}
	}
}

func (e *SideEffects) DeleteBlob(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := e.Blobs.Delete(ctx, path); err != nil {
		e.failed(ctx, "blob_delete", err, zap.String("path", path))
	}
}

// RefreshRating recomputes the game's average rating from its reviews.
func (e *SideEffects) RefreshRating(ctx context.Context, gameID string) {
	reviews, err := e.Reviews.ListByGame(ctx, gameID)
	if err != nil {
		e.failed(ctx, "game_rating", err, zap.String("game_id", gameID))
		return
	}
	avg, count := averageRating(reviews)
	if err := e.Games.UpdateRating(ctx, gameID, avg, count); err != nil {
		e.failed(ctx, "game_rating", err, zap.String("game_id", gameID))
	}
}

// PublishOrderCompleted returns immediately. The publish runs detached from
// the request with its own timeout.
func (e *SideEffects) PublishOrderCompleted(ctx context.Context, order *domain.Order) {
	if e.Publisher == nil {
		return
	}
	event := events.NewOrderCompleted(order)
	detached := context.WithoutCancel(ctx)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, cancel := context.WithTimeout(detached, publishTimeout)
		defer cancel()
		if err := e.Publisher.PublishOrderCompleted(ctx, event); err != nil {
			e.failed(ctx, "order_event", err, zap.String("order_id", event.OrderID))
		}
	}()
}

// Wait blocks until detached publishes have finished.
func (e *SideEffects) Wait() {
	e.wg.Wait()
}

func (e *SideEffects) failed(ctx context.Context, effect string, err error, fields ...zap.Field) {
	metrics.RecordSideEffectFailure(effect)
	fields = append(fields, zap.String("effect", effect), zap.Error(err))
	logger.WithTrace(ctx, e.log).Warn("side effect failed", fields...)
}

func averageRating(reviews []*domain.Review) (float64, int) {
	if len(reviews) == 0 {
		return 0, 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(reviews))
	return math.Round(avg*10) / 10, len(reviews)
}
