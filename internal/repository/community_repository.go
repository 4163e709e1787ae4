package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/gamestore/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoPostRepository struct {
	collection *mongo.Collection
}

func NewPostRepository(db *mongo.Database) PostRepository {
	return &mongoPostRepository{collection: db.Collection("posts")}
}

func (m mongoPostRepository) CreatePost(ctx context.Context, post *domain.Post) error {
	if _, err := m.collection.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (m mongoPostRepository) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &post, nil
}

func (m mongoPostRepository) ListPosts(ctx context.Context, limit int64) ([]*domain.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := m.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	posts := make([]*domain.Post, 0)
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}

// IncrementCounter applies $inc to one of the post counters.
func (m mongoPostRepository) IncrementCounter(ctx context.Context, id, field string, delta int) error {
	result, err := m.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{field: delta}})
	if err != nil {
		return fmt.Errorf("increment %s: %w", field, err)
	}
	if result.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

type mongoCommentRepository struct {
	collection *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) CommentRepository {
	return &mongoCommentRepository{collection: db.Collection("comments")}
}

func (m mongoCommentRepository) CreateComment(ctx context.Context, comment *domain.Comment) error {
	if _, err := m.collection.InsertOne(ctx, comment); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (m mongoCommentRepository) ListByPost(ctx context.Context, postID string) ([]*domain.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := m.collection.Find(ctx, bson.M{"post_id": postID}, opts)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	comments := make([]*domain.Comment, 0)
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return comments, nil
}

type mongoReviewRepository struct {
	collection *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) ReviewRepository {
	return &mongoReviewRepository{collection: db.Collection("reviews")}
}

// UpsertReview overwrites an existing review but keeps its created_at, which
// it copies back into review.
func (m mongoReviewRepository) UpsertReview(ctx context.Context, review *domain.Review) error {
	update := bson.M{
		"$set": bson.M{
			"game_id":    review.GameID,
			"user_id":    review.UserID,
			"username":   review.Username,
			"rating":     review.Rating,
			"content":    review.Content,
			"updated_at": review.UpdatedAt,
		},
		"$setOnInsert": bson.M{"created_at": review.CreatedAt},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored domain.Review
	err := m.collection.FindOneAndUpdate(ctx, bson.M{"_id": review.ID}, update, opts).Decode(&stored)
	if err != nil {
		return fmt.Errorf("upsert review: %w", err)
	}
	review.CreatedAt = stored.CreatedAt
	return nil
}

func (m mongoReviewRepository) ListByGame(ctx context.Context, gameID string) ([]*domain.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.collection.Find(ctx, bson.M{"game_id": gameID}, opts)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	reviews := make([]*domain.Review, 0)
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	return reviews, nil
}
