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

type mongoGameRepository struct {
	collection *mongo.Collection
}

func NewGameRepository(db *mongo.Database) GameRepository {
	return &mongoGameRepository{collection: db.Collection("games")}
}

func (m mongoGameRepository) ListGames(ctx context.Context) ([]*domain.Game, error) {
	opts := options.Find().SetSort(bson.D{{Key: "title", Value: 1}})
	cursor, err := m.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}

	games := make([]*domain.Game, 0)
	if err := cursor.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("failed to decode games: %w", err)
	}
	return games, nil
}

func (m mongoGameRepository) GetGame(ctx context.Context, id string) (*domain.Game, error) {
	var game domain.Game
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&game)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return &game, nil
}

func (m mongoGameRepository) UpsertGame(ctx context.Context, game *domain.Game) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := m.collection.ReplaceOne(ctx, bson.M{"_id": game.ID}, game, opts); err != nil {
		return fmt.Errorf("failed to upsert game: %w", err)
	}
	return nil
}

func (m mongoGameRepository) UpdateRating(ctx context.Context, id string, rating float64, count int) error {
	update := bson.M{"$set": bson.M{"rating": rating, "rating_count": count}}
	result, err := m.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update rating: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrGameNotFound
	}
	return nil
}
