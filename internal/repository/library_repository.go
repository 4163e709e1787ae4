package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/gamestore/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// libraryDocument pins the document id to user and game so an upsert can
// never produce a second entry for the same pair.
type libraryDocument struct {
	ID                  string `bson:"_id"`
	domain.LibraryEntry `bson:",inline"`
}

type mongoLibraryRepository struct {
	collection *mongo.Collection
}

func NewLibraryRepository(db *mongo.Database) LibraryRepository {
	return &mongoLibraryRepository{collection: db.Collection("library")}
}

func libraryID(userID, gameID string) string {
	return userID + ":" + gameID
}

func (m mongoLibraryRepository) Upsert(ctx context.Context, entry *domain.LibraryEntry) error {
	doc := libraryDocument{ID: libraryID(entry.UserID, entry.GameID), LibraryEntry: *entry}
	opts := options.Replace().SetUpsert(true)

	if _, err := m.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		return fmt.Errorf("upsert library entry: %w", err)
	}
	return nil
}

func (m mongoLibraryRepository) Get(ctx context.Context, userID, gameID string) (*domain.LibraryEntry, error) {
	var doc libraryDocument
	err := m.collection.FindOne(ctx, bson.M{"_id": libraryID(userID, gameID)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get library entry: %w", err)
	}
	return &doc.LibraryEntry, nil
}

func (m mongoLibraryRepository) Exists(ctx context.Context, userID, gameID string) (bool, error) {
	n, err := m.collection.CountDocuments(ctx, bson.M{"_id": libraryID(userID, gameID)}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check library entry: %w", err)
	}
	return n > 0, nil
}

func (m mongoLibraryRepository) ListByUser(ctx context.Context, userID string) ([]*domain.LibraryEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "acquired_at", Value: -1}})
	cursor, err := m.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("query library: %w", err)
	}

	var docs []libraryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode library: %w", err)
	}

	entries := make([]*domain.LibraryEntry, len(docs))
	for i := range docs {
		entries[i] = &docs[i].LibraryEntry
	}
	return entries, nil
}

// RecordPlay adds minutes atomically instead of rewriting the entry.
func (m mongoLibraryRepository) RecordPlay(ctx context.Context, userID, gameID string, minutes int, installed bool, at time.Time) error {
	update := bson.M{
		"$inc": bson.M{"play_time_minutes": minutes},
		"$set": bson.M{"last_played": at, "is_installed": installed},
	}
	result, err := m.collection.UpdateOne(ctx, bson.M{"_id": libraryID(userID, gameID)}, update)
	if err != nil {
		return fmt.Errorf("record play: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (m *mongoLibraryRepository) CreateIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "acquired_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create library indexes: %w", err)
	}
	return nil
}
