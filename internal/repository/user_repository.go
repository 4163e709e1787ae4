package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/gamestore/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoUserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{collection: db.Collection("users")}
}

func (m mongoUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	if _, err := m.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (m mongoUserRepository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (m mongoUserRepository) UpdateProfile(ctx context.Context, id, username, displayName, bio string, now time.Time) error {
	return m.set(ctx, id, bson.M{
		"username":     username,
		"display_name": displayName,
		"bio":          bio,
		"updated_at":   now,
	})
}

func (m mongoUserRepository) UpdateProfileImage(ctx context.Context, id, url, path string, now time.Time) error {
	return m.set(ctx, id, bson.M{
		"profile_image_url":  url,
		"profile_image_path": path,
		"updated_at":         now,
	})
}

func (m mongoUserRepository) set(ctx context.Context, id string, fields bson.M) error {
	result, err := m.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
