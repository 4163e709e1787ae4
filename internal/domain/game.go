package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Game struct {
	ID          string          `bson:"_id" json:"id"`
	Title       string          `bson:"title" json:"title"`
	Description string          `bson:"description" json:"description"`
	Developer   string          `bson:"developer" json:"developer"`
	Publisher   string          `bson:"publisher" json:"publisher"`
	Category    string          `bson:"category" json:"category"`
	Price       decimal.Decimal `bson:"price" json:"price"`
	IsFree      bool            `bson:"is_free" json:"is_free"`
	IsFeatured  bool            `bson:"is_featured" json:"is_featured"`
	IsActive    bool            `bson:"is_active" json:"is_active"`
	Stock       int             `bson:"stock" json:"stock"`
	Rating      float64         `bson:"rating" json:"rating"`
	RatingCount int             `bson:"rating_count" json:"rating_count"`
	ImageURL    string          `bson:"image_url" json:"image_url"`
	ReleaseDate time.Time       `bson:"release_date" json:"release_date"`
	CreatedAt   time.Time       `bson:"created_at" json:"created_at"`
}
