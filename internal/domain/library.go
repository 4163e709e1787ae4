package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LibraryEntry is a single owned game. There is at most one per (UserID, GameID).
type LibraryEntry struct {
	UserID          string          `bson:"user_id" json:"user_id"`
	GameID          string          `bson:"game_id" json:"game_id"`
	GameTitle       string          `bson:"game_title" json:"game_title"`
	GameImage       string          `bson:"game_image,omitempty" json:"game_image,omitempty"`
	OrderID         string          `bson:"order_id,omitempty" json:"order_id,omitempty"`
	PurchasePrice   decimal.Decimal `bson:"purchase_price" json:"purchase_price"`
	PlayTimeMinutes int             `bson:"play_time_minutes" json:"play_time_minutes"`
	LastPlayed      *time.Time      `bson:"last_played,omitempty" json:"last_played,omitempty"`
	IsInstalled     bool            `bson:"is_installed" json:"is_installed"`
	AcquiredAt      time.Time       `bson:"acquired_at" json:"acquired_at"`
}
