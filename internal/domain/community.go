package domain

import "time"

type Post struct {
	ID            string    `bson:"_id" json:"id"`
	UserID        string    `bson:"user_id" json:"user_id"`
	Username      string    `bson:"username" json:"username"`
	Content       string    `bson:"content" json:"content"`
	ImageURL      string    `bson:"image_url,omitempty" json:"image_url,omitempty"`
	LikesCount    int       `bson:"likes_count" json:"likes_count"`
	CommentsCount int       `bson:"comments_count" json:"comments_count"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}

type Comment struct {
	ID        string    `bson:"_id" json:"id"`
	PostID    string    `bson:"post_id" json:"post_id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Username  string    `bson:"username" json:"username"`
	Content   string    `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

type Review struct {
	ID        string    `bson:"_id" json:"id"`
	GameID    string    `bson:"game_id" json:"game_id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Username  string    `bson:"username" json:"username"`
	Rating    int       `bson:"rating" json:"rating"`
	Content   string    `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
