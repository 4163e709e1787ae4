package domain

import "time"

type User struct {
	ID               string    `bson:"_id" json:"id"`
	Email            string    `bson:"email" json:"email"`
	Username         string    `bson:"username" json:"username"`
	DisplayName      string    `bson:"display_name" json:"display_name"`
	Bio              string    `bson:"bio" json:"bio"`
	ProfileImageURL  string    `bson:"profile_image_url" json:"profile_image_url"`
	ProfileImagePath string    `bson:"profile_image_path" json:"-"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at" json:"updated_at"`
}
