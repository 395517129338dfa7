package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Announcement is a broadcast item shown on the alumni feed and bundled into
// the newsletter digest.
type Announcement struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedBy string             `bson:"created_by" json:"createdBy"`
	Title     string             `bson:"title" json:"title"`
	Body      string             `bson:"body" json:"body"`
	ImageURL  string             `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	Pinned    bool               `bson:"pinned,omitempty" json:"pinned,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}
