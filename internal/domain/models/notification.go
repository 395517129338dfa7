package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationKind labels what produced the notification.
type NotificationKind string

const (
	NotificationKindAnnouncement NotificationKind = "announcement"
	NotificationKindSponsorship  NotificationKind = "sponsorship"
)

// Notification is a per-user in-app notification.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"userId"`
	Kind      NotificationKind   `bson:"kind" json:"kind"`
	Message   string             `bson:"message" json:"message"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
