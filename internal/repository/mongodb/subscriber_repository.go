package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/alumnilink/backend/internal/domain/models"
)

// SubscriberRepository is the newsletter subscriber store contract.
type SubscriberRepository interface {
	Subscribe(ctx context.Context, sub *models.Subscriber) error
	Unsubscribe(ctx context.Context, email string) error
	ListSubscribers(ctx context.Context) ([]models.Subscriber, error)
}

// MongoSubscriberRepository implements SubscriberRepository on MongoDB.
type MongoSubscriberRepository struct {
	db *mongo.Database
}

// NewSubscriberRepository builds a MongoDB backed subscriber store.
func NewSubscriberRepository(db *mongo.Database) *MongoSubscriberRepository {
	return &MongoSubscriberRepository{db: db}
}

func (r *MongoSubscriberRepository) subscribers() *mongo.Collection {
	return r.db.Collection("newsletter_subscribers")
}

// Subscribe upserts by email so repeated subscriptions stay idempotent.
func (r *MongoSubscriberRepository) Subscribe(ctx context.Context, sub *models.Subscriber) error {
	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	if sub.SubscribedAt.IsZero() {
		sub.SubscribedAt = time.Now()
	}

	update := bson.M{
		"$setOnInsert": bson.M{"_id": sub.ID, "subscribed_at": sub.SubscribedAt},
		"$set":         bson.M{"email": sub.Email, "name": sub.Name},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := r.subscribers().UpdateOne(ctx, bson.M{"email": sub.Email}, update, opts); err != nil {
		return fmt.Errorf("subscribe %s: %w", sub.Email, err)
	}
	return nil
}

// Unsubscribe removes the subscriber document if present.
func (r *MongoSubscriberRepository) Unsubscribe(ctx context.Context, email string) error {
	if _, err := r.subscribers().DeleteOne(ctx, bson.M{"email": email}); err != nil {
		return fmt.Errorf("unsubscribe %s: %w", email, err)
	}
	return nil
}

// ListSubscribers returns every newsletter recipient.
func (r *MongoSubscriberRepository) ListSubscribers(ctx context.Context) ([]models.Subscriber, error) {
	cursor, err := r.subscribers().Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}

	var subs []models.Subscriber
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, fmt.Errorf("decode subscribers: %w", err)
	}
	return subs, nil
}
