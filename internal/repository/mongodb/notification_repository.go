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

// NotificationRepository is the in-app notification store contract.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	CreateNotifications(ctx context.Context, items []models.Notification) error
	ListNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, id primitive.ObjectID, userID string) error
}

// MongoNotificationRepository implements NotificationRepository on MongoDB.
type MongoNotificationRepository struct {
	db *mongo.Database
}

// NewNotificationRepository builds a MongoDB backed notification store.
func NewNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{db: db}
}

func (r *MongoNotificationRepository) notifications() *mongo.Collection {
	return r.db.Collection("notifications")
}

func (r *MongoNotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	n.CreatedAt = time.Now()

	if _, err := r.notifications().InsertOne(ctx, n); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// CreateNotifications inserts a batch, one per recipient.
func (r *MongoNotificationRepository) CreateNotifications(ctx context.Context, items []models.Notification) error {
	if len(items) == 0 {
		return nil
	}

	now := time.Now()
	docs := make([]interface{}, 0, len(items))
	for i := range items {
		if items[i].ID.IsZero() {
			items[i].ID = primitive.NewObjectID()
		}
		items[i].CreatedAt = now
		docs = append(docs, items[i])
	}

	if _, err := r.notifications().InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert notifications: %w", err)
	}
	return nil
}

// ListNotifications returns one user's notifications, newest first.
func (r *MongoNotificationRepository) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.notifications().Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list notifications for %s: %w", userID, err)
	}

	var items []models.Notification
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}
	return items, nil
}

// MarkRead flags a notification as read. The user filter prevents marking
// someone else's notification.
func (r *MongoNotificationRepository) MarkRead(ctx context.Context, id primitive.ObjectID, userID string) error {
	filter := bson.M{"_id": id, "user_id": userID}
	res, err := r.notifications().UpdateOne(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("mark notification %s read: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
