package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/alumnilink/backend/internal/domain/models"
)

// AnnouncementRepository is the announcement store contract.
type AnnouncementRepository interface {
	CreateAnnouncement(ctx context.Context, a *models.Announcement) (primitive.ObjectID, error)
	GetAnnouncementByID(ctx context.Context, id primitive.ObjectID) (*models.Announcement, error)
	ListAnnouncements(ctx context.Context) ([]models.Announcement, error)
	ListAnnouncementsSince(ctx context.Context, since time.Time) ([]models.Announcement, error)
	UpdateAnnouncement(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	DeleteAnnouncement(ctx context.Context, id primitive.ObjectID) error
}

// MongoAnnouncementRepository implements AnnouncementRepository on MongoDB.
type MongoAnnouncementRepository struct {
	db *mongo.Database
}

// NewAnnouncementRepository builds a MongoDB backed announcement store.
func NewAnnouncementRepository(db *mongo.Database) *MongoAnnouncementRepository {
	return &MongoAnnouncementRepository{db: db}
}

func (r *MongoAnnouncementRepository) announcements() *mongo.Collection {
	return r.db.Collection("announcements")
}

func (r *MongoAnnouncementRepository) CreateAnnouncement(ctx context.Context, a *models.Announcement) (primitive.ObjectID, error) {
	now := time.Now()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := r.announcements().InsertOne(ctx, a); err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert announcement: %w", err)
	}
	return a.ID, nil
}

func (r *MongoAnnouncementRepository) GetAnnouncementByID(ctx context.Context, id primitive.ObjectID) (*models.Announcement, error) {
	var a models.Announcement
	err := r.announcements().FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find announcement %s: %w", id.Hex(), err)
	}
	return &a, nil
}

// ListAnnouncements returns all announcements, pinned first, then newest.
func (r *MongoAnnouncementRepository) ListAnnouncements(ctx context.Context) ([]models.Announcement, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "pinned", Value: -1},
		{Key: "created_at", Value: -1},
	})
	cursor, err := r.announcements().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}

	var items []models.Announcement
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode announcements: %w", err)
	}
	return items, nil
}

// ListAnnouncementsSince returns announcements created after the given
// instant, oldest first. Used for the newsletter digest.
func (r *MongoAnnouncementRepository) ListAnnouncementsSince(ctx context.Context, since time.Time) ([]models.Announcement, error) {
	filter := bson.M{"created_at": bson.M{"$gte": since}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.announcements().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list announcements since %s: %w", since.Format(time.RFC3339), err)
	}

	var items []models.Announcement
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode announcements: %w", err)
	}
	return items, nil
}

func (r *MongoAnnouncementRepository) UpdateAnnouncement(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now()
	res, err := r.announcements().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update announcement %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoAnnouncementRepository) DeleteAnnouncement(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.announcements().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete announcement %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
