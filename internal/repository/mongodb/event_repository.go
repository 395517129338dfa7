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
	"go.uber.org/zap"

	"github.com/alumnilink/backend/internal/domain/models"
)

// EventRepository is the event store contract, including the
// sponsorship-relevant surface.
type EventRepository interface {
	CreateEvent(ctx context.Context, event *models.Event) (primitive.ObjectID, error)
	GetEventByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	UpdateEvent(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	DeleteEvent(ctx context.Context, id primitive.ObjectID) error
	// UpdateSponsorshipContribution applies currentAmount += amount as one
	// atomic update, never a read-then-write pair.
	UpdateSponsorshipContribution(ctx context.Context, id primitive.ObjectID, amount int64) error
	GetEventSponsorship(ctx context.Context, id primitive.ObjectID) (*models.Sponsorship, error)
	AddAttendee(ctx context.Context, id primitive.ObjectID, userID string) error
	RemoveAttendee(ctx context.Context, id primitive.ObjectID, userID string) error
}

// MongoEventRepository implements EventRepository on MongoDB.
type MongoEventRepository struct {
	db     *mongo.Database
	logger *zap.Logger
}

// NewEventRepository builds a MongoDB backed event store.
func NewEventRepository(db *mongo.Database, logger *zap.Logger) *MongoEventRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MongoEventRepository{db: db, logger: logger}
}

func (r *MongoEventRepository) events() *mongo.Collection {
	return r.db.Collection("events")
}

// CreateEvent inserts an event document.
func (r *MongoEventRepository) CreateEvent(ctx context.Context, event *models.Event) (primitive.ObjectID, error) {
	now := time.Now()
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	event.CreatedAt = now
	event.UpdatedAt = now

	if _, err := r.events().InsertOne(ctx, event); err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert event: %w", err)
	}
	return event.ID, nil
}

// GetEventByID fetches one event.
func (r *MongoEventRepository) GetEventByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	var event models.Event
	err := r.events().FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find event %s: %w", id.Hex(), err)
	}
	return &event, nil
}

// ListEvents returns all events, soonest start first.
func (r *MongoEventRepository) ListEvents(ctx context.Context) ([]models.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}})
	cursor, err := r.events().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	var events []models.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}

// UpdateEvent applies a partial $set. Callers decide which fields change;
// last write wins.
func (r *MongoEventRepository) UpdateEvent(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now()
	res, err := r.events().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update event %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEvent removes an event document.
func (r *MongoEventRepository) DeleteEvent(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.events().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete event %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateSponsorshipContribution increments the running total with a single
// atomic $inc so concurrent contributions cannot lose updates.
func (r *MongoEventRepository) UpdateSponsorshipContribution(ctx context.Context, id primitive.ObjectID, amount int64) error {
	update := bson.M{
		"$inc": bson.M{"sponsorship.current_amount": amount},
		"$set": bson.M{"updated_at": time.Now()},
	}
	res, err := r.events().UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("increment sponsorship total for event %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetEventSponsorship returns the sponsorship sub-document, or ErrNotFound
// when the event is absent. A nil sponsorship means the event never enabled
// fundraising.
func (r *MongoEventRepository) GetEventSponsorship(ctx context.Context, id primitive.ObjectID) (*models.Sponsorship, error) {
	event, err := r.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return event.Sponsorship, nil
}

// AddAttendee records an RSVP. $addToSet keeps the operation idempotent.
func (r *MongoEventRepository) AddAttendee(ctx context.Context, id primitive.ObjectID, userID string) error {
	update := bson.M{
		"$addToSet": bson.M{"attendees": userID},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	res, err := r.events().UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("add attendee to event %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveAttendee cancels an RSVP.
func (r *MongoEventRepository) RemoveAttendee(ctx context.Context, id primitive.ObjectID, userID string) error {
	update := bson.M{
		"$pull": bson.M{"attendees": userID},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	res, err := r.events().UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("remove attendee from event %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
