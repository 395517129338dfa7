package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/alumnilink/backend/internal/domain/models"
)

// DonationRepository is the donation ledger contract. The ledger is
// append-only: entries are inserted once and only their payment status ever
// changes.
type DonationRepository interface {
	CreateDonation(ctx context.Context, donation *models.Donation) (primitive.ObjectID, error)
	GetDonationByID(ctx context.Context, id primitive.ObjectID) (*models.Donation, error)
	GetAllDonations(ctx context.Context) ([]models.Donation, error)
	ListDonationsByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Donation, error)
	// AddSponsorshipContribution appends the donation and increments the
	// event's running total. Both writes run in one transaction when the
	// deployment supports it; otherwise they run sequentially.
	AddSponsorshipContribution(ctx context.Context, eventID primitive.ObjectID, donation *models.Donation) error
	// ConfirmByCheckoutRef flips a pending donation to confirmed and returns
	// the updated entry.
	ConfirmByCheckoutRef(ctx context.Context, checkoutRef string) (*models.Donation, error)
	FailByCheckoutRef(ctx context.Context, checkoutRef string) error
}

// MongoDonationRepository implements DonationRepository on MongoDB.
type MongoDonationRepository struct {
	db     *mongo.Database
	logger *zap.Logger
}

// NewDonationRepository builds a MongoDB backed donation ledger.
func NewDonationRepository(db *mongo.Database, logger *zap.Logger) *MongoDonationRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MongoDonationRepository{db: db, logger: logger}
}

func (r *MongoDonationRepository) donations() *mongo.Collection {
	return r.db.Collection("donations")
}

func (r *MongoDonationRepository) events() *mongo.Collection {
	return r.db.Collection("events")
}

// CreateDonation inserts one ledger entry. No idempotency check is performed:
// two identical submissions produce two rows.
func (r *MongoDonationRepository) CreateDonation(ctx context.Context, donation *models.Donation) (primitive.ObjectID, error) {
	now := time.Now()
	if donation.ID.IsZero() {
		donation.ID = primitive.NewObjectID()
	}
	if donation.ReceiveDate.IsZero() {
		donation.ReceiveDate = now
	}
	donation.CreatedAt = now
	donation.UpdatedAt = now

	if _, err := r.donations().InsertOne(ctx, donation); err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert donation: %w", err)
	}
	return donation.ID, nil
}

// GetDonationByID fetches a single ledger entry.
func (r *MongoDonationRepository) GetDonationByID(ctx context.Context, id primitive.ObjectID) (*models.Donation, error) {
	var donation models.Donation
	err := r.donations().FindOne(ctx, bson.M{"_id": id}).Decode(&donation)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find donation %s: %w", id.Hex(), err)
	}
	return &donation, nil
}

// GetAllDonations returns the full, unfiltered ledger. Reports re-read it on
// every request.
func (r *MongoDonationRepository) GetAllDonations(ctx context.Context) ([]models.Donation, error) {
	cursor, err := r.donations().Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}

	var donations []models.Donation
	if err := cursor.All(ctx, &donations); err != nil {
		return nil, fmt.Errorf("decode donations: %w", err)
	}
	return donations, nil
}

// ListDonationsByEvent returns the ledger entries linked to one event.
func (r *MongoDonationRepository) ListDonationsByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Donation, error) {
	cursor, err := r.donations().Find(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return nil, fmt.Errorf("list donations for event %s: %w", eventID.Hex(), err)
	}

	var donations []models.Donation
	if err := cursor.All(ctx, &donations); err != nil {
		return nil, fmt.Errorf("decode donations: %w", err)
	}
	return donations, nil
}

// AddSponsorshipContribution appends the donation and applies a single atomic
// $inc to the event's sponsorship total. On replica sets both writes share a
// session transaction, closing the ledger/counter drift gap; standalone
// deployments fall back to the sequential pair.
func (r *MongoDonationRepository) AddSponsorshipContribution(ctx context.Context, eventID primitive.ObjectID, donation *models.Donation) error {
	now := time.Now()
	if donation.ID.IsZero() {
		donation.ID = primitive.NewObjectID()
	}
	if donation.ReceiveDate.IsZero() {
		donation.ReceiveDate = now
	}
	donation.CreatedAt = now
	donation.UpdatedAt = now

	session, err := r.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, r.appendAndIncrement(sc, eventID, donation)
	})
	if err == nil {
		return nil
	}

	if !transactionsUnsupported(err) {
		return fmt.Errorf("sponsorship contribution transaction: %w", err)
	}

	r.logger.Warn("mongodb transactions unavailable, writing ledger and counter sequentially",
		zap.String("event_id", eventID.Hex()))
	return r.appendAndIncrement(ctx, eventID, donation)
}

func (r *MongoDonationRepository) appendAndIncrement(ctx context.Context, eventID primitive.ObjectID, donation *models.Donation) error {
	if _, err := r.donations().InsertOne(ctx, donation); err != nil {
		return fmt.Errorf("insert donation: %w", err)
	}

	update := bson.M{
		"$inc": bson.M{"sponsorship.current_amount": donation.MonetaryValue},
		"$set": bson.M{"updated_at": time.Now()},
	}
	res, err := r.events().UpdateOne(ctx, bson.M{"_id": eventID}, update)
	if err != nil {
		return fmt.Errorf("increment sponsorship total: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ConfirmByCheckoutRef marks a pending donation confirmed after the gateway
// callback and returns the updated entry.
func (r *MongoDonationRepository) ConfirmByCheckoutRef(ctx context.Context, checkoutRef string) (*models.Donation, error) {
	return r.transitionByCheckoutRef(ctx, checkoutRef, models.DonationStatusConfirmed)
}

// FailByCheckoutRef marks a pending donation failed after a gateway failure
// or expiry callback.
func (r *MongoDonationRepository) FailByCheckoutRef(ctx context.Context, checkoutRef string) error {
	_, err := r.transitionByCheckoutRef(ctx, checkoutRef, models.DonationStatusFailed)
	return err
}

func (r *MongoDonationRepository) transitionByCheckoutRef(ctx context.Context, checkoutRef string, status models.DonationStatus) (*models.Donation, error) {
	filter := bson.M{"checkout_ref": checkoutRef, "status": models.DonationStatusPending}
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}

	var donation models.Donation
	err := r.donations().FindOneAndUpdate(ctx, filter, update).Decode(&donation)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("transition donation %s to %s: %w", checkoutRef, status, err)
	}

	donation.Status = status
	return &donation, nil
}

// transactionsUnsupported detects the server error raised when transactions
// are attempted against a standalone deployment.
func transactionsUnsupported(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == 20 {
		return true
	}
	return strings.Contains(err.Error(), "Transaction numbers are only allowed")
}
