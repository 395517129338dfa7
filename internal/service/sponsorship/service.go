package sponsorship

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/alumnilink/backend/internal/domain/models"
	"github.com/alumnilink/backend/internal/repository/mongodb"
)

// Domain errors signalled by the contribution flow. Handlers translate them
// into HTTP status codes.
var (
	ErrInvalidAmount       = errors.New("contribution amount must be greater than zero")
	ErrEventNotFound       = errors.New("event not found")
	ErrSponsorshipDisabled = errors.New("sponsorship is not enabled for this event")
	ErrMissingFields       = errors.New("required fields are missing")
)

// Progress reports how far an event's fundraising has come.
type Progress struct {
	IsActive      bool  `json:"isActive"`
	CurrentAmount int64 `json:"currentAmount"`
	Goal          int64 `json:"goal"`
}

// Request is a cash or in-kind sponsorship offer submitted for review. Cash
// offers carry an amount; in-kind offers describe the goods instead.
type Request struct {
	Type        models.DonationType `json:"type"`
	Amount      int64               `json:"amount,omitempty"`
	ItemName    string              `json:"itemName,omitempty"`
	Description string              `json:"description,omitempty"`
}

// Service implements the sponsorship contribution flow: validate, append to
// the donation ledger, increment the event counter, report progress.
type Service struct {
	donations     mongodb.DonationRepository
	events        mongodb.EventRepository
	notifications mongodb.NotificationRepository
	logger        *zap.Logger
}

// NewService wires a sponsorship service instance. The notification
// repository may be nil; contribution notifications are then skipped.
func NewService(donations mongodb.DonationRepository, events mongodb.EventRepository, notifications mongodb.NotificationRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{donations: donations, events: events, notifications: notifications, logger: logger}
}

// Progress returns the sponsorship state for one event.
func (s *Service) Progress(ctx context.Context, eventID primitive.ObjectID) (*Progress, error) {
	event, err := s.events.GetEventByID(ctx, eventID)
	if errors.Is(err, mongodb.ErrNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch event: %w", err)
	}

	progress := &Progress{}
	if event.Sponsorship != nil {
		progress.IsActive = event.Sponsorship.Enabled
		progress.CurrentAmount = event.Sponsorship.CurrentAmount
		progress.Goal = event.Sponsorship.Goal
	}
	return progress, nil
}

// Contribute validates and records one cash contribution, then reports the
// updated progress. The ledger append and the counter increment are handled
// by the donation repository in a single storage-level operation where
// supported.
func (s *Service) Contribute(ctx context.Context, eventID primitive.ObjectID, callerID string, amount int64) (*Progress, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	event, err := s.events.GetEventByID(ctx, eventID)
	if errors.Is(err, mongodb.ErrNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch event: %w", err)
	}

	if !event.SponsorshipEnabled() {
		return nil, ErrSponsorshipDisabled
	}

	donation := &models.Donation{
		DonationName:       fmt.Sprintf("Sponsorship for %s", event.Title),
		Type:               models.DonationTypeCash,
		MonetaryValue:      amount,
		DonorIDs:           []string{callerID},
		ReceiveDate:        time.Now(),
		EventID:            &event.ID,
		IsEventSponsorship: true,
		Status:             models.DonationStatusConfirmed,
	}

	if err := s.donations.AddSponsorshipContribution(ctx, event.ID, donation); err != nil {
		return nil, fmt.Errorf("record contribution: %w", err)
	}

	s.notifyOrganizer(ctx, event, amount)

	// Re-read the counter so the response reflects concurrent contributions.
	sponsorshipDoc, err := s.events.GetEventSponsorship(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("reload sponsorship progress: %w", err)
	}

	return &Progress{
		IsActive:      sponsorshipDoc.Enabled,
		CurrentAmount: sponsorshipDoc.CurrentAmount,
		Goal:          sponsorshipDoc.Goal,
	}, nil
}

// SubmitRequest records a cash or in-kind sponsorship offer as a pending
// ledger entry. Offers do not move the event counter; only settled cash
// contributions do.
func (s *Service) SubmitRequest(ctx context.Context, eventID primitive.ObjectID, callerID string, req Request) (*models.Donation, error) {
	switch req.Type {
	case models.DonationTypeCash:
		if req.Amount <= 0 {
			return nil, ErrInvalidAmount
		}
	case models.DonationTypeGoods:
		if req.ItemName == "" {
			return nil, ErrMissingFields
		}
		req.Amount = 0
	default:
		return nil, ErrMissingFields
	}

	event, err := s.events.GetEventByID(ctx, eventID)
	if errors.Is(err, mongodb.ErrNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch event: %w", err)
	}

	if !event.SponsorshipEnabled() {
		return nil, ErrSponsorshipDisabled
	}

	name := req.ItemName
	if name == "" {
		name = fmt.Sprintf("Sponsorship offer for %s", event.Title)
	}

	donation := &models.Donation{
		DonationName:       name,
		Description:        req.Description,
		Type:               req.Type,
		MonetaryValue:      req.Amount,
		DonorIDs:           []string{callerID},
		ReceiveDate:        time.Now(),
		EventID:            &event.ID,
		IsEventSponsorship: true,
		Status:             models.DonationStatusPending,
	}

	if _, err := s.donations.CreateDonation(ctx, donation); err != nil {
		return nil, fmt.Errorf("record sponsorship request: %w", err)
	}
	return donation, nil
}

func (s *Service) notifyOrganizer(ctx context.Context, event *models.Event, amount int64) {
	if s.notifications == nil || event.CreatedBy == "" {
		return
	}

	n := &models.Notification{
		UserID:  event.CreatedBy,
		Kind:    models.NotificationKindSponsorship,
		Message: fmt.Sprintf("%s received a PHP %d sponsorship contribution", event.Title, amount),
	}
	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		s.logger.Warn("failed to notify event organizer", zap.Error(err))
	}
}
