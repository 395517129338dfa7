package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/alumnilink/backend/internal/domain/models"
	"github.com/alumnilink/backend/internal/repository/mongodb"
	"github.com/alumnilink/backend/internal/service/sponsorship"
	"github.com/alumnilink/backend/pkg/clients/maya"
)

// ErrInvalidEventID is returned when the supplied event reference cannot be
// parsed.
var ErrInvalidEventID = errors.New("invalid event id")

// Request is a checkout submission. EventID is optional; when present the
// donation is linked to that event's sponsorship.
type Request struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description,omitempty"`
	EventID     string `json:"eventId,omitempty"`
}

// Invoice is the locally fabricated billing record paired with a checkout.
type Invoice struct {
	Number   string    `json:"number"`
	Amount   int64     `json:"amount"`
	Currency string    `json:"currency"`
	IssuedAt time.Time `json:"issuedAt"`
	Status   string    `json:"status"`
}

// Result bundles the gateway payload, the fabricated invoice, the persisted
// donation, and event progress when the donation targets a sponsorship.
type Result struct {
	Checkout *maya.CheckoutResponse `json:"checkout"`
	Invoice  Invoice                `json:"invoice"`
	Donation models.Donation        `json:"donation"`
	Event    *sponsorship.Progress  `json:"event,omitempty"`
}

// Service is the checkout bridge: it creates a gateway checkout session,
// records a pending donation, and settles it when the gateway webhook
// arrives.
type Service struct {
	donations     mongodb.DonationRepository
	events        mongodb.EventRepository
	notifications mongodb.NotificationRepository
	gateway       maya.Client
	redirectURL   string
	logger        *zap.Logger
}

// NewService wires a checkout service instance.
func NewService(donations mongodb.DonationRepository, events mongodb.EventRepository, notifications mongodb.NotificationRepository, gateway maya.Client, redirectURL string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		donations:     donations,
		events:        events,
		notifications: notifications,
		gateway:       gateway,
		redirectURL:   redirectURL,
		logger:        logger,
	}
}

// Checkout validates the request, creates the gateway session, and persists
// a pending donation carrying the checkout reference. The event counter is
// not touched here; it moves only when the webhook confirms payment.
func (s *Service) Checkout(ctx context.Context, callerID string, req Request) (*Result, error) {
	if req.Amount <= 0 {
		return nil, sponsorship.ErrInvalidAmount
	}

	var event *models.Event
	if req.EventID != "" {
		eventID, err := primitive.ObjectIDFromHex(req.EventID)
		if err != nil {
			return nil, ErrInvalidEventID
		}

		event, err = s.events.GetEventByID(ctx, eventID)
		if errors.Is(err, mongodb.ErrNotFound) {
			return nil, sponsorship.ErrEventNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("fetch event: %w", err)
		}
		if !event.SponsorshipEnabled() {
			return nil, sponsorship.ErrSponsorshipDisabled
		}
	}

	ref := uuid.NewString()
	checkoutResp, err := s.gateway.CreateCheckout(ctx, maya.CheckoutRequest{
		TotalAmount:            maya.Amount{Value: req.Amount, Currency: "PHP"},
		RequestReferenceNumber: ref,
		RedirectURL: maya.RedirectURLs{
			Success: s.redirectURL,
			Failure: s.redirectURL,
			Cancel:  s.redirectURL,
		},
	})
	if err != nil {
		return nil, err
	}

	name := "General donation"
	donation := models.Donation{
		Description:   req.Description,
		Type:          models.DonationTypeCash,
		MonetaryValue: req.Amount,
		DonorIDs:      []string{callerID},
		ReceiveDate:   time.Now(),
		Status:        models.DonationStatusPending,
		CheckoutRef:   ref,
	}
	if event != nil {
		name = fmt.Sprintf("Sponsorship for %s", event.Title)
		donation.EventID = &event.ID
		donation.IsEventSponsorship = true
	}
	donation.DonationName = name

	if _, err := s.donations.CreateDonation(ctx, &donation); err != nil {
		return nil, fmt.Errorf("record donation: %w", err)
	}

	result := &Result{
		Checkout: checkoutResp,
		Invoice: Invoice{
			Number:   fmt.Sprintf("INV-%s", ref[:8]),
			Amount:   req.Amount,
			Currency: "PHP",
			IssuedAt: time.Now(),
			Status:   "unpaid",
		},
		Donation: donation,
	}

	if event != nil && event.Sponsorship != nil {
		result.Event = &sponsorship.Progress{
			IsActive:      event.Sponsorship.Enabled,
			CurrentAmount: event.Sponsorship.CurrentAmount,
			Goal:          event.Sponsorship.Goal,
		}
	}

	return result, nil
}

// HandleWebhook settles the donation referenced by a gateway callback. A
// success callback confirms the donation and applies the deferred counter
// increment; failure and expiry callbacks mark the donation failed. Unknown
// references are ignored so gateway retries stay harmless.
func (s *Service) HandleWebhook(ctx context.Context, event maya.WebhookEvent) error {
	switch event.PaymentStatus {
	case maya.PaymentStatusSuccess:
		return s.settleSuccess(ctx, event)
	case maya.PaymentStatusFailed, maya.PaymentStatusExpired:
		err := s.donations.FailByCheckoutRef(ctx, event.RequestReferenceNumber)
		if errors.Is(err, mongodb.ErrNotFound) {
			s.logger.Warn("webhook for unknown or already settled checkout",
				zap.String("reference", event.RequestReferenceNumber))
			return nil
		}
		return err
	default:
		s.logger.Debug("ignoring webhook status",
			zap.String("status", event.PaymentStatus),
			zap.String("reference", event.RequestReferenceNumber))
		return nil
	}
}

func (s *Service) settleSuccess(ctx context.Context, event maya.WebhookEvent) error {
	donation, err := s.donations.ConfirmByCheckoutRef(ctx, event.RequestReferenceNumber)
	if errors.Is(err, mongodb.ErrNotFound) {
		s.logger.Warn("success webhook for unknown or already settled checkout",
			zap.String("reference", event.RequestReferenceNumber))
		return nil
	}
	if err != nil {
		return fmt.Errorf("confirm donation: %w", err)
	}

	if !donation.IsEventSponsorship || donation.EventID == nil {
		return nil
	}

	if err := s.events.UpdateSponsorshipContribution(ctx, *donation.EventID, donation.MonetaryValue); err != nil {
		// The donation is confirmed but the counter did not move; surface the
		// error so the gateway retries the callback.
		return fmt.Errorf("apply sponsorship increment: %w", err)
	}

	s.notifyOrganizer(ctx, *donation.EventID, donation.MonetaryValue)
	return nil
}

func (s *Service) notifyOrganizer(ctx context.Context, eventID primitive.ObjectID, amount int64) {
	if s.notifications == nil {
		return
	}

	event, err := s.events.GetEventByID(ctx, eventID)
	if err != nil || event.CreatedBy == "" {
		return
	}

	n := &models.Notification{
		UserID:  event.CreatedBy,
		Kind:    models.NotificationKindSponsorship,
		Message: fmt.Sprintf("%s received a PHP %d sponsorship payment", event.Title, amount),
	}
	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		s.logger.Warn("failed to notify event organizer", zap.Error(err))
	}
}
