package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/alumnilink/backend/internal/domain/models"
	"github.com/alumnilink/backend/internal/repository/repotest"
	"github.com/alumnilink/backend/internal/service/sponsorship"
	"github.com/alumnilink/backend/pkg/clients/maya"
)

type fakeGateway struct {
	lastRequest *maya.CheckoutRequest
	err         error
}

func (g *fakeGateway) CreateCheckout(_ context.Context, req maya.CheckoutRequest) (*maya.CheckoutResponse, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.lastRequest = &req
	return &maya.CheckoutResponse{
		CheckoutID:  "chk-123",
		RedirectURL: "https://payments.maya.ph/checkout?id=chk-123",
	}, nil
}

func newFixture(events ...*models.Event) (*Service, *repotest.FakeDonationRepository, *repotest.FakeEventRepository, *repotest.FakeNotificationRepository, *fakeGateway) {
	eventRepo := repotest.NewFakeEventRepository(events...)
	donationRepo := repotest.NewFakeDonationRepository(eventRepo)
	notificationRepo := &repotest.FakeNotificationRepository{}
	gateway := &fakeGateway{}
	svc := NewService(donationRepo, eventRepo, notificationRepo, gateway, "https://alumnilink.ph/thanks", nil)
	return svc, donationRepo, eventRepo, notificationRepo, gateway
}

func sponsoredEvent() *models.Event {
	return &models.Event{
		ID:        primitive.NewObjectID(),
		CreatedBy: "organizer-1",
		Title:     "Batch 1995 Reunion",
		StartDate: time.Now().Add(14 * 24 * time.Hour),
		Sponsorship: &models.Sponsorship{
			Enabled:       true,
			Goal:          200000,
			CurrentAmount: 1000,
		},
	}
}

func TestCheckoutValidation(t *testing.T) {
	event := sponsoredEvent()
	event.Sponsorship.Enabled = false
	svc, donations, _, _, _ := newFixture(event)

	_, err := svc.Checkout(context.Background(), "alum-1", Request{Amount: 0})
	assert.ErrorIs(t, err, sponsorship.ErrInvalidAmount)

	_, err = svc.Checkout(context.Background(), "alum-1", Request{Amount: 500, EventID: "not-a-hex-id"})
	assert.ErrorIs(t, err, ErrInvalidEventID)

	_, err = svc.Checkout(context.Background(), "alum-1", Request{Amount: 500, EventID: primitive.NewObjectID().Hex()})
	assert.ErrorIs(t, err, sponsorship.ErrEventNotFound)

	_, err = svc.Checkout(context.Background(), "alum-1", Request{Amount: 500, EventID: event.ID.Hex()})
	assert.ErrorIs(t, err, sponsorship.ErrSponsorshipDisabled)

	assert.Empty(t, donations.Donations)
}

func TestCheckoutRecordsPendingDonation(t *testing.T) {
	event := sponsoredEvent()
	svc, donations, _, _, gateway := newFixture(event)

	result, err := svc.Checkout(context.Background(), "alum-1", Request{
		Amount:      2500,
		Description: "For the reunion fund",
		EventID:     event.ID.Hex(),
	})
	require.NoError(t, err)

	require.NotNil(t, gateway.lastRequest)
	assert.Equal(t, int64(2500), gateway.lastRequest.TotalAmount.Value)
	assert.Equal(t, "PHP", gateway.lastRequest.TotalAmount.Currency)
	assert.NotEmpty(t, gateway.lastRequest.RequestReferenceNumber)

	assert.Equal(t, "chk-123", result.Checkout.CheckoutID)
	assert.Equal(t, "unpaid", result.Invoice.Status)
	assert.Equal(t, "PHP", result.Invoice.Currency)
	assert.Equal(t, "INV-"+gateway.lastRequest.RequestReferenceNumber[:8], result.Invoice.Number)

	require.Len(t, donations.Donations, 1)
	entry := donations.Donations[0]
	assert.Equal(t, models.DonationStatusPending, entry.Status)
	assert.Equal(t, gateway.lastRequest.RequestReferenceNumber, entry.CheckoutRef)
	assert.True(t, entry.IsEventSponsorship)
	require.NotNil(t, entry.EventID)
	assert.Equal(t, event.ID, *entry.EventID)

	// Progress echoes the pre-payment state; the counter moves on webhook.
	require.NotNil(t, result.Event)
	assert.Equal(t, int64(1000), result.Event.CurrentAmount)
}

func TestCheckoutWithoutEvent(t *testing.T) {
	svc, donations, _, _, _ := newFixture()

	result, err := svc.Checkout(context.Background(), "alum-1", Request{Amount: 800})
	require.NoError(t, err)

	assert.Nil(t, result.Event)
	require.Len(t, donations.Donations, 1)
	assert.False(t, donations.Donations[0].IsEventSponsorship)
	assert.Nil(t, donations.Donations[0].EventID)
	assert.Equal(t, "General donation", donations.Donations[0].DonationName)
}

func TestCheckoutGatewayFailure(t *testing.T) {
	svc, donations, _, _, gateway := newFixture()
	gateway.err = &maya.APIError{StatusCode: 401, Body: "invalid key"}

	_, err := svc.Checkout(context.Background(), "alum-1", Request{Amount: 500})

	var apiErr *maya.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)
	assert.Empty(t, donations.Donations, "no ledger entry without a gateway session")
}

func settleFixture(t *testing.T) (*Service, *repotest.FakeDonationRepository, *repotest.FakeEventRepository, *repotest.FakeNotificationRepository, *models.Event, string) {
	t.Helper()
	event := sponsoredEvent()
	svc, donations, eventRepo, notifications, gateway := newFixture(event)

	_, err := svc.Checkout(context.Background(), "alum-1", Request{Amount: 2500, EventID: event.ID.Hex()})
	require.NoError(t, err)
	return svc, donations, eventRepo, notifications, event, gateway.lastRequest.RequestReferenceNumber
}

func TestWebhookSuccessSettlesDonation(t *testing.T) {
	svc, donations, eventRepo, notifications, event, ref := settleFixture(t)

	err := svc.HandleWebhook(context.Background(), maya.WebhookEvent{
		PaymentStatus:          maya.PaymentStatusSuccess,
		RequestReferenceNumber: ref,
	})
	require.NoError(t, err)

	assert.Equal(t, models.DonationStatusConfirmed, donations.Donations[0].Status)

	sponsorshipDoc, err := eventRepo.GetEventSponsorship(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3500), sponsorshipDoc.CurrentAmount, "deferred increment applied on confirmation")

	require.Len(t, notifications.Items, 1)
	assert.Equal(t, "organizer-1", notifications.Items[0].UserID)
}

func TestWebhookSuccessIsIdempotentPerReference(t *testing.T) {
	svc, _, eventRepo, _, event, ref := settleFixture(t)

	webhook := maya.WebhookEvent{PaymentStatus: maya.PaymentStatusSuccess, RequestReferenceNumber: ref}
	require.NoError(t, svc.HandleWebhook(context.Background(), webhook))
	require.NoError(t, svc.HandleWebhook(context.Background(), webhook), "gateway retries must be harmless")

	sponsorshipDoc, err := eventRepo.GetEventSponsorship(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3500), sponsorshipDoc.CurrentAmount, "counter moves exactly once")
}

func TestWebhookFailureMarksDonationFailed(t *testing.T) {
	for _, status := range []string{maya.PaymentStatusFailed, maya.PaymentStatusExpired} {
		t.Run(status, func(t *testing.T) {
			svc, donations, eventRepo, _, event, ref := settleFixture(t)

			err := svc.HandleWebhook(context.Background(), maya.WebhookEvent{
				PaymentStatus:          status,
				RequestReferenceNumber: ref,
			})
			require.NoError(t, err)

			assert.Equal(t, models.DonationStatusFailed, donations.Donations[0].Status)

			sponsorshipDoc, err := eventRepo.GetEventSponsorship(context.Background(), event.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(1000), sponsorshipDoc.CurrentAmount, "failed payments never move the counter")
		})
	}
}

func TestWebhookUnknownReference(t *testing.T) {
	svc, _, _, _, _, _ := settleFixture(t)

	err := svc.HandleWebhook(context.Background(), maya.WebhookEvent{
		PaymentStatus:          maya.PaymentStatusSuccess,
		RequestReferenceNumber: "never-issued",
	})
	assert.NoError(t, err)
}

func TestWebhookIgnoresUnhandledStatus(t *testing.T) {
	svc, donations, _, _, _, ref := settleFixture(t)

	err := svc.HandleWebhook(context.Background(), maya.WebhookEvent{
		PaymentStatus:          "AUTHORIZED",
		RequestReferenceNumber: ref,
	})
	require.NoError(t, err)
	assert.Equal(t, models.DonationStatusPending, donations.Donations[0].Status)
}

func TestWebhookIncrementFailureSurfacesError(t *testing.T) {
	svc, donations, eventRepo, _, _, ref := settleFixture(t)
	eventRepo.IncrementErr = errors.New("write concern timeout")

	err := svc.HandleWebhook(context.Background(), maya.WebhookEvent{
		PaymentStatus:          maya.PaymentStatusSuccess,
		RequestReferenceNumber: ref,
	})
	require.Error(t, err, "gateway should retry when the counter update fails")
	assert.Equal(t, models.DonationStatusConfirmed, donations.Donations[0].Status)
}
