package sponsorship

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/alumnilink/backend/internal/domain/models"
	"github.com/alumnilink/backend/internal/repository/repotest"
)

func newTestEvent(enabled bool, goal, current int64) *models.Event {
	return &models.Event{
		ID:        primitive.NewObjectID(),
		CreatedBy: "organizer-1",
		Title:     "Grand Alumni Homecoming",
		StartDate: time.Now().Add(30 * 24 * time.Hour),
		Sponsorship: &models.Sponsorship{
			Enabled:       enabled,
			Goal:          goal,
			CurrentAmount: current,
		},
	}
}

func newTestService(events ...*models.Event) (*Service, *repotest.FakeDonationRepository, *repotest.FakeEventRepository, *repotest.FakeNotificationRepository) {
	eventRepo := repotest.NewFakeEventRepository(events...)
	donationRepo := repotest.NewFakeDonationRepository(eventRepo)
	notificationRepo := &repotest.FakeNotificationRepository{}
	svc := NewService(donationRepo, eventRepo, notificationRepo, nil)
	return svc, donationRepo, eventRepo, notificationRepo
}

func TestContributeRejectsNonPositiveAmounts(t *testing.T) {
	event := newTestEvent(true, 100000, 0)
	svc, donations, _, _ := newTestService(event)

	for _, amount := range []int64{0, -1, -5000} {
		_, err := svc.Contribute(context.Background(), event.ID, "alum-1", amount)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
	assert.Empty(t, donations.Donations, "rejected contributions must not reach the ledger")
}

func TestContributeUnknownEvent(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Contribute(context.Background(), primitive.NewObjectID(), "alum-1", 500)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestContributeSponsorshipDisabled(t *testing.T) {
	disabled := newTestEvent(false, 100000, 0)
	noSponsorship := &models.Event{
		ID:        primitive.NewObjectID(),
		Title:     "Lecture Series",
		StartDate: time.Now().Add(24 * time.Hour),
	}
	svc, donations, _, _ := newTestService(disabled, noSponsorship)

	_, err := svc.Contribute(context.Background(), disabled.ID, "alum-1", 500)
	assert.ErrorIs(t, err, ErrSponsorshipDisabled)

	_, err = svc.Contribute(context.Background(), noSponsorship.ID, "alum-1", 500)
	assert.ErrorIs(t, err, ErrSponsorshipDisabled)

	assert.Empty(t, donations.Donations)
}

func TestContributeAppendsLedgerAndIncrements(t *testing.T) {
	event := newTestEvent(true, 100000, 500)
	svc, donations, _, notifications := newTestService(event)

	progress, err := svc.Contribute(context.Background(), event.ID, "alum-1", 1000)
	require.NoError(t, err)

	assert.True(t, progress.IsActive)
	assert.Equal(t, int64(1500), progress.CurrentAmount)
	assert.Equal(t, int64(100000), progress.Goal)

	require.Len(t, donations.Donations, 1)
	entry := donations.Donations[0]
	assert.Equal(t, models.DonationTypeCash, entry.Type)
	assert.Equal(t, models.DonationStatusConfirmed, entry.Status)
	assert.Equal(t, int64(1000), entry.MonetaryValue)
	assert.Equal(t, []string{"alum-1"}, entry.DonorIDs)
	assert.True(t, entry.IsEventSponsorship)
	require.NotNil(t, entry.EventID)
	assert.Equal(t, event.ID, *entry.EventID)
	assert.Contains(t, entry.DonationName, "Grand Alumni Homecoming")

	require.Len(t, notifications.Items, 1)
	assert.Equal(t, "organizer-1", notifications.Items[0].UserID)
	assert.Equal(t, models.NotificationKindSponsorship, notifications.Items[0].Kind)
}

func TestContributeIsAdditive(t *testing.T) {
	event := newTestEvent(true, 0, 0)
	svc, donations, _, _ := newTestService(event)

	var total int64
	for _, amount := range []int64{250, 1000, 1, 4999} {
		total += amount
		progress, err := svc.Contribute(context.Background(), event.ID, "alum-1", amount)
		require.NoError(t, err)
		assert.Equal(t, total, progress.CurrentAmount)
	}
	assert.Len(t, donations.Donations, 4, "every contribution appends its own ledger entry")
}

func TestContributeConcurrent(t *testing.T) {
	event := newTestEvent(true, 0, 0)
	svc, _, eventRepo, _ := newTestService(event)

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Contribute(context.Background(), event.ID, "alum-1", 100)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sponsorship, err := eventRepo.GetEventSponsorship(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(workers*100), sponsorship.CurrentAmount)
}

func TestProgressWithoutSponsorship(t *testing.T) {
	event := &models.Event{ID: primitive.NewObjectID(), Title: "Plain Event"}
	svc, _, _, _ := newTestService(event)

	progress, err := svc.Progress(context.Background(), event.ID)
	require.NoError(t, err)
	assert.False(t, progress.IsActive)
	assert.Zero(t, progress.CurrentAmount)
	assert.Zero(t, progress.Goal)
}

func TestSubmitRequestValidation(t *testing.T) {
	event := newTestEvent(true, 0, 0)
	svc, _, _, _ := newTestService(event)

	cases := []struct {
		name string
		req  Request
		want error
	}{
		{"cash without amount", Request{Type: models.DonationTypeCash}, ErrInvalidAmount},
		{"cash negative amount", Request{Type: models.DonationTypeCash, Amount: -10}, ErrInvalidAmount},
		{"goods without item", Request{Type: models.DonationTypeGoods}, ErrMissingFields},
		{"unknown type", Request{Type: "Services"}, ErrMissingFields},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SubmitRequest(context.Background(), event.ID, "alum-1", tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSubmitRequestRecordsPendingOffer(t *testing.T) {
	event := newTestEvent(true, 50000, 200)
	svc, donations, eventRepo, _ := newTestService(event)

	offer, err := svc.SubmitRequest(context.Background(), event.ID, "alum-2", Request{
		Type:        models.DonationTypeGoods,
		ItemName:    "Sound system rental",
		Description: "Full PA setup for the venue",
		Amount:      9999, // ignored for in-kind offers
	})
	require.NoError(t, err)

	assert.Equal(t, models.DonationStatusPending, offer.Status)
	assert.Zero(t, offer.MonetaryValue)
	assert.Equal(t, "Sound system rental", offer.DonationName)
	require.Len(t, donations.Donations, 1)

	sponsorship, err := eventRepo.GetEventSponsorship(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(200), sponsorship.CurrentAmount, "offers must not move the counter")
}
