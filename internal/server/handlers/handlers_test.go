package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/alumnilink/backend/internal/domain/models"
	"github.com/alumnilink/backend/internal/repository/repotest"
	"github.com/alumnilink/backend/internal/server/middleware"
	"github.com/alumnilink/backend/internal/service/checkout"
	"github.com/alumnilink/backend/internal/service/sponsorship"
	"github.com/alumnilink/backend/pkg/clients/maya"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser stands in for the auth middleware in handler tests.
func asUser(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextRole, role)
	}
}

func jsonRequest(method, path string, payload any) *http.Request {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

type stubGateway struct {
	err error
}

func (g *stubGateway) CreateCheckout(_ context.Context, req maya.CheckoutRequest) (*maya.CheckoutResponse, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &maya.CheckoutResponse{CheckoutID: "chk-1", RedirectURL: "https://pay.example/" + req.RequestReferenceNumber}, nil
}

func futureEvent(createdBy string) *models.Event {
	return &models.Event{
		ID:        primitive.NewObjectID(),
		CreatedBy: createdBy,
		Title:     "Alumni Gala",
		StartDate: time.Now().Add(7 * 24 * time.Hour),
		Sponsorship: &models.Sponsorship{
			Enabled: true,
			Goal:    100000,
		},
	}
}

func TestSponsorshipContributeEndpoint(t *testing.T) {
	event := futureEvent("organizer-1")
	event.Sponsorship.Goal = 5000
	event.Sponsorship.CurrentAmount = 1000
	eventRepo := repotest.NewFakeEventRepository(event)
	donationRepo := repotest.NewFakeDonationRepository(eventRepo)
	svc := sponsorship.NewService(donationRepo, eventRepo, nil, nil)
	h := NewSponsorshipHandler(svc, nil)

	r := gin.New()
	r.POST("/api/events/:id/sponsor", asUser("alum-1", "member"), h.Contribute)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/api/events/"+event.ID.Hex()+"/sponsor", gin.H{"amount": 500}))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"currentAmount":1500,"goal":5000}`, w.Body.String())
	require.Len(t, donationRepo.Donations, 1)
	entry := donationRepo.Donations[0]
	assert.Equal(t, []string{"alum-1"}, entry.DonorIDs)
	assert.Equal(t, int64(500), entry.MonetaryValue)
	assert.Equal(t, models.DonationTypeCash, entry.Type)
	require.NotNil(t, entry.EventID)
	assert.Equal(t, event.ID, *entry.EventID)
}

func TestSponsorshipContributeBadRequests(t *testing.T) {
	event := futureEvent("organizer-1")
	eventRepo := repotest.NewFakeEventRepository(event)
	svc := sponsorship.NewService(repotest.NewFakeDonationRepository(eventRepo), eventRepo, nil, nil)
	h := NewSponsorshipHandler(svc, nil)

	r := gin.New()
	r.POST("/api/events/:id/sponsor", asUser("alum-1", "member"), h.Contribute)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/api/events/not-an-id/sponsor", gin.H{"amount": 100}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/api/events/"+event.ID.Hex()+"/sponsor", gin.H{"amount": 0}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/api/events/"+primitive.NewObjectID().Hex()+"/sponsor", gin.H{"amount": 100}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckoutEndpointMapsGatewayFailureToBadGateway(t *testing.T) {
	eventRepo := repotest.NewFakeEventRepository()
	donationRepo := repotest.NewFakeDonationRepository(eventRepo)
	svc := checkout.NewService(donationRepo, eventRepo, nil, &stubGateway{
		err: &maya.APIError{StatusCode: 500, Body: "gateway down"},
	}, "https://alumnilink.ph/thanks", nil)
	h := NewCheckoutHandler(svc, nil)

	r := gin.New()
	r.POST("/api/checkout", asUser("alum-1", "member"), h.Checkout)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/api/checkout", gin.H{"amount": 500}))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Empty(t, donationRepo.Donations)
}

func TestCheckoutWebhookEndpoint(t *testing.T) {
	event := futureEvent("organizer-1")
	eventRepo := repotest.NewFakeEventRepository(event)
	donationRepo := repotest.NewFakeDonationRepository(eventRepo)
	svc := checkout.NewService(donationRepo, eventRepo, nil, &stubGateway{}, "https://alumnilink.ph/thanks", nil)
	h := NewCheckoutHandler(svc, nil)

	r := gin.New()
	r.POST("/api/checkout", asUser("alum-1", "member"), h.Checkout)
	r.POST("/api/maya-webhook", h.Webhook)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/api/checkout", gin.H{"amount": 2000, "eventId": event.ID.Hex()}))
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, donationRepo.Donations, 1)
	ref := donationRepo.Donations[0].CheckoutRef

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/api/maya-webhook", gin.H{
		"paymentStatus":          maya.PaymentStatusSuccess,
		"requestReferenceNumber": ref,
	}))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, models.DonationStatusConfirmed, donationRepo.Donations[0].Status)
	sponsorshipDoc, err := eventRepo.GetEventSponsorship(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), sponsorshipDoc.CurrentAmount)
}

func TestCheckoutWebhookRejectsGarbage(t *testing.T) {
	svc := checkout.NewService(repotest.NewFakeDonationRepository(nil), repotest.NewFakeEventRepository(), nil, &stubGateway{}, "", nil)
	h := NewCheckoutHandler(svc, nil)

	r := gin.New()
	r.POST("/api/maya-webhook", h.Webhook)

	req := httptest.NewRequest(http.MethodPost, "/api/maya-webhook", bytes.NewBufferString("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func newEventRouter(repo *repotest.FakeEventRepository, userID, role string) *gin.Engine {
	h := NewEventHandler(repo, nil, nil)
	r := gin.New()
	r.POST("/api/events", asUser(userID, role), h.Create)
	r.PUT("/api/events/:id", asUser(userID, role), h.Update)
	r.POST("/api/events/:id/rsvp", asUser(userID, role), h.RSVP)
	return r
}

func TestEventCreateAndUpdate(t *testing.T) {
	repo := repotest.NewFakeEventRepository()
	r := newEventRouter(repo, "organizer-1", "member")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/api/events", gin.H{
		"title":              "Batch 2000 Reunion",
		"startDate":          time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"sponsorshipEnabled": true,
		"sponsorshipGoal":    50000,
	}))
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotNil(t, created.Sponsorship)
	assert.True(t, created.Sponsorship.Enabled)
	assert.Equal(t, int64(50000), created.Sponsorship.Goal)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPut, "/api/events/"+created.ID.Hex(), gin.H{"location": "Makati"}))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEventUpdateLockedAfterStart(t *testing.T) {
	started := &models.Event{
		ID:        primitive.NewObjectID(),
		CreatedBy: "organizer-1",
		Title:     "Past Event",
		StartDate: time.Now().Add(-time.Hour),
	}
	repo := repotest.NewFakeEventRepository(started)
	r := newEventRouter(repo, "organizer-1", "member")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPut, "/api/events/"+started.ID.Hex(), gin.H{"title": "Rewritten History"}))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Past Event", repo.Events[started.ID].Title)
}

func TestEventUpdateDeniedForStrangers(t *testing.T) {
	event := futureEvent("organizer-1")
	repo := repotest.NewFakeEventRepository(event)

	w := httptest.NewRecorder()
	newEventRouter(repo, "someone-else", "member").
		ServeHTTP(w, jsonRequest(http.MethodPut, "/api/events/"+event.ID.Hex(), gin.H{"title": "Hijacked"}))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admins may edit events they do not own.
	w = httptest.NewRecorder()
	newEventRouter(repo, "staff-1", "admin").
		ServeHTTP(w, jsonRequest(http.MethodPut, "/api/events/"+event.ID.Hex(), gin.H{"title": "Renamed"}))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEventRSVPCapacity(t *testing.T) {
	event := futureEvent("organizer-1")
	event.Capacity = 1
	event.Attendees = []string{"alum-0"}
	repo := repotest.NewFakeEventRepository(event)
	r := newEventRouter(repo, "alum-1", "member")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/api/events/"+event.ID.Hex()+"/rsvp", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	repo.Events[event.ID].Capacity = 10
	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/api/events/"+event.ID.Hex()+"/rsvp", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, repo.Events[event.ID].Attendees, "alum-1")
}
