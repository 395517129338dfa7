// Package repotest provides in-memory repository fakes for service tests.
package repotest

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/alumnilink/backend/internal/domain/models"
	"github.com/alumnilink/backend/internal/repository/mongodb"
)

// FakeEventRepository implements mongodb.EventRepository on a map.
type FakeEventRepository struct {
	mu     sync.Mutex
	Events map[primitive.ObjectID]*models.Event

	GetErr       error
	IncrementErr error
}

func NewFakeEventRepository(events ...*models.Event) *FakeEventRepository {
	r := &FakeEventRepository{Events: make(map[primitive.ObjectID]*models.Event)}
	for _, e := range events {
		if e.ID.IsZero() {
			e.ID = primitive.NewObjectID()
		}
		r.Events[e.ID] = e
	}
	return r
}

func (r *FakeEventRepository) CreateEvent(_ context.Context, event *models.Event) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	r.Events[event.ID] = event
	return event.ID, nil
}

func (r *FakeEventRepository) GetEventByID(_ context.Context, id primitive.ObjectID) (*models.Event, error) {
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.Events[id]
	if !ok {
		return nil, mongodb.ErrNotFound
	}
	clone := *event
	return &clone, nil
}

func (r *FakeEventRepository) ListEvents(_ context.Context) ([]models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Event, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, *e)
	}
	return out, nil
}

func (r *FakeEventRepository) UpdateEvent(_ context.Context, id primitive.ObjectID, _ bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Events[id]; !ok {
		return mongodb.ErrNotFound
	}
	r.Events[id].UpdatedAt = time.Now()
	return nil
}

func (r *FakeEventRepository) DeleteEvent(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Events[id]; !ok {
		return mongodb.ErrNotFound
	}
	delete(r.Events, id)
	return nil
}

func (r *FakeEventRepository) UpdateSponsorshipContribution(_ context.Context, id primitive.ObjectID, amount int64) error {
	if r.IncrementErr != nil {
		return r.IncrementErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.Events[id]
	if !ok {
		return mongodb.ErrNotFound
	}
	if event.Sponsorship == nil {
		event.Sponsorship = &models.Sponsorship{}
	}
	event.Sponsorship.CurrentAmount += amount
	return nil
}

func (r *FakeEventRepository) GetEventSponsorship(_ context.Context, id primitive.ObjectID) (*models.Sponsorship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.Events[id]
	if !ok {
		return nil, mongodb.ErrNotFound
	}
	if event.Sponsorship == nil {
		return nil, nil
	}
	clone := *event.Sponsorship
	return &clone, nil
}

func (r *FakeEventRepository) AddAttendee(_ context.Context, id primitive.ObjectID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.Events[id]
	if !ok {
		return mongodb.ErrNotFound
	}
	for _, a := range event.Attendees {
		if a == userID {
			return nil
		}
	}
	event.Attendees = append(event.Attendees, userID)
	return nil
}

func (r *FakeEventRepository) RemoveAttendee(_ context.Context, id primitive.ObjectID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.Events[id]
	if !ok {
		return mongodb.ErrNotFound
	}
	kept := event.Attendees[:0]
	for _, a := range event.Attendees {
		if a != userID {
			kept = append(kept, a)
		}
	}
	event.Attendees = kept
	return nil
}

// FakeDonationRepository implements mongodb.DonationRepository on a slice.
// When EventRepo is set, AddSponsorshipContribution also moves the event
// counter, mirroring the real repository's paired write.
type FakeDonationRepository struct {
	mu        sync.Mutex
	Donations []*models.Donation
	EventRepo *FakeEventRepository

	CreateErr     error
	ContributeErr error
}

func NewFakeDonationRepository(events *FakeEventRepository) *FakeDonationRepository {
	return &FakeDonationRepository{EventRepo: events}
}

func (r *FakeDonationRepository) CreateDonation(_ context.Context, donation *models.Donation) (primitive.ObjectID, error) {
	if r.CreateErr != nil {
		return primitive.NilObjectID, r.CreateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if donation.ID.IsZero() {
		donation.ID = primitive.NewObjectID()
	}
	donation.CreatedAt = time.Now()
	donation.UpdatedAt = donation.CreatedAt
	r.Donations = append(r.Donations, donation)
	return donation.ID, nil
}

func (r *FakeDonationRepository) GetDonationByID(_ context.Context, id primitive.ObjectID) (*models.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.Donations {
		if d.ID == id {
			clone := *d
			return &clone, nil
		}
	}
	return nil, mongodb.ErrNotFound
}

func (r *FakeDonationRepository) GetAllDonations(_ context.Context) ([]models.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Donation, 0, len(r.Donations))
	for _, d := range r.Donations {
		out = append(out, *d)
	}
	return out, nil
}

func (r *FakeDonationRepository) ListDonationsByEvent(_ context.Context, eventID primitive.ObjectID) ([]models.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Donation
	for _, d := range r.Donations {
		if d.EventID != nil && *d.EventID == eventID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *FakeDonationRepository) AddSponsorshipContribution(ctx context.Context, eventID primitive.ObjectID, donation *models.Donation) error {
	if r.ContributeErr != nil {
		return r.ContributeErr
	}
	if _, err := r.CreateDonation(ctx, donation); err != nil {
		return err
	}
	if r.EventRepo != nil {
		return r.EventRepo.UpdateSponsorshipContribution(ctx, eventID, donation.MonetaryValue)
	}
	return nil
}

func (r *FakeDonationRepository) ConfirmByCheckoutRef(_ context.Context, checkoutRef string) (*models.Donation, error) {
	return r.transition(checkoutRef, models.DonationStatusConfirmed)
}

func (r *FakeDonationRepository) FailByCheckoutRef(_ context.Context, checkoutRef string) error {
	_, err := r.transition(checkoutRef, models.DonationStatusFailed)
	return err
}

func (r *FakeDonationRepository) transition(checkoutRef string, status models.DonationStatus) (*models.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.Donations {
		if d.CheckoutRef == checkoutRef && d.Status == models.DonationStatusPending {
			d.Status = status
			d.UpdatedAt = time.Now()
			clone := *d
			return &clone, nil
		}
	}
	return nil, mongodb.ErrNotFound
}

// FakeNotificationRepository implements mongodb.NotificationRepository on a
// slice.
type FakeNotificationRepository struct {
	mu    sync.Mutex
	Items []models.Notification

	CreateErr error
}

func (r *FakeNotificationRepository) CreateNotification(_ context.Context, n *models.Notification) error {
	if r.CreateErr != nil {
		return r.CreateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	n.CreatedAt = time.Now()
	r.Items = append(r.Items, *n)
	return nil
}

func (r *FakeNotificationRepository) CreateNotifications(ctx context.Context, items []models.Notification) error {
	for i := range items {
		if err := r.CreateNotification(ctx, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *FakeNotificationRepository) ListNotifications(_ context.Context, userID string) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.Items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *FakeNotificationRepository) MarkRead(_ context.Context, id primitive.ObjectID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.Items {
		if r.Items[i].ID == id && r.Items[i].UserID == userID {
			r.Items[i].Read = true
			return nil
		}
	}
	return mongodb.ErrNotFound
}

// FakeAnnouncementRepository implements mongodb.AnnouncementRepository on a
// slice.
type FakeAnnouncementRepository struct {
	mu    sync.Mutex
	Items []models.Announcement
}

func (r *FakeAnnouncementRepository) CreateAnnouncement(_ context.Context, a *models.Announcement) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	r.Items = append(r.Items, *a)
	return a.ID, nil
}

func (r *FakeAnnouncementRepository) GetAnnouncementByID(_ context.Context, id primitive.ObjectID) (*models.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.Items {
		if a.ID == id {
			clone := a
			return &clone, nil
		}
	}
	return nil, mongodb.ErrNotFound
}

func (r *FakeAnnouncementRepository) ListAnnouncements(_ context.Context) ([]models.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Announcement(nil), r.Items...), nil
}

func (r *FakeAnnouncementRepository) ListAnnouncementsSince(_ context.Context, since time.Time) ([]models.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Announcement
	for _, a := range r.Items {
		if !a.CreatedAt.Before(since) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *FakeAnnouncementRepository) UpdateAnnouncement(_ context.Context, id primitive.ObjectID, _ bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.Items {
		if r.Items[i].ID == id {
			r.Items[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return mongodb.ErrNotFound
}

func (r *FakeAnnouncementRepository) DeleteAnnouncement(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.Items {
		if r.Items[i].ID == id {
			r.Items = append(r.Items[:i], r.Items[i+1:]...)
			return nil
		}
	}
	return mongodb.ErrNotFound
}

// FakeSubscriberRepository implements mongodb.SubscriberRepository on a map
// keyed by email.
type FakeSubscriberRepository struct {
	mu   sync.Mutex
	Subs map[string]models.Subscriber
}

func NewFakeSubscriberRepository() *FakeSubscriberRepository {
	return &FakeSubscriberRepository{Subs: make(map[string]models.Subscriber)}
}

func (r *FakeSubscriberRepository) Subscribe(_ context.Context, sub *models.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(sub.Email)
	if existing, ok := r.Subs[key]; ok {
		sub.ID = existing.ID
		sub.SubscribedAt = existing.SubscribedAt
	} else {
		sub.ID = primitive.NewObjectID()
		if sub.SubscribedAt.IsZero() {
			sub.SubscribedAt = time.Now()
		}
	}
	r.Subs[key] = *sub
	return nil
}

func (r *FakeSubscriberRepository) Unsubscribe(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.Subs, strings.ToLower(email))
	return nil
}

func (r *FakeSubscriberRepository) ListSubscribers(_ context.Context) ([]models.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Subscriber, 0, len(r.Subs))
	for _, s := range r.Subs {
		out = append(out, s)
	}
	return out, nil
}
