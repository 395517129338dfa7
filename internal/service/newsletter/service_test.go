package newsletter

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
)

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	sent    []sentMail
	failFor map[string]error
}

func (m *fakeMailer) SendEmail(_ context.Context, to, _, subject, htmlBody string) error {
	if err, ok := m.failFor[to]; ok {
		return err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}

func newFixture() (*Service, *repotest.FakeSubscriberRepository, *repotest.FakeAnnouncementRepository, *repotest.FakeEventRepository, *fakeMailer) {
	subs := repotest.NewFakeSubscriberRepository()
	announcements := &repotest.FakeAnnouncementRepository{}
	events := repotest.NewFakeEventRepository()
	mailer := &fakeMailer{failFor: map[string]error{}}
	svc := NewService(subs, announcements, events, mailer, nil)
	return svc, subs, announcements, events, mailer
}

func TestSubscribeNormalizesEmail(t *testing.T) {
	svc, subs, _, _, _ := newFixture()

	require.NoError(t, svc.Subscribe(context.Background(), "  Maria.Santos@Example.COM ", "Maria"))

	list, err := subs.ListSubscribers(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "maria.santos@example.com", list[0].Email)
}

func TestSubscribeRejectsMalformedEmail(t *testing.T) {
	svc, _, _, _, _ := newFixture()

	for _, email := range []string{"", "   ", "no-at-sign"} {
		assert.ErrorIs(t, svc.Subscribe(context.Background(), email, ""), ErrInvalidEmail)
	}
}

func TestSubscribeTwiceKeepsOneRecipient(t *testing.T) {
	svc, subs, _, _, _ := newFixture()

	require.NoError(t, svc.Subscribe(context.Background(), "maria@example.com", "Maria"))
	require.NoError(t, svc.Subscribe(context.Background(), "MARIA@example.com", "Maria S."))

	list, err := subs.ListSubscribers(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSendDigestIncludesRecentContent(t *testing.T) {
	svc, _, announcements, events, mailer := newFixture()
	now := time.Date(2026, time.August, 31, 8, 0, 0, 0, time.UTC)

	require.NoError(t, svc.Subscribe(context.Background(), "maria@example.com", "Maria"))

	announcements.Items = []models.Announcement{
		{ID: primitive.NewObjectID(), Title: "New scholarship fund", Body: "Applications open now", CreatedAt: now.Add(-2 * 24 * time.Hour)},
		{ID: primitive.NewObjectID(), Title: "Old news", Body: "Last month", CreatedAt: now.Add(-30 * 24 * time.Hour)},
	}
	_, err := events.CreateEvent(context.Background(), &models.Event{
		Title:     "Homecoming <2026>",
		Location:  "Quezon City",
		StartDate: now.Add(10 * 24 * time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, svc.SendDigest(context.Background(), now))

	require.Len(t, mailer.sent, 1)
	mail := mailer.sent[0]
	assert.Equal(t, "maria@example.com", mail.to)
	assert.Contains(t, mail.subject, "August 31, 2026")
	assert.Contains(t, mail.body, "New scholarship fund")
	assert.NotContains(t, mail.body, "Old news", "stale announcements stay out of the digest")
	assert.Contains(t, mail.body, "Homecoming &lt;2026&gt;", "HTML in titles must be escaped")
}

func TestSendDigestSkipsWhenNothingNew(t *testing.T) {
	svc, _, _, _, mailer := newFixture()

	require.NoError(t, svc.Subscribe(context.Background(), "maria@example.com", ""))
	require.NoError(t, svc.SendDigest(context.Background(), time.Now()))

	assert.Empty(t, mailer.sent)
}

func TestSendDigestToleratesPartialFailure(t *testing.T) {
	svc, _, announcements, _, mailer := newFixture()
	now := time.Now()

	require.NoError(t, svc.Subscribe(context.Background(), "good@example.com", ""))
	require.NoError(t, svc.Subscribe(context.Background(), "bad@example.com", ""))
	announcements.Items = []models.Announcement{
		{ID: primitive.NewObjectID(), Title: "Update", Body: "Hello", CreatedAt: now},
	}
	mailer.failFor["bad@example.com"] = errors.New("mailbox full")

	assert.NoError(t, svc.SendDigest(context.Background(), now))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "good@example.com", mailer.sent[0].to)
}

func TestSendDigestFailsWhenAllDeliveriesFail(t *testing.T) {
	svc, _, announcements, _, mailer := newFixture()
	now := time.Now()

	require.NoError(t, svc.Subscribe(context.Background(), "only@example.com", ""))
	announcements.Items = []models.Announcement{
		{ID: primitive.NewObjectID(), Title: "Update", Body: "Hello", CreatedAt: now},
	}
	mailer.failFor["only@example.com"] = errors.New("smtp refused")

	assert.Error(t, svc.SendDigest(context.Background(), now))
}
