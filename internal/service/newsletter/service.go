package newsletter

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alumnilink/backend/internal/domain/models"
	"github.com/alumnilink/backend/internal/repository/mongodb"
	"github.com/alumnilink/backend/pkg/clients/zeptomail"
)

// ErrInvalidEmail is returned for obviously malformed subscription addresses.
var ErrInvalidEmail = errors.New("a valid email address is required")

const digestLookback = 7 * 24 * time.Hour

// Service assembles and sends the periodic alumni digest and manages the
// subscriber list.
type Service struct {
	subscribers   mongodb.SubscriberRepository
	announcements mongodb.AnnouncementRepository
	events        mongodb.EventRepository
	mailer        zeptomail.Client
	logger        *zap.Logger
}

// NewService wires a newsletter service instance.
func NewService(subscribers mongodb.SubscriberRepository, announcements mongodb.AnnouncementRepository, events mongodb.EventRepository, mailer zeptomail.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		subscribers:   subscribers,
		announcements: announcements,
		events:        events,
		mailer:        mailer,
		logger:        logger,
	}
}

// Subscribe adds or refreshes a newsletter recipient.
func (s *Service) Subscribe(ctx context.Context, email, name string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}

	sub := &models.Subscriber{Email: email, Name: name}
	if err := s.subscribers.Subscribe(ctx, sub); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	return nil
}

// Unsubscribe removes a recipient. Removing an unknown address is a no-op.
func (s *Service) Unsubscribe(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	return s.subscribers.Unsubscribe(ctx, email)
}

// SendDigest emails the past week's announcements and the upcoming events to
// every subscriber. A send failure for one recipient does not stop the rest.
func (s *Service) SendDigest(ctx context.Context, now time.Time) error {
	subs, err := s.subscribers.ListSubscribers(ctx)
	if err != nil {
		return fmt.Errorf("load subscribers: %w", err)
	}
	if len(subs) == 0 {
		s.logger.Info("no newsletter subscribers, skipping digest")
		return nil
	}

	body, empty, err := s.buildDigest(ctx, now)
	if err != nil {
		return err
	}
	if empty {
		s.logger.Info("nothing new to report, skipping digest")
		return nil
	}

	subject := fmt.Sprintf("AlumniLink digest for %s", now.Format("January 2, 2006"))

	var failures int
	for _, sub := range subs {
		if err := s.mailer.SendEmail(ctx, sub.Email, sub.Name, subject, body); err != nil {
			failures++
			s.logger.Warn("failed sending digest", zap.String("email", sub.Email), zap.Error(err))
		}
	}

	s.logger.Info("digest sent",
		zap.Int("recipients", len(subs)-failures),
		zap.Int("failures", failures))

	if failures == len(subs) {
		return fmt.Errorf("digest delivery failed for all %d subscribers", failures)
	}
	return nil
}

func (s *Service) buildDigest(ctx context.Context, now time.Time) (string, bool, error) {
	announcements, err := s.announcements.ListAnnouncementsSince(ctx, now.Add(-digestLookback))
	if err != nil {
		return "", false, fmt.Errorf("load announcements: %w", err)
	}

	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return "", false, fmt.Errorf("load events: %w", err)
	}

	var upcoming []models.Event
	for _, e := range events {
		if e.StartDate.After(now) {
			upcoming = append(upcoming, e)
		}
	}

	if len(announcements) == 0 && len(upcoming) == 0 {
		return "", true, nil
	}

	var b strings.Builder
	b.WriteString("<h2>AlumniLink weekly digest</h2>")

	if len(announcements) > 0 {
		b.WriteString("<h3>Announcements</h3><ul>")
		for _, a := range announcements {
			fmt.Fprintf(&b, "<li><strong>%s</strong> %s</li>",
				html.EscapeString(a.Title), html.EscapeString(a.Body))
		}
		b.WriteString("</ul>")
	}

	if len(upcoming) > 0 {
		b.WriteString("<h3>Upcoming events</h3><ul>")
		for _, e := range upcoming {
			fmt.Fprintf(&b, "<li><strong>%s</strong> on %s at %s</li>",
				html.EscapeString(e.Title),
				e.StartDate.Format("January 2, 2006"),
				html.EscapeString(e.Location))
		}
		b.WriteString("</ul>")
	}

	return b.String(), false, nil
}
