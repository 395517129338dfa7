package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sponsorship is the fundraising sub-document embedded in an event.
// CurrentAmount is maintained additively with atomic increments and is never
// decremented.
type Sponsorship struct {
	Enabled       bool     `bson:"enabled" json:"enabled"`
	Goal          int64    `bson:"goal" json:"goal"`
	CurrentAmount int64    `bson:"current_amount" json:"currentAmount"`
	Sponsors      []string `bson:"sponsors,omitempty" json:"sponsors,omitempty"`
}

// Event is an alumni event with optional sponsorship fundraising.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedBy   string             `bson:"created_by" json:"createdBy"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	StartDate   time.Time          `bson:"start_date" json:"startDate"`
	EndDate     time.Time          `bson:"end_date,omitempty" json:"endDate,omitempty"`
	Capacity    int                `bson:"capacity,omitempty" json:"capacity,omitempty"`
	Attendees   []string           `bson:"attendees,omitempty" json:"attendees,omitempty"`
	Images      []string           `bson:"images,omitempty" json:"images,omitempty"`
	Sponsorship *Sponsorship       `bson:"sponsorship,omitempty" json:"sponsorship,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// SponsorshipEnabled reports whether the event accepts contributions.
func (e Event) SponsorshipEnabled() bool {
	return e.Sponsorship != nil && e.Sponsorship.Enabled
}

// HasStarted reports whether the event is already underway at the given
// instant. Editing a started event is rejected.
func (e Event) HasStarted(now time.Time) bool {
	return !e.StartDate.IsZero() && !now.Before(e.StartDate)
}

// IsFull reports whether RSVP capacity has been reached. Zero capacity means
// unlimited.
func (e Event) IsFull() bool {
	return e.Capacity > 0 && len(e.Attendees) >= e.Capacity
}
