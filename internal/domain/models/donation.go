package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DonationType discriminates monetary from in-kind contributions.
type DonationType string

const (
	DonationTypeCash  DonationType = "Cash"
	DonationTypeGoods DonationType = "Goods"
)

// DonationStatus tracks payment confirmation for gateway-backed donations.
// Direct sponsorship contributions are recorded confirmed; checkout-bridge
// donations start pending until the gateway webhook confirms them.
type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"
	DonationStatusConfirmed DonationStatus = "confirmed"
	DonationStatusFailed    DonationStatus = "failed"
)

// Donation is a single ledger entry. Entries are append-only: confirmation
// flips the status, nothing else is ever mutated or deleted.
type Donation struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	DonationName       string              `bson:"donation_name" json:"donationName"`
	Description        string              `bson:"description,omitempty" json:"description,omitempty"`
	Type               DonationType        `bson:"type" json:"type"`
	MonetaryValue      int64               `bson:"monetary_value" json:"monetaryValue"` // whole PHP
	DonorIDs           []string            `bson:"donor_ids" json:"donorID"`
	ReceiveDate        time.Time           `bson:"receive_date" json:"receiveDate"`
	EventID            *primitive.ObjectID `bson:"event_id,omitempty" json:"eventId,omitempty"`
	IsEventSponsorship bool                `bson:"is_event_sponsorship,omitempty" json:"isEventSponsorship,omitempty"`
	Status             DonationStatus      `bson:"status" json:"status"`
	CheckoutRef        string              `bson:"checkout_ref,omitempty" json:"checkoutRef,omitempty"`
	CreatedAt          time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time           `bson:"updated_at" json:"updatedAt"`
}

// CountsTowardReports reports whether the entry participates in donation
// statistics. Only confirmed cash entries are summed.
func (d Donation) CountsTowardReports() bool {
	return d.Type == DonationTypeCash && d.Status == DonationStatusConfirmed
}
