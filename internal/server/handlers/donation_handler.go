package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/alumnilink/backend/internal/domain/models"
	"github.com/alumnilink/backend/internal/repository/mongodb"
	"github.com/alumnilink/backend/internal/server/middleware"
)

// DonationHandler exposes the admin donation ledger endpoints.
type DonationHandler struct {
	donations mongodb.DonationRepository
	logger    *zap.Logger
}

// NewDonationHandler constructs the HTTP handler adapter.
func NewDonationHandler(donations mongodb.DonationRepository, logger *zap.Logger) *DonationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DonationHandler{donations: donations, logger: logger}
}

type donationInput struct {
	DonationName  string   `json:"donationName"`
	Description   string   `json:"description"`
	Type          string   `json:"type"`
	MonetaryValue int64    `json:"monetaryValue"`
	DonorIDs      []string `json:"donorID"`
	ReceiveDate   string   `json:"receiveDate"`
}

// Create records a donation manually, e.g. a cheque or goods received at the
// alumni office. Entries are recorded confirmed.
func (h *DonationHandler) Create(c *gin.Context) {
	var input donationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	donationType := models.DonationType(input.Type)
	if donationType != models.DonationTypeCash && donationType != models.DonationTypeGoods {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be Cash or Goods"})
		return
	}
	if input.DonationName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "donationName is required"})
		return
	}
	if donationType == models.DonationTypeCash && input.MonetaryValue <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "monetaryValue must be greater than 0"})
		return
	}
	if donationType == models.DonationTypeGoods {
		input.MonetaryValue = 0
	}

	donorIDs := input.DonorIDs
	if len(donorIDs) == 0 {
		donorIDs = []string{c.GetString(middleware.ContextUserID)}
	}

	donation := models.Donation{
		DonationName:  input.DonationName,
		Description:   input.Description,
		Type:          donationType,
		MonetaryValue: input.MonetaryValue,
		DonorIDs:      donorIDs,
		Status:        models.DonationStatusConfirmed,
	}

	if input.ReceiveDate != "" {
		t, err := time.Parse(time.RFC3339, input.ReceiveDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid receiveDate, use RFC3339"})
			return
		}
		donation.ReceiveDate = t
	}

	if _, err := h.donations.CreateDonation(c.Request.Context(), &donation); err != nil {
		respondError(c, h.logger, err, "failed to create donation")
		return
	}
	c.JSON(http.StatusCreated, donation)
}

// List returns the full ledger, optionally filtered by ?event_id=.
func (h *DonationHandler) List(c *gin.Context) {
	var (
		items []models.Donation
		err   error
	)

	if eventHex := c.Query("event_id"); eventHex != "" {
		eventID, parseErr := primitive.ObjectIDFromHex(eventHex)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event_id"})
			return
		}
		items, err = h.donations.ListDonationsByEvent(c.Request.Context(), eventID)
	} else {
		items, err = h.donations.GetAllDonations(c.Request.Context())
	}
	if err != nil {
		respondError(c, h.logger, err, "failed to list donations")
		return
	}
	if items == nil {
		items = []models.Donation{}
	}
	c.JSON(http.StatusOK, items)
}

// Get returns one ledger entry.
func (h *DonationHandler) Get(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	donation, err := h.donations.GetDonationByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "failed to load donation")
		return
	}
	c.JSON(http.StatusOK, donation)
}
