package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alumnilink/backend/internal/server/middleware"
	"github.com/alumnilink/backend/internal/service/sponsorship"
)

// SponsorshipHandler exposes the event sponsorship endpoints.
type SponsorshipHandler struct {
	svc    *sponsorship.Service
	logger *zap.Logger
}

// NewSponsorshipHandler constructs the HTTP handler adapter.
func NewSponsorshipHandler(svc *sponsorship.Service, logger *zap.Logger) *SponsorshipHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SponsorshipHandler{svc: svc, logger: logger}
}

// Progress returns sponsorship state for one event.
func (h *SponsorshipHandler) Progress(c *gin.Context) {
	eventID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	progress, err := h.svc.Progress(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, h.logger, err, "failed to load sponsorship progress")
		return
	}

	c.JSON(http.StatusOK, progress)
}

// Contribute records a cash contribution and returns updated progress.
func (h *SponsorshipHandler) Contribute(c *gin.Context) {
	eventID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	var input struct {
		Amount int64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	callerID := c.GetString(middleware.ContextUserID)
	progress, err := h.svc.Contribute(c.Request.Context(), eventID, callerID, input.Amount)
	if err != nil {
		respondError(c, h.logger, err, "failed to record contribution")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"currentAmount": progress.CurrentAmount,
		"goal":          progress.Goal,
	})
}

// SubmitRequest records a cash or in-kind sponsorship offer.
func (h *SponsorshipHandler) SubmitRequest(c *gin.Context) {
	eventID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	var input sponsorship.Request
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	callerID := c.GetString(middleware.ContextUserID)
	donation, err := h.svc.SubmitRequest(c.Request.Context(), eventID, callerID, input)
	if err != nil {
		respondError(c, h.logger, err, "failed to record sponsorship request")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":            donation.ID.Hex(),
		"donationName":  donation.DonationName,
		"type":          donation.Type,
		"monetaryValue": donation.MonetaryValue,
		"status":        donation.Status,
	})
}
