package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alumnilink/backend/internal/server/middleware"
	"github.com/alumnilink/backend/internal/service/checkout"
	"github.com/alumnilink/backend/pkg/clients/maya"
)

// CheckoutHandler exposes the payment gateway bridge endpoints.
type CheckoutHandler struct {
	svc    *checkout.Service
	logger *zap.Logger
}

// NewCheckoutHandler constructs the HTTP handler adapter.
func NewCheckoutHandler(svc *checkout.Service, logger *zap.Logger) *CheckoutHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutHandler{svc: svc, logger: logger}
}

// Checkout creates a gateway session and a pending donation.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var input checkout.Request
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	callerID := c.GetString(middleware.ContextUserID)
	result, err := h.svc.Checkout(c.Request.Context(), callerID, input)
	if err != nil {
		respondError(c, h.logger, err, "failed to create checkout")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Webhook ingests payment status callbacks from the gateway. It is mounted
// outside the authenticated group; the gateway authenticates by reference.
func (h *CheckoutHandler) Webhook(c *gin.Context) {
	var event maya.WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		h.logger.Warn("invalid webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := h.svc.HandleWebhook(c.Request.Context(), event); err != nil {
		h.logger.Error("failed processing payment webhook", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process webhook"})
		return
	}

	c.Status(http.StatusOK)
}
