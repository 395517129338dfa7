package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alumnilink/backend/internal/service/newsletter"
)

// NewsletterHandler exposes subscription management endpoints.
type NewsletterHandler struct {
	svc    *newsletter.Service
	logger *zap.Logger
}

// NewNewsletterHandler constructs the HTTP handler adapter.
func NewNewsletterHandler(svc *newsletter.Service, logger *zap.Logger) *NewsletterHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NewsletterHandler{svc: svc, logger: logger}
}

type subscriptionInput struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Subscribe adds the caller's email to the digest list.
func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	var input subscriptionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.Subscribe(c.Request.Context(), input.Email, input.Name); err != nil {
		respondError(c, h.logger, err, "failed to subscribe")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "subscribed"})
}

// Unsubscribe removes the caller's email from the digest list.
func (h *NewsletterHandler) Unsubscribe(c *gin.Context) {
	var input subscriptionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.Unsubscribe(c.Request.Context(), input.Email); err != nil {
		respondError(c, h.logger, err, "failed to unsubscribe")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "unsubscribed"})
}
