package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/alumnilink/backend/internal/repository/mongodb"
	"github.com/alumnilink/backend/internal/service/checkout"
	"github.com/alumnilink/backend/internal/service/newsletter"
	"github.com/alumnilink/backend/internal/service/sponsorship"
	"github.com/alumnilink/backend/pkg/clients/maya"
)

// respondError maps domain errors onto HTTP status codes. The first failing
// check short-circuits each handler, so every error funnels through here.
func respondError(c *gin.Context, logger *zap.Logger, err error, fallback string) {
	var gatewayErr *maya.APIError

	switch {
	case errors.Is(err, sponsorship.ErrInvalidAmount),
		errors.Is(err, sponsorship.ErrMissingFields),
		errors.Is(err, sponsorship.ErrSponsorshipDisabled),
		errors.Is(err, checkout.ErrInvalidEventID),
		errors.Is(err, newsletter.ErrInvalidEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, sponsorship.ErrEventNotFound),
		errors.Is(err, mongodb.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &gatewayErr):
		logger.Error("payment gateway failure", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": gatewayErr.Error()})
	default:
		logger.Error(fallback, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// parseObjectID reads a hex object id path parameter, responding 400 itself
// on failure.
func parseObjectID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return primitive.NilObjectID, false
	}
	return id, true
}
