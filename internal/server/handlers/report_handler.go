package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alumnilink/backend/internal/service/reporting"
)

// ReportHandler exposes donation statistics for dashboards.
type ReportHandler struct {
	svc    *reporting.Service
	logger *zap.Logger
}

// NewReportHandler constructs the HTTP handler adapter.
func NewReportHandler(svc *reporting.Service, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{svc: svc, logger: logger}
}

// DonationStats recomputes and returns the monthly, yearly and cumulative
// donation statistics.
func (h *ReportHandler) DonationStats(c *gin.Context) {
	report, err := h.svc.DonationReport(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, h.logger, err, "failed to build donation report")
		return
	}

	c.JSON(http.StatusOK, report)
}
