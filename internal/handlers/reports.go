package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"boliche-os/internal/services"
	"boliche-os/internal/utils"
)

type ReportHandler struct {
	venueService *services.VenueService
}

func NewReportHandler(venueService *services.VenueService) *ReportHandler {
	return &ReportHandler{
		venueService: venueService,
	}
}

// GetConsumptionReport answers ?from=2026-03-02&to=2026-03-08 with the
// re-priced closed sessions of the range. Defaults to today.
func (h *ReportHandler) GetConsumptionReport(c *gin.Context) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.Add(24 * time.Hour)

	if v := c.Query("from"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid 'from' date", err.Error()))
			return
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid 'to' date", err.Error()))
			return
		}
		// Inclusive end date.
		to = parsed.Add(24 * time.Hour)
	}

	report, err := h.venueService.BuildConsumptionReport(from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to build report", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Report built", report))
}

func (h *ReportHandler) GetAuditTrail(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.venueService.AuditTrail(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to load audit trail", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Audit trail retrieved", entries))
}

func (h *ReportHandler) ReprintReceipt(c *gin.Context) {
	receiptNumber, err := strconv.ParseInt(c.Param("number"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid receipt number", err.Error()))
		return
	}

	snapshot, err := h.venueService.ReprintReceipt(receiptNumber)
	if err != nil {
		respondServiceError(c, "Failed to reprint receipt", err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Receipt retrieved", snapshot))
}
