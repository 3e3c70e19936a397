package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"boliche-os/internal/auth"
	"boliche-os/internal/services"
	"boliche-os/internal/utils"
)

type LaneHandler struct {
	venueService *services.VenueService
}

func NewLaneHandler(venueService *services.VenueService) *LaneHandler {
	return &LaneHandler{
		venueService: venueService,
	}
}

func (h *LaneHandler) ListLanes(c *gin.Context) {
	lanes, err := h.venueService.Lanes()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to list lanes", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Lanes retrieved", lanes))
}

func (h *LaneHandler) GetLaneDetail(c *gin.Context) {
	laneID := c.Param("id")
	if laneID == "" {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Lane ID is required", ""))
		return
	}

	detail, err := h.venueService.GetLaneDetail(laneID)
	if err != nil {
		respondServiceError(c, "Failed to retrieve lane", err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Lane retrieved", detail))
}

type openLaneRequest struct {
	Comanda      string `json:"comanda" binding:"required"`
	CustomerName string `json:"customer_name"`
}

func (h *LaneHandler) OpenLane(c *gin.Context) {
	var req openLaneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	session, err := h.venueService.OpenLane(c.Param("id"), req.Comanda, req.CustomerName, auth.ActorFrom(c))
	if err != nil {
		respondServiceError(c, "Failed to open lane", err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Lane opened", session))
}

type closeLaneRequest struct {
	DiscountMinutes int  `json:"discount_minutes"`
	IsBirthday      bool `json:"is_birthday"`
}

func (h *LaneHandler) CloseLane(c *gin.Context) {
	var req closeLaneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}
	if req.DiscountMinutes < 0 {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Discount minutes must not be negative", ""))
		return
	}

	session, err := h.venueService.CloseLane(c.Param("id"), req.DiscountMinutes, req.IsBirthday, auth.ActorFrom(c))
	if err != nil {
		respondServiceError(c, "Failed to close lane", err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Lane closed", session))
}

type maintenanceRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *LaneHandler) SetMaintenance(c *gin.Context) {
	var req maintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	if err := h.venueService.SetMaintenance(c.Param("id"), req.Reason, auth.ActorFrom(c)); err != nil {
		respondServiceError(c, "Failed to set maintenance", err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Maintenance set", nil))
}

func (h *LaneHandler) ClearMaintenance(c *gin.Context) {
	if err := h.venueService.ClearMaintenance(c.Param("id"), auth.ActorFrom(c)); err != nil {
		respondServiceError(c, "Failed to clear maintenance", err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Maintenance cleared", nil))
}

func (h *LaneHandler) BlockLane(c *gin.Context) {
	if err := h.venueService.SetReserved(c.Param("id"), auth.ActorFrom(c)); err != nil {
		respondServiceError(c, "Failed to block lane", err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Lane blocked", nil))
}

func (h *LaneHandler) UnblockLane(c *gin.Context) {
	if err := h.venueService.ClearReserved(c.Param("id"), auth.ActorFrom(c)); err != nil {
		respondServiceError(c, "Failed to unblock lane", err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Lane unblocked", nil))
}

type correctStartTimeRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
}

func (h *LaneHandler) CorrectStartTime(c *gin.Context) {
	var req correctStartTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	session, err := h.venueService.CorrectStartTime(c.Param("id"), req.StartTime, auth.ActorFrom(c))
	if err != nil {
		respondServiceError(c, "Failed to correct start time", err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Start time corrected", session))
}

type transferRequest struct {
	ToLaneID string `json:"to_lane_id" binding:"required"`
}

func (h *LaneHandler) TransferSession(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	if err := h.venueService.TransferSession(c.Param("id"), req.ToLaneID, auth.ActorFrom(c)); err != nil {
		respondServiceError(c, "Failed to transfer session", err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Session transferred", nil))
}

// ReservedSoon feeds the card badge that warns a reservation is about to
// claim the lane.
func (h *LaneHandler) ReservedSoon(c *gin.Context) {
	soon, err := h.venueService.ReservedSoon(time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to compute upcoming reservations", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Upcoming reservations computed", soon))
}
