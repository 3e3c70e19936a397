package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"boliche-os/internal/auth"
	"boliche-os/internal/models"
	"boliche-os/internal/services"
	"boliche-os/internal/utils"
)

type ReservationHandler struct {
	venueService *services.VenueService
}

func NewReservationHandler(venueService *services.VenueService) *ReservationHandler {
	return &ReservationHandler{
		venueService: venueService,
	}
}

func (h *ReservationHandler) ListReservations(c *gin.Context) {
	reservations, err := h.venueService.Reservations()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to list reservations", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Reservations retrieved", reservations))
}

type addReservationRequest struct {
	LaneID       string    `json:"lane_id"`
	CustomerName string    `json:"customer_name" binding:"required"`
	LaneCount    int       `json:"lane_count"`
	StartTime    time.Time `json:"start_time" binding:"required"`
	EndTime      time.Time `json:"end_time"`
	Observation  string    `json:"observation"`
}

func (h *ReservationHandler) AddReservation(c *gin.Context) {
	var req addReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	res, err := h.venueService.AddReservation(services.AddReservationInput{
		LaneID:       req.LaneID,
		CustomerName: req.CustomerName,
		LaneCount:    req.LaneCount,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Observation:  req.Observation,
	}, auth.ActorFrom(c))
	if err != nil {
		respondServiceError(c, "Failed to create reservation", err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Reservation created", res))
}

func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	if err := h.venueService.CancelReservation(c.Param("id"), auth.ActorFrom(c)); err != nil {
		respondServiceError(c, "Failed to cancel reservation", err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Reservation cancelled", nil))
}

type reservationStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *ReservationHandler) UpdateStatus(c *gin.Context) {
	var req reservationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	err := h.venueService.UpdateReservationStatus(c.Param("id"), models.ReservationStatus(req.Status), auth.ActorFrom(c))
	if err != nil {
		respondServiceError(c, "Failed to update reservation status", err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Reservation status updated", nil))
}

type checkInRequest struct {
	Comanda string   `json:"comanda" binding:"required"`
	LaneIDs []string `json:"lane_ids"`
}

func (h *ReservationHandler) CheckIn(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	res, err := h.venueService.CheckInReservation(c.Param("id"), req.Comanda, req.LaneIDs, auth.ActorFrom(c))
	if err != nil {
		respondServiceError(c, "Failed to check in reservation", err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Reservation checked in", res))
}
