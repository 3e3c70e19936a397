package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"boliche-os/internal/auth"
	"boliche-os/internal/services"
	"boliche-os/internal/utils"
)

type WaitingHandler struct {
	venueService *services.VenueService
}

func NewWaitingHandler(venueService *services.VenueService) *WaitingHandler {
	return &WaitingHandler{
		venueService: venueService,
	}
}

func (h *WaitingHandler) ListWaiting(c *gin.Context) {
	entries, err := h.venueService.WaitingList()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to list waiting customers", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Waiting list retrieved", entries))
}

type addWaitingRequest struct {
	Name           string `json:"name" binding:"required"`
	LanesRequested int    `json:"lanes_requested"`
	Table          string `json:"table"`
	Comanda        string `json:"comanda"`
	Vehicle        string `json:"vehicle"`
}

func (h *WaitingHandler) AddWaiting(c *gin.Context) {
	var req addWaitingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	entry, err := h.venueService.AddToWaitingList(services.AddWaitingInput{
		Name:           req.Name,
		LanesRequested: req.LanesRequested,
		Table:          req.Table,
		Comanda:        req.Comanda,
		Vehicle:        req.Vehicle,
	}, auth.ActorFrom(c))
	if err != nil {
		respondServiceError(c, "Failed to add waiting customer", err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Waiting customer added", entry))
}

func (h *WaitingHandler) RemoveWaiting(c *gin.Context) {
	if err := h.venueService.RemoveFromWaitingList(c.Param("id"), auth.ActorFrom(c)); err != nil {
		respondServiceError(c, "Failed to remove waiting customer", err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Waiting customer removed", nil))
}
