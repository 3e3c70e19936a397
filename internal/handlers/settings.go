package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"boliche-os/internal/auth"
	"boliche-os/internal/pricing"
	"boliche-os/internal/services"
	"boliche-os/internal/utils"
)

type SettingsHandler struct {
	venueService *services.VenueService
}

func NewSettingsHandler(venueService *services.VenueService) *SettingsHandler {
	return &SettingsHandler{
		venueService: venueService,
	}
}

func (h *SettingsHandler) GetPricingRules(c *gin.Context) {
	rules, err := h.venueService.PricingRules()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to load pricing rules", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Pricing rules retrieved", rules))
}

func (h *SettingsHandler) UpdatePricingRules(c *gin.Context) {
	var rules pricing.Rules
	if err := c.ShouldBindJSON(&rules); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid pricing rules payload", err.Error()))
		return
	}

	if err := h.venueService.UpdatePricingRules(&rules, auth.ActorFrom(c)); err != nil {
		respondServiceError(c, "Failed to update pricing rules", err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Pricing rules updated", rules))
}

func (h *SettingsHandler) ListHolidays(c *gin.Context) {
	holidays, err := h.venueService.Holidays()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to list holidays", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Holidays retrieved", holidays))
}

type holidayRequest struct {
	Date string `json:"date" binding:"required"`
	Name string `json:"name" binding:"required"`
}

func (h *SettingsHandler) AddHoliday(c *gin.Context) {
	var req holidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid holiday payload", err.Error()))
		return
	}

	if err := h.venueService.AddHoliday(req.Date, req.Name, auth.ActorFrom(c)); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Failed to add holiday", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Holiday added", nil))
}

func (h *SettingsHandler) RemoveHoliday(c *gin.Context) {
	date := c.Param("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Holiday date is required", ""))
		return
	}

	if err := h.venueService.RemoveHoliday(date, auth.ActorFrom(c)); err != nil {
		respondServiceError(c, "Failed to remove holiday", err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Holiday removed", nil))
}
