package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"boliche-os/internal/services"
	"boliche-os/internal/utils"
)

// respondServiceError maps the service sentinel errors onto HTTP statuses
// so every handler answers rule violations the same way.
func respondServiceError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrLaneNotFound),
		errors.Is(err, services.ErrReservationNotFound),
		errors.Is(err, services.ErrWaitingNotFound),
		errors.Is(err, services.ErrNoActiveSession):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidComanda),
		errors.Is(err, services.ErrInvalidStartTime),
		errors.Is(err, services.ErrInvalidTransition):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrLaneUnavailable),
		errors.Is(err, services.ErrComandaInUse),
		errors.Is(err, services.ErrNoPauseInProgress),
		errors.Is(err, services.ErrLaneTypeMismatch),
		errors.Is(err, services.ErrReservationFinal),
		errors.Is(err, services.ErrNoLaneAvailable):
		status = http.StatusConflict
	case errors.Is(err, services.ErrReceiptNotFound):
		status = http.StatusNotFound
	}

	c.JSON(status, utils.ErrorResponse(message, err.Error()))
}
