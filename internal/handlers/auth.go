package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"boliche-os/internal/auth"
	"boliche-os/internal/utils"
)

type AuthHandler struct {
	authService *auth.Service
}

func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type loginRequest struct {
	PIN string `json:"pin" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	result, err := h.authService.Login(req.PIN)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidPIN) {
			c.JSON(http.StatusUnauthorized, utils.ErrorResponse("Invalid PIN", ""))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Login failed", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Logged in", result))
}
