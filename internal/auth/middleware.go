package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"boliche-os/internal/models"
	"boliche-os/internal/utils"
)

const identityKey = "identity"

// Middleware validates the bearer token and puts the operator identity on
// the request context so handlers can attribute mutations.
func Middleware(service *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, utils.ErrorResponse("Authorization required", ""))
			c.Abort()
			return
		}

		identity, err := service.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.JSON(http.StatusUnauthorized, utils.ErrorResponse("Invalid or expired token", ""))
			c.Abort()
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireRole gates an endpoint to one role. The manager PIN is required
// for tariff and holiday changes.
func RequireRole(role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := IdentityFrom(c)
		if identity == nil || identity.Role != role {
			c.JSON(http.StatusForbidden, utils.ErrorResponse("Insufficient permissions", ""))
			c.Abort()
			return
		}
		c.Next()
	}
}

func IdentityFrom(c *gin.Context) *Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	identity, ok := v.(*Identity)
	if !ok {
		return nil
	}
	return identity
}

// ActorFrom returns the operator behind the request, or the zero actor when
// the route ran without the auth middleware.
func ActorFrom(c *gin.Context) models.Actor {
	if identity := IdentityFrom(c); identity != nil {
		return identity.Actor
	}
	return models.Actor{}
}
