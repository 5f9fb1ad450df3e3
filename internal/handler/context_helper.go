package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/edupulse/presence-api/internal/middleware"
	"github.com/edupulse/presence-api/internal/models"
)

// claimsFromContext returns the bearer claims the JWT middleware stored, or
// nil on open routes where no token was required.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// uploaderFromContext resolves who performed a write, falling back to the
// subject claim since the identity provider does not always set a name.
func uploaderFromContext(c *gin.Context) string {
	claims := claimsFromContext(c)
	if claims == nil {
		return ""
	}
	if claims.Name != "" {
		return claims.Name
	}
	return claims.Subject
}
