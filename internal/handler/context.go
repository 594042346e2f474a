package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tienda/internal/middleware"
	"tienda/internal/models"
	"tienda/internal/utils"
)

// currentUser returns the authenticated user loaded by the auth
// middleware. Handlers behind the middleware can rely on it being set.
func currentUser(c *gin.Context) *models.User {
	v, _ := c.Get(middleware.ContextUserKey)
	user, _ := v.(*models.User)
	return user
}

// currentClaims returns the token claims for the presenting request.
func currentClaims(c *gin.Context) *utils.Claims {
	v, _ := c.Get(middleware.ContextClaimsKey)
	claims, _ := v.(*utils.Claims)
	return claims
}

// parseIDParam parses the :id route parameter. A malformed id can
// never match a record, so callers treat failure as not-found.
func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
