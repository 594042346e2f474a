package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tienda/internal/repository"
	"tienda/internal/utils"
)

const (
	// ContextUserKey holds the authenticated *models.User.
	ContextUserKey = "current_user"
	// ContextClaimsKey holds the validated *utils.Claims.
	ContextClaimsKey = "claims"
)

// AuthMiddleware validates the Bearer token, checks that its JTI is
// still registered (logout revokes it server-side) and loads the
// current user into the request context.
func AuthMiddleware(jwtSecret string, tokens *repository.TokenStore, userRepo *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization format. Use: Bearer <token>",
			})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		active, err := tokens.IsActive(c.Request.Context(), claims.ID)
		if err != nil || !active {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Token has been revoked",
			})
			c.Abort()
			return
		}

		user, err := userRepo.GetUserByID(claims.UserID)
		if err != nil || user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Account no longer exists",
			})
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextClaimsKey, claims)

		c.Next()
	}
}
