package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tienda/internal/service"
	"tienda/pkg/logger"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type RegisterRequest struct {
	Username    string  `json:"username" binding:"required,min=3,max=50"`
	Email       string  `json:"email" binding:"required,email,max=255"`
	Password    string  `json:"password" binding:"required,min=8,max=128"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,max=20"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.Warn("Registration request parsing failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation error",
			"errors":  fieldErrorsFromBinding(err),
			"status":  http.StatusBadRequest,
		})
		return
	}

	logger.Log.Info("User registration attempt",
		zap.String("username", req.Username),
		zap.String("email", req.Email),
		zap.String("ip", c.ClientIP()),
	)

	user, token, err := h.authService.Register(c.Request.Context(), req.Username, req.Email, req.Password, req.PhoneNumber)
	if err != nil {
		var fieldErrs service.FieldErrors
		if errors.As(err, &fieldErrs) {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "Validation error",
				"errors":  fieldErrs,
				"status":  http.StatusBadRequest,
			})
			return
		}

		logger.Log.Error("Registration failed",
			zap.String("username", req.Username),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Could not register user",
			"status":  http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   token,
		"user":    user,
		"status":  http.StatusCreated,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.Warn("Login request parsing failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation error",
			"errors":  fieldErrorsFromBinding(err),
			"status":  http.StatusBadRequest,
		})
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid credentials",
				"status":  http.StatusUnauthorized,
			})
			return
		}

		logger.Log.Error("Login failed",
			zap.String("email", req.Email),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Could not log in",
			"status":  http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    user,
		"status":  http.StatusOK,
	})
}

// Logout revokes the presenting token.
func (h *AuthHandler) Logout(c *gin.Context) {
	user := currentUser(c)
	claims := currentClaims(c)

	if err := h.authService.Logout(c.Request.Context(), user.ID, claims.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Could not log out",
			"status":  http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
		"status":  http.StatusOK,
	})
}

// LogoutAll revokes every session the user holds.
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	user := currentUser(c)

	if err := h.authService.LogoutAll(c.Request.Context(), user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Could not log out sessions",
			"status":  http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "All sessions logged out",
		"status":  http.StatusOK,
	})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data": currentUser(c),
	})
}

// Refresh rotates the presenting token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	user := currentUser(c)
	claims := currentClaims(c)

	token, err := h.authService.Refresh(c.Request.Context(), user, claims.ID)
	if err != nil {
		logger.Log.Error("Token refresh failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Could not refresh token",
			"status":  http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Token refreshed",
		"token":   token,
		"status":  http.StatusOK,
	})
}
