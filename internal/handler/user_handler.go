package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tienda/internal/service"
	"tienda/pkg/logger"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

type updateUserRequest struct {
	Username    string  `json:"username" binding:"required,max=255"`
	Email       string  `json:"email" binding:"required,email,max=255"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,max=20"`
}

type patchUserRequest struct {
	Username    *string `json:"username" binding:"omitempty,max=255"`
	Email       *string `json:"email" binding:"omitempty,email,max=255"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,max=20"`
}

type changePasswordRequest struct {
	CurrentPassword      string `json:"current_password" binding:"required"`
	Password             string `json:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

// List returns every user.
// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Could not fetch users",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Users fetched successfully",
		"data":    users,
	})
}

// Get returns a single user.
// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.notFound(c)
		return
	}

	user, err := h.userService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			h.notFound(c)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Could not fetch user",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// Update fully replaces the user's profile.
// PUT /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.notFound(c)
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.validationError(c, fieldErrorsFromBinding(err))
		return
	}

	user, err := h.userService.Update(currentUser(c), id, service.UserInput{
		Username:    req.Username,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		h.renderUserError(c, err, "update")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User updated successfully",
		"data":    user,
	})
}

// Patch applies a partial profile update.
// PATCH /api/users/:id
func (h *UserHandler) Patch(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.notFound(c)
		return
	}

	var req patchUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.validationError(c, fieldErrorsFromBinding(err))
		return
	}

	user, err := h.userService.Patch(currentUser(c), id, service.UserPatch{
		Username:    req.Username,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		h.renderUserError(c, err, "update")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User partially updated",
		"data":    user,
	})
}

// ChangePassword replaces the stored hash after verifying the current
// password.
// PUT /api/users/:id/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.notFound(c)
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.validationError(c, fieldErrorsFromBinding(err))
		return
	}

	err := h.userService.ChangePassword(currentUser(c), id, req.CurrentPassword, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrWrongPassword) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "The current password is incorrect",
			})
			return
		}
		h.renderUserError(c, err, "change the password of")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password updated successfully",
	})
}

// Delete removes the account and revokes its tokens.
// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.notFound(c)
		return
	}

	if err := h.userService.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		h.renderUserError(c, err, "delete")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User deleted successfully",
	})
}

func (h *UserHandler) notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"message": "User not found",
	})
}

func (h *UserHandler) validationError(c *gin.Context, fieldErrs service.FieldErrors) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"success": false,
		"message": "Validation error",
		"errors":  fieldErrs,
	})
}

func (h *UserHandler) renderUserError(c *gin.Context, err error, action string) {
	var fieldErrs service.FieldErrors
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		h.notFound(c)
	case errors.Is(err, service.ErrUserForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "You are not allowed to " + action + " this user",
		})
	case errors.As(err, &fieldErrs):
		h.validationError(c, fieldErrs)
	default:
		logger.Log.Error("User operation failed",
			zap.String("action", action),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Unexpected error",
		})
	}
}
