package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/codesolution/pmt/internal/dto"
	apierrors "github.com/codesolution/pmt/internal/errors"
	"github.com/codesolution/pmt/internal/services"
)

// UserHandler serves the user directory used by the user list view.
type UserHandler struct {
	authService *services.AuthService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// ListUsers returns all registered users.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.authService.ListUsers()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch users")
		return
	}

	dtos := make([]dto.UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, dto.ToUserDTO(u))
	}
	c.JSON(http.StatusOK, dtos)
}

// GetUser returns a single user by ID.
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	user, err := h.authService.GetUser(id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			apierrors.NotFound(c, err.Error())
			return
		}
		apierrors.InternalError(c, "Failed to fetch user")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}
