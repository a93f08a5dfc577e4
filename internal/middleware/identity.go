package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/codesolution/pmt/internal/constants"
	apierrors "github.com/codesolution/pmt/internal/errors"
	"github.com/codesolution/pmt/internal/repository"
)

// RequireIdentity authenticates requests via the X-User-Id header. The header
// must hold the UUID of an existing user; auth routes are not mounted behind
// this middleware.
func RequireIdentity(userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(constants.IdentityHeader))
		if raw == "" {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			apierrors.Unauthorized(c, "Invalid user ID")
			c.Abort()
			return
		}

		if _, err := userRepo.FindByID(userID); err != nil {
			apierrors.Forbidden(c, "Unknown user")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return uuid.Nil, false
	}

	userID, ok := value.(uuid.UUID)
	if !ok {
		return uuid.Nil, false
	}
	return userID, true
}
