package dto

import (
	"github.com/google/uuid"

	"github.com/codesolution/pmt/internal/models"
)

// UserDTO is the public representation of a user.
type UserDTO struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// ToUserDTO converts a user model to its public representation.
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

// AuthResponse is returned by register and login. Token is reserved for
// deployments that issue one; the identity header flow leaves it empty.
type AuthResponse struct {
	Token    *string   `json:"token"`
	UserID   uuid.UUID `json:"userId"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// ToAuthResponse builds the auth payload for a user.
func ToAuthResponse(user models.User) AuthResponse {
	return AuthResponse{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}
