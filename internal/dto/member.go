package dto

import (
	"github.com/google/uuid"

	"github.com/codesolution/pmt/internal/models"
)

// ProjectMemberDTO is a membership row flattened with the member's user info,
// the shape the member list endpoints return.
type ProjectMemberDTO struct {
	ProjectID uuid.UUID   `json:"projectId"`
	UserID    uuid.UUID   `json:"userId"`
	UserEmail string      `json:"userEmail,omitempty"`
	UserName  string      `json:"userName,omitempty"`
	Role      models.Role `json:"role"`
}

// ToProjectMemberDTO flattens a membership with its preloaded user.
func ToProjectMemberDTO(member models.ProjectMember) ProjectMemberDTO {
	return ProjectMemberDTO{
		ProjectID: member.ProjectID,
		UserID:    member.UserID,
		UserEmail: member.User.Email,
		UserName:  member.User.Username,
		Role:      member.Role,
	}
}

// ToProjectMemberDTOs converts a member list.
func ToProjectMemberDTOs(members []models.ProjectMember) []ProjectMemberDTO {
	dtos := make([]ProjectMemberDTO, 0, len(members))
	for _, m := range members {
		dtos = append(dtos, ToProjectMemberDTO(m))
	}
	return dtos
}
