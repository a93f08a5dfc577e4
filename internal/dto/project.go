package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/codesolution/pmt/internal/models"
)

// ProjectDTO is the project representation returned by the project endpoints.
type ProjectDTO struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	StartingDate *time.Time `json:"startingDate"`
}

// ToProjectDTO converts a project model to its wire representation.
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:           project.ID,
		Name:         project.Name,
		Description:  project.Description,
		StartingDate: project.StartingDate,
	}
}

// ToProjectDTOs converts a project list.
func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	dtos := make([]ProjectDTO, 0, len(projects))
	for _, p := range projects {
		dtos = append(dtos, ToProjectDTO(p))
	}
	return dtos
}
