package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/codesolution/pmt/internal/models"
)

// TaskDTO is the flat task representation returned by the task endpoints.
type TaskDTO struct {
	ID             uuid.UUID           `json:"id"`
	Name           string              `json:"name"`
	Description    string              `json:"description"`
	Status         models.TaskStatus   `json:"status"`
	Priority       models.TaskPriority `json:"priority"`
	DueDate        *time.Time          `json:"dueDate"`
	EndDate        *time.Time          `json:"endDate"`
	ProjectID      uuid.UUID           `json:"projectId"`
	AssignedUserID *uuid.UUID          `json:"assignedUserId"`
}

// ToTaskDTO converts a task model to its flat representation.
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:             task.ID,
		Name:           task.Name,
		Description:    task.Description,
		Status:         task.Status,
		Priority:       task.Priority,
		DueDate:        task.DueDate,
		EndDate:        task.EndDate,
		ProjectID:      task.ProjectID,
		AssignedUserID: task.AssignedUserID,
	}
}

// ToTaskDTOs converts a task list.
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		dtos = append(dtos, ToTaskDTO(t))
	}
	return dtos
}
