package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/codesolution/pmt/internal/models"
)

// TaskHistoryDTO is one entry of a task's change log.
type TaskHistoryDTO struct {
	ID         uuid.UUID           `json:"id"`
	TaskID     uuid.UUID           `json:"taskId"`
	ModifiedBy uuid.UUID           `json:"modifiedBy"`
	FieldName  models.HistoryField `json:"fieldName"`
	OldValue   *string             `json:"oldValue"`
	NewValue   *string             `json:"newValue"`
	ModifiedAt time.Time           `json:"modifiedAt"`
}

// ToTaskHistoryDTO converts a history entry.
func ToTaskHistoryDTO(entry models.TaskHistory) TaskHistoryDTO {
	return TaskHistoryDTO{
		ID:         entry.ID,
		TaskID:     entry.TaskID,
		ModifiedBy: entry.ModifiedBy,
		FieldName:  entry.FieldName,
		OldValue:   entry.OldValue,
		NewValue:   entry.NewValue,
		ModifiedAt: entry.ModifiedAt,
	}
}

// ToTaskHistoryDTOs converts a change log, preserving order.
func ToTaskHistoryDTOs(entries []models.TaskHistory) []TaskHistoryDTO {
	dtos := make([]TaskHistoryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, ToTaskHistoryDTO(e))
	}
	return dtos
}
