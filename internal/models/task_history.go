package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistoryField names the task field a history entry records a change for.
type HistoryField string

const (
	HistoryFieldName         HistoryField = "name"
	HistoryFieldDescription  HistoryField = "description"
	HistoryFieldStatus       HistoryField = "status"
	HistoryFieldPriority     HistoryField = "priority"
	HistoryFieldDueDate      HistoryField = "dueDate"
	HistoryFieldEndDate      HistoryField = "endDate"
	HistoryFieldAssignedUser HistoryField = "assignedUser"
)

// TaskHistory is an append-only record of a single field change on a task.
// Rows are never updated or deleted.
type TaskHistory struct {
	ID         uuid.UUID    `gorm:"type:uuid;primarykey" json:"id"`
	TaskID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"taskId"`
	ModifiedBy uuid.UUID    `gorm:"type:uuid;not null" json:"modifiedBy"`
	FieldName  HistoryField `gorm:"type:varchar(30);not null" json:"fieldName"`
	OldValue   *string      `gorm:"type:text" json:"oldValue"`
	NewValue   *string      `gorm:"type:text" json:"newValue"`
	ModifiedAt time.Time    `gorm:"autoCreateTime" json:"modifiedAt"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"-"`
}

func (h *TaskHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
