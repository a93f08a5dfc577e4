package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID             uuid.UUID    `gorm:"type:uuid;primarykey" json:"id"`
	Name           string       `gorm:"type:varchar(255);not null" json:"name"`
	Description    string       `gorm:"type:text" json:"description"`
	Status         TaskStatus   `gorm:"type:varchar(20);not null;default:'TODO'" json:"status"`
	Priority       TaskPriority `gorm:"type:varchar(20);not null;default:'MEDIUM'" json:"priority"`
	DueDate        *time.Time   `json:"dueDate"`
	EndDate        *time.Time   `json:"endDate"`
	ProjectID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"projectId"`
	AssignedUserID *uuid.UUID   `gorm:"type:uuid;index" json:"assignedUserId"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`

	// Relations
	Project Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	History []TaskHistory `gorm:"foreignKey:TaskID" json:"history,omitempty"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
