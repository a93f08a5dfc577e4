package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is an in-app message created when a task is assigned.
type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	TaskID    uuid.UUID `gorm:"type:uuid;not null" json:"taskId"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	IsRead    bool      `gorm:"not null;default:false" json:"isRead"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Task Task `gorm:"foreignKey:TaskID" json:"-"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
