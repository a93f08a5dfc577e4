package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleMember   Role = "MEMBER"
	RoleObserver Role = "OBSERVER"
)

// IsValid reports whether the role is one of the three membership roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleMember, RoleObserver:
		return true
	}
	return false
}

// ProjectMember associates a user with a project. At most one row may exist
// per (project, user) pair; the composite primary key enforces it.
type ProjectMember struct {
	ProjectID uuid.UUID `gorm:"type:uuid;primarykey" json:"projectId"`
	UserID    uuid.UUID `gorm:"type:uuid;primarykey" json:"userId"`
	Role      Role      `gorm:"type:varchar(20);not null" json:"role"`
	JoinedAt  time.Time `gorm:"autoCreateTime" json:"joined_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
