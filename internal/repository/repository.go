package repository

import (
	"github.com/google/uuid"

	"github.com/codesolution/pmt/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uuid.UUID) (*models.User, error)

	// FindByEmail finds a user by email address
	FindByEmail(email string) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// List returns all users
	List() ([]models.User, error)
}

// ProjectRepository defines the interface for project and membership data access
type ProjectRepository interface {
	// CreateWithAdmin creates a project and its creator's ADMIN membership
	// within a single transaction.
	CreateWithAdmin(project *models.Project, creatorID uuid.UUID) error

	// FindByID finds a project by ID
	FindByID(id uuid.UUID) (*models.Project, error)

	// List returns all projects
	List() ([]models.Project, error)

	// ListByMemberID returns projects the user is a member of
	ListByMemberID(userID uuid.UUID) ([]models.Project, error)

	// Update updates a project
	Update(project *models.Project) error

	// Delete removes a project together with its tasks, history and members
	Delete(id uuid.UUID) error

	// AddMember adds a member to a project
	AddMember(member *models.ProjectMember) error

	// FindMember finds a specific project member
	FindMember(projectID, userID uuid.UUID) (*models.ProjectMember, error)

	// ListMembers lists all members of a project with their user loaded
	ListMembers(projectID uuid.UUID) ([]models.ProjectMember, error)

	// UpdateMemberRole changes the role of an existing member
	UpdateMemberRole(projectID, userID uuid.UUID, role models.Role) error

	// RemoveMember removes a member from a project
	RemoveMember(projectID, userID uuid.UUID) error
}

// TaskRepository defines the interface for task and task-history data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID
	FindByID(id uuid.UUID) (*models.Task, error)

	// List returns all tasks
	List() ([]models.Task, error)

	// ListByProjectID returns all tasks belonging to a project
	ListByProjectID(projectID uuid.UUID) ([]models.Task, error)

	// ListByProjectIDAndStatus returns a project's tasks filtered by status
	ListByProjectIDAndStatus(projectID uuid.UUID, status models.TaskStatus) ([]models.Task, error)

	// ListByAssignedUserID returns tasks assigned to a user
	ListByAssignedUserID(userID uuid.UUID) ([]models.Task, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete removes a task together with its history
	Delete(id uuid.UUID) error

	// CreateHistory appends a history entry for a task
	CreateHistory(entry *models.TaskHistory) error

	// ListHistory returns a task's history, newest first
	ListHistory(taskID uuid.UUID) ([]models.TaskHistory, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// Create creates a new notification
	Create(notification *models.Notification) error

	// ListByUserID returns a user's notifications, newest first
	ListByUserID(userID uuid.UUID) ([]models.Notification, error)

	// MarkRead marks a notification as read
	MarkRead(id, userID uuid.UUID) error
}
