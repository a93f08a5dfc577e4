package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codesolution/pmt/internal/models"
	"github.com/codesolution/pmt/internal/repository"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrTaskNameRequired    = errors.New("task name is required")
	ErrInvalidTaskStatus   = errors.New("invalid task status")
	ErrInvalidTaskPriority = errors.New("invalid task priority")
	ErrNotTaskContributor  = errors.New("you must be a member or administrator of the project to modify tasks")
	ErrAssigneeNotMember   = errors.New("the user is not a member of this project")
)

const dateLayout = "2006-01-02"

// TaskService handles task business logic, including the append-only change
// history recorded for every mutation.
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	notifRepo   repository.NotificationRepository
	mailer      Mailer
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	notifRepo repository.NotificationRepository,
	mailer Mailer,
) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		notifRepo:   notifRepo,
		mailer:      mailer,
	}
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	ProjectID   uuid.UUID
	Name        string
	Description string
	Priority    models.TaskPriority
	DueDate     *time.Time
	CreatorID   uuid.UUID
}

// CreateTask creates a task in a project. The creator must be an ADMIN or
// MEMBER of the project. A history entry records the creation.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrTaskNameRequired
	}

	if err := s.ensureContributor(input.ProjectID, input.CreatorID); err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !priority.IsValid() {
		return nil, ErrInvalidTaskPriority
	}

	task := &models.Task{
		Name:        input.Name,
		Description: input.Description,
		Status:      models.TaskStatusTodo,
		Priority:    priority,
		DueDate:     input.DueDate,
		ProjectID:   input.ProjectID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.recordChange(task.ID, input.CreatorID, models.HistoryFieldName, nil, &task.Name)

	return task, nil
}

// GetTask returns a task by ID.
func (s *TaskService) GetTask(id uuid.UUID) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// ListTasks returns all tasks.
func (s *TaskService) ListTasks() ([]models.Task, error) {
	tasks, err := s.taskRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListTasksByProject returns a project's tasks. The requester must be a
// member of the project (any role).
func (s *TaskService) ListTasksByProject(projectID, requesterID uuid.UUID) ([]models.Task, error) {
	if err := s.ensureMember(projectID, requesterID); err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.ListByProjectID(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListTasksByProjectAndStatus returns a project's tasks filtered by status.
func (s *TaskService) ListTasksByProjectAndStatus(projectID uuid.UUID, status models.TaskStatus) ([]models.Task, error) {
	if !status.IsValid() {
		return nil, ErrInvalidTaskStatus
	}

	tasks, err := s.taskRepo.ListByProjectIDAndStatus(projectID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListTasksByAssignedUser returns tasks assigned to a user.
func (s *TaskService) ListTasksByAssignedUser(userID uuid.UUID) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListByAssignedUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTaskInput represents the mutable fields of a task.
type UpdateTaskInput struct {
	Name        string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	DueDate     *time.Time
	EndDate     *time.Time
}

// UpdateTask updates a task. The updater must be an ADMIN or MEMBER of the
// task's project. Every changed field produces a history entry.
func (s *TaskService) UpdateTask(taskID uuid.UUID, input UpdateTaskInput, updaterID uuid.UUID) (*models.Task, error) {
	task, err := s.GetTask(taskID)
	if err != nil {
		return nil, err
	}

	if err := s.ensureContributor(task.ProjectID, updaterID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrTaskNameRequired
	}
	if !input.Status.IsValid() {
		return nil, ErrInvalidTaskStatus
	}
	if !input.Priority.IsValid() {
		return nil, ErrInvalidTaskPriority
	}

	// Diff against the stored values before mutating; the entries are only
	// written once the update itself has succeeded.
	type fieldChange struct {
		field    models.HistoryField
		oldValue *string
		newValue *string
	}
	var changes []fieldChange

	if task.Name != input.Name {
		changes = append(changes, fieldChange{models.HistoryFieldName, strPtr(task.Name), strPtr(input.Name)})
	}
	if task.Description != input.Description {
		changes = append(changes, fieldChange{models.HistoryFieldDescription, strPtr(task.Description), strPtr(input.Description)})
	}
	if task.Status != input.Status {
		changes = append(changes, fieldChange{models.HistoryFieldStatus, strPtr(string(task.Status)), strPtr(string(input.Status))})
	}
	if task.Priority != input.Priority {
		changes = append(changes, fieldChange{models.HistoryFieldPriority, strPtr(string(task.Priority)), strPtr(string(input.Priority))})
	}
	if !sameDate(task.DueDate, input.DueDate) {
		changes = append(changes, fieldChange{models.HistoryFieldDueDate, fmtDate(task.DueDate), fmtDate(input.DueDate)})
	}
	if !sameDate(task.EndDate, input.EndDate) {
		changes = append(changes, fieldChange{models.HistoryFieldEndDate, fmtDate(task.EndDate), fmtDate(input.EndDate)})
	}

	task.Name = input.Name
	task.Description = input.Description
	task.Status = input.Status
	task.Priority = input.Priority
	task.DueDate = input.DueDate
	task.EndDate = input.EndDate

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	for _, change := range changes {
		s.recordChange(task.ID, updaterID, change.field, change.oldValue, change.newValue)
	}

	return task, nil
}

// DeleteTask removes a task and its history.
func (s *TaskService) DeleteTask(id uuid.UUID) error {
	if _, err := s.GetTask(id); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// AssignTaskInput represents an assignment of a task to a project member.
type AssignTaskInput struct {
	TaskID    uuid.UUID
	ProjectID uuid.UUID
	UserID    uuid.UUID
	ActorID   uuid.UUID
}

// AssignTask assigns a task to a member of its project. The actor must be an
// ADMIN or MEMBER; the assignee must belong to the same project as the task.
// The change is recorded in the history and the assignee is notified.
func (s *TaskService) AssignTask(input AssignTaskInput) (*models.Task, error) {
	task, err := s.GetTask(input.TaskID)
	if err != nil {
		return nil, err
	}

	if err := s.ensureContributor(task.ProjectID, input.ActorID); err != nil {
		return nil, err
	}

	assignee, err := s.projectRepo.FindMember(input.ProjectID, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssigneeNotMember
		}
		return nil, fmt.Errorf("failed to find assignee membership: %w", err)
	}
	if assignee.ProjectID != task.ProjectID {
		return nil, ErrAssigneeNotMember
	}

	var oldEmail *string
	if task.AssignedUserID != nil {
		if prev, err := s.userRepo.FindByID(*task.AssignedUserID); err == nil {
			oldEmail = strPtr(prev.Email)
		}
	}

	user, err := s.userRepo.FindByID(input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find assignee: %w", err)
	}

	task.AssignedUserID = &user.ID
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to assign task: %w", err)
	}

	s.recordChange(task.ID, input.ActorID, models.HistoryFieldAssignedUser, oldEmail, strPtr(user.Email))

	project, err := s.projectRepo.FindByID(task.ProjectID)
	if err == nil {
		s.mailer.SendTaskAssignment(user.Email, task.Name, project.Name)

		notification := &models.Notification{
			UserID:  user.ID,
			TaskID:  task.ID,
			Message: fmt.Sprintf("Task %q has been assigned to you in project %q.", task.Name, project.Name),
		}
		if err := s.notifRepo.Create(notification); err != nil {
			// Assignment already succeeded; the missing notification is not fatal.
			return task, nil
		}
	}

	return task, nil
}

// TaskHistory returns a task's change log, newest first. The requester must
// be a member of the task's project.
func (s *TaskService) TaskHistory(taskID, requesterID uuid.UUID) ([]models.TaskHistory, error) {
	task, err := s.GetTask(taskID)
	if err != nil {
		return nil, err
	}

	if err := s.ensureMember(task.ProjectID, requesterID); err != nil {
		return nil, err
	}

	entries, err := s.taskRepo.ListHistory(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list task history: %w", err)
	}
	return entries, nil
}

// ensureMember verifies that the user has any membership in the project.
func (s *TaskService) ensureMember(projectID, userID uuid.UUID) error {
	_, err := s.projectRepo.FindMember(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotProjectMember
		}
		return fmt.Errorf("failed to verify project membership: %w", err)
	}
	return nil
}

// ensureContributor verifies that the user is an ADMIN or MEMBER of the project.
func (s *TaskService) ensureContributor(projectID, userID uuid.UUID) error {
	member, err := s.projectRepo.FindMember(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotTaskContributor
		}
		return fmt.Errorf("failed to verify project membership: %w", err)
	}
	if member.Role != models.RoleAdmin && member.Role != models.RoleMember {
		return ErrNotTaskContributor
	}
	return nil
}

// recordChange appends a history entry. History is best-effort bookkeeping;
// a failed insert must not roll back the mutation it describes.
func (s *TaskService) recordChange(taskID, actorID uuid.UUID, field models.HistoryField, oldValue, newValue *string) {
	entry := &models.TaskHistory{
		TaskID:     taskID,
		ModifiedBy: actorID,
		FieldName:  field,
		OldValue:   oldValue,
		NewValue:   newValue,
	}
	_ = s.taskRepo.CreateHistory(entry)
}

func strPtr(s string) *string {
	return &s
}

func fmtDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(dateLayout)
	return &formatted
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Format(dateLayout) == b.Format(dateLayout)
}
