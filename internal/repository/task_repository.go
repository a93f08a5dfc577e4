package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codesolution/pmt/internal/models"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := r.db.First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List returns all tasks
func (r *GormTaskRepository) List() ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByProjectID returns all tasks belonging to a project
func (r *GormTaskRepository) ListByProjectID(projectID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByProjectIDAndStatus returns a project's tasks filtered by status
func (r *GormTaskRepository) ListByProjectIDAndStatus(projectID uuid.UUID, status models.TaskStatus) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("project_id = ? AND status = ?", projectID, status).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByAssignedUserID returns tasks assigned to a user
func (r *GormTaskRepository) ListByAssignedUserID(userID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("assigned_user_id = ?", userID).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete removes a task and its history in a transaction
func (r *GormTaskRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskHistory{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, "id = ?", id).Error
	})
}

// CreateHistory appends a history entry for a task
func (r *GormTaskRepository) CreateHistory(entry *models.TaskHistory) error {
	return r.db.Create(entry).Error
}

// ListHistory returns a task's history, newest first
func (r *GormTaskRepository) ListHistory(taskID uuid.UUID) ([]models.TaskHistory, error) {
	var entries []models.TaskHistory
	if err := r.db.Where("task_id = ?", taskID).
		Order("modified_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
