package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codesolution/pmt/internal/models"
)

var (
	// ErrCreateProject is returned when creating a project fails inside the creation transaction.
	ErrCreateProject = errors.New("project repository: create project failed")
	// ErrCreateProjectMember is returned when creating the creator's membership fails inside the creation transaction.
	ErrCreateProjectMember = errors.New("project repository: create project member failed")
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// CreateWithAdmin creates a project and the creator's ADMIN membership atomically.
func (r *GormProjectRepository) CreateWithAdmin(project *models.Project, creatorID uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateProject, err)
		}

		member := &models.ProjectMember{
			ProjectID: project.ID,
			UserID:    creatorID,
			Role:      models.RoleAdmin,
		}
		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateProjectMember, err)
		}

		return nil
	})
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := r.db.First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// List returns all projects
func (r *GormProjectRepository) List() ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// ListByMemberID returns projects the user is a member of
func (r *GormProjectRepository) ListByMemberID(userID uuid.UUID) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Where("project_members.user_id = ?", userID).
		Order("projects.created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// Delete removes a project and all related data in a transaction
func (r *GormProjectRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id = ?", id)

		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.TaskHistory{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Project{}, "id = ?", id).Error
	})
}

// AddMember adds a member to a project
func (r *GormProjectRepository) AddMember(member *models.ProjectMember) error {
	return r.db.Create(member).Error
}

// FindMember finds a specific project member
func (r *GormProjectRepository) FindMember(projectID, userID uuid.UUID) (*models.ProjectMember, error) {
	var member models.ProjectMember
	if err := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all members of a project
func (r *GormProjectRepository) ListMembers(projectID uuid.UUID) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	if err := r.db.Preload("User").
		Where("project_id = ?", projectID).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// UpdateMemberRole changes the role of an existing member
func (r *GormProjectRepository) UpdateMemberRole(projectID, userID uuid.UUID, role models.Role) error {
	return r.db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Update("role", role).Error
}

// RemoveMember removes a member from a project
func (r *GormProjectRepository) RemoveMember(projectID, userID uuid.UUID) error {
	return r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMember{}).Error
}
