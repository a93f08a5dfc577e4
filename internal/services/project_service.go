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
	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectNameRequired  = errors.New("project name cannot be empty")
	ErrNotProjectMember     = errors.New("you are not a member of this project")
	ErrNotProjectAdmin      = errors.New("only project administrators can perform this action")
	ErrInviteeNotFound      = errors.New("no user found with this email")
	ErrAlreadyProjectMember = errors.New("user is already a member of this project")
	ErrInvalidRole          = errors.New("role must be ADMIN, MEMBER or OBSERVER")
	ErrMemberNotFound       = errors.New("member not found in project")
)

// ProjectService provides business logic for projects and their memberships.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	mailer      Mailer
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository, mailer Mailer) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		mailer:      mailer,
	}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name         string
	Description  string
	StartingDate *time.Time
	CreatorID    uuid.UUID
}

// CreateProject creates a project and makes the creator its ADMIN member.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrProjectNameRequired
	}

	project := &models.Project{
		Name:         input.Name,
		Description:  input.Description,
		StartingDate: input.StartingDate,
	}

	if err := s.projectRepo.CreateWithAdmin(project, input.CreatorID); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// GetProject returns a project by ID.
func (s *ProjectService) GetProject(id uuid.UUID) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// ListProjects returns all projects.
func (s *ProjectService) ListProjects() ([]models.Project, error) {
	projects, err := s.projectRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// ListProjectsForMember returns projects the user belongs to.
func (s *ProjectService) ListProjectsForMember(userID uuid.UUID) ([]models.Project, error) {
	projects, err := s.projectRepo.ListByMemberID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// UpdateProjectInput represents the mutable fields of a project.
type UpdateProjectInput struct {
	Name         *string
	Description  *string
	StartingDate *time.Time
}

// UpdateProject updates a project's fields.
func (s *ProjectService) UpdateProject(id uuid.UUID, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.GetProject(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrProjectNameRequired
		}
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.StartingDate != nil {
		project.StartingDate = input.StartingDate
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// DeleteProject removes a project and everything that belongs to it.
func (s *ProjectService) DeleteProject(id uuid.UUID) error {
	if _, err := s.GetProject(id); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// InviteMemberInput represents an invitation of a user to a project by email.
type InviteMemberInput struct {
	ProjectID uuid.UUID
	Email     string
	Role      models.Role
	InviterID uuid.UUID
}

// InviteMember adds the user with the given email to the project. Only
// project admins can invite; duplicate memberships are rejected.
func (s *ProjectService) InviteMember(input InviteMemberInput) (*models.Project, error) {
	project, err := s.GetProject(input.ProjectID)
	if err != nil {
		return nil, err
	}

	inviter, err := s.projectRepo.FindMember(input.ProjectID, input.InviterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotProjectMember
		}
		return nil, fmt.Errorf("failed to find inviter membership: %w", err)
	}
	if inviter.Role != models.RoleAdmin {
		return nil, ErrNotProjectAdmin
	}

	if !input.Role.IsValid() {
		return nil, ErrInvalidRole
	}

	user, err := s.userRepo.FindByEmail(strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteeNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if _, err := s.projectRepo.FindMember(input.ProjectID, user.ID); err == nil {
		return nil, ErrAlreadyProjectMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.ProjectMember{
		ProjectID: input.ProjectID,
		UserID:    user.ID,
		Role:      input.Role,
	}
	if err := s.projectRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	if inviterUser, err := s.userRepo.FindByID(input.InviterID); err == nil {
		s.mailer.SendProjectInvitation(user.Email, project.Name, inviterUser.Username)
	}

	return project, nil
}

// ListMembers returns a project's members with user details attached.
func (s *ProjectService) ListMembers(projectID uuid.UUID) ([]models.ProjectMember, error) {
	if _, err := s.GetProject(projectID); err != nil {
		return nil, err
	}

	members, err := s.projectRepo.ListMembers(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// UpdateMemberRole changes a member's role. Only project admins may do this.
func (s *ProjectService) UpdateMemberRole(projectID, userID uuid.UUID, role models.Role, modifierID uuid.UUID) (*models.Project, error) {
	admin, err := s.IsProjectAdmin(projectID, modifierID)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, ErrNotProjectAdmin
	}

	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	if _, err := s.projectRepo.FindMember(projectID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}

	if err := s.projectRepo.UpdateMemberRole(projectID, userID, role); err != nil {
		return nil, fmt.Errorf("failed to update member role: %w", err)
	}

	return s.GetProject(projectID)
}

// RemoveMember removes a member from the project. Only project admins may do
// this.
func (s *ProjectService) RemoveMember(projectID, userID, modifierID uuid.UUID) (*models.Project, error) {
	admin, err := s.IsProjectAdmin(projectID, modifierID)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, ErrNotProjectAdmin
	}

	if _, err := s.projectRepo.FindMember(projectID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}

	if err := s.projectRepo.RemoveMember(projectID, userID); err != nil {
		return nil, fmt.Errorf("failed to remove member: %w", err)
	}

	return s.GetProject(projectID)
}

// MemberRole returns a user's role in a project, if any.
func (s *ProjectService) MemberRole(projectID, userID uuid.UUID) (models.Role, bool, error) {
	member, err := s.projectRepo.FindMember(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to find member: %w", err)
	}
	return member.Role, true, nil
}

// IsProjectAdmin reports whether the user is an ADMIN of the project.
func (s *ProjectService) IsProjectAdmin(projectID, userID uuid.UUID) (bool, error) {
	role, ok, err := s.MemberRole(projectID, userID)
	if err != nil {
		return false, err
	}
	return ok && role == models.RoleAdmin, nil
}
