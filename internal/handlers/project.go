package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/codesolution/pmt/internal/dto"
	apierrors "github.com/codesolution/pmt/internal/errors"
	"github.com/codesolution/pmt/internal/middleware"
	"github.com/codesolution/pmt/internal/models"
	"github.com/codesolution/pmt/internal/services"
)

// ProjectHandler handles project and membership endpoints.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// ListProjects returns all projects.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.projectService.ListProjects()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch projects")
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectDTOs(projects))
}

// ListProjectsForMember returns the projects the given user belongs to.
func (h *ProjectHandler) ListProjectsForMember(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	projects, err := h.projectService.ListProjectsForMember(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch projects")
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectDTOs(projects))
}

// GetProject returns a single project.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	project, err := h.projectService.GetProject(id)
	if err != nil {
		respondProjectError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// CreateProject creates a project owned by the authenticated user.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	type CreateProjectRequest struct {
		Name         string `json:"name" binding:"required"`
		Description  string `json:"description"`
		StartingDate string `json:"startingDate"`
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	startingDate, err := parseDate(req.StartingDate)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.CreateProject(services.CreateProjectInput{
		Name:         req.Name,
		Description:  req.Description,
		StartingDate: startingDate,
		CreatorID:    userID,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// UpdateProject updates a project's fields.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	type UpdateProjectRequest struct {
		Name         *string `json:"name"`
		Description  *string `json:"description"`
		StartingDate *string `json:"startingDate"`
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.StartingDate != nil {
		startingDate, err := parseDate(*req.StartingDate)
		if err != nil {
			apierrors.BadRequest(c, err.Error())
			return
		}
		input.StartingDate = startingDate
	}

	project, err := h.projectService.UpdateProject(id, input)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject removes a project and everything belonging to it.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	if err := h.projectService.DeleteProject(id); err != nil {
		respondProjectError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// InviteMember adds a user to the project by email.
func (h *ProjectHandler) InviteMember(c *gin.Context) {
	type InviteMemberRequest struct {
		Email string `json:"email" binding:"required,email"`
		Role  string `json:"role" binding:"required"`
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.InviteMember(services.InviteMemberInput{
		ProjectID: projectID,
		Email:     req.Email,
		Role:      models.Role(req.Role),
		InviterID: userID,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// ListMembers returns the project's members with user details.
func (h *ProjectHandler) ListMembers(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	members, err := h.projectService.ListMembers(projectID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectMemberDTOs(members))
}

// UpdateMemberRole changes a member's role within the project.
func (h *ProjectHandler) UpdateMemberRole(c *gin.Context) {
	type UpdateRoleRequest struct {
		Role string `json:"role" binding:"required"`
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}
	memberID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	actorID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.UpdateMemberRole(projectID, memberID, models.Role(req.Role), actorID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// RemoveMember removes a member from the project.
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}
	memberID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	actorID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	project, err := h.projectService.RemoveMember(projectID, memberID, actorID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

func respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrInviteeNotFound),
		errors.Is(err, services.ErrMemberNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrProjectNameRequired),
		errors.Is(err, services.ErrInvalidRole):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNotProjectMember),
		errors.Is(err, services.ErrNotProjectAdmin):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrAlreadyProjectMember):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
