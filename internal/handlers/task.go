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

// TaskHandler handles task endpoints, including assignment and history.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns all tasks.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	tasks, err := h.taskService.ListTasks()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// ListTasksByProject returns a project's tasks, optionally filtered by the
// status query parameter.
func (h *TaskHandler) ListTasksByProject(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var tasks []models.Task
	if status := c.Query("status"); status != "" {
		tasks, err = h.taskService.ListTasksByProjectAndStatus(projectID, models.TaskStatus(status))
	} else {
		tasks, err = h.taskService.ListTasksByProject(projectID, userID)
	}
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// ListTasksByAssignedUser returns the tasks assigned to a user.
func (h *TaskHandler) ListTasksByAssignedUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	tasks, err := h.taskService.ListTasksByAssignedUser(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// GetTask returns a single task.
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	task, err := h.taskService.GetTask(id)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a task in a project.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		ProjectID   string `json:"projectId" binding:"required"`
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Priority    string `json:"priority"`
		DueDate     string `json:"dueDate"`
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		ProjectID:   projectID,
		Name:        req.Name,
		Description: req.Description,
		Priority:    models.TaskPriority(req.Priority),
		DueDate:     dueDate,
		CreatorID:   userID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask replaces a task's editable fields.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	type UpdateTaskRequest struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Status      string `json:"status" binding:"required"`
		Priority    string `json:"priority" binding:"required"`
		DueDate     string `json:"dueDate"`
		EndDate     string `json:"endDate"`
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.UpdateTask(id, services.UpdateTaskInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
		Priority:    models.TaskPriority(req.Priority),
		DueDate:     dueDate,
		EndDate:     endDate,
	}, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask removes a task and its history.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	if err := h.taskService.DeleteTask(id); err != nil {
		respondTaskError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AssignTask assigns a task to a project member.
func (h *TaskHandler) AssignTask(c *gin.Context) {
	type AssignTaskRequest struct {
		ProjectID string `json:"projectId" binding:"required"`
		UserID    string `json:"userId" binding:"required"`
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	actorID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	task, err := h.taskService.AssignTask(services.AssignTaskInput{
		TaskID:    taskID,
		ProjectID: projectID,
		UserID:    userID,
		ActorID:   actorID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// TaskHistory returns a task's change log, newest first.
func (h *TaskHandler) TaskHistory(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	entries, err := h.taskService.TaskHistory(taskID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskHistoryDTOs(entries))
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTaskNameRequired),
		errors.Is(err, services.ErrInvalidTaskStatus),
		errors.Is(err, services.ErrInvalidTaskPriority),
		errors.Is(err, services.ErrAssigneeNotMember):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNotProjectMember),
		errors.Is(err, services.ErrNotTaskContributor):
		apierrors.Forbidden(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
