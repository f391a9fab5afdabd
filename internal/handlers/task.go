package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/middleware"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the tasks of a project.
// Supports status, priority, label, member_id, assigned_to_me and sort=due_date.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	projectID, userID, ok := projectRequest(c)
	if !ok {
		return
	}

	input := services.ListTasksInput{
		ProjectID:     projectID,
		UserID:        userID,
		AssignedToMe:  c.Query("assigned_to_me") == "true",
		SortByDueDate: c.Query("sort") == "due_date",
	}

	if v := c.Query("status"); v != "" {
		status := models.TaskStatus(v)
		if !status.Valid() {
			apierrors.Respond(c, services.ErrInvalidTaskStatus)
			return
		}
		input.Status = &status
	}
	if v := c.Query("priority"); v != "" {
		priority := models.TaskPriority(v)
		if !priority.Valid() {
			apierrors.Respond(c, services.ErrInvalidTaskPriority)
			return
		}
		input.Priority = &priority
	}
	if v := c.Query("label"); v != "" {
		label := models.TaskLabel(v)
		if !label.Valid() {
			apierrors.Respond(c, services.ErrInvalidTaskLabel)
			return
		}
		input.Label = &label
	}
	if v := c.Query("member_id"); v != "" {
		memberID, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid member_id")
			return
		}
		input.MemberID = &memberID
	}

	params := utils.GetPaginationParams(c)
	input.Page = params.Page
	input.PageSize = params.Limit

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params.Page, params.Limit, total))
}

// GetTask returns a specific task.
// Task is already loaded by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task in a project
func (h *TaskHandler) CreateTask(c *gin.Context) {
	projectID, userID, ok := projectRequest(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Name        string              `json:"name" binding:"required,max=255"`
		Description string              `json:"description"`
		Label       models.TaskLabel    `json:"label"`
		Status      models.TaskStatus   `json:"status"`
		Priority    models.TaskPriority `json:"priority"`
		DueDate     *time.Time          `json:"due_date"`
		MemberID    *uint64             `json:"member_id"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		ProjectID:   projectID,
		ActorID:     userID,
		Name:        req.Name,
		Description: req.Description,
		Label:       req.Label,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		MemberID:    req.MemberID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask updates an existing task. Fields absent from the body are left
// unchanged; due_date and member_id accept null to clear them.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	taskID, ok := middleware.ParseIDParam(c, middleware.TaskParam)
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	// Parse raw JSON to detect which fields were sent
	var rawReq map[string]json.RawMessage
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input, err := parseUpdateTaskInput(rawReq)
	if err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), taskID, userID, input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

func parseUpdateTaskInput(raw map[string]json.RawMessage) (services.UpdateTaskInput, error) {
	var input services.UpdateTaskInput

	decode := func(key string, dst any) (present bool, isNull bool, err error) {
		v, ok := raw[key]
		if !ok {
			return false, false, nil
		}
		if string(v) == "null" {
			return true, true, nil
		}
		return true, false, json.Unmarshal(v, dst)
	}

	var (
		name, description string
		status            models.TaskStatus
		priority          models.TaskPriority
		label             models.TaskLabel
		dueDate           time.Time
		memberID          uint64
		present, isNull   bool
		err               error
	)

	if present, isNull, err = decode("name", &name); err != nil {
		return input, err
	} else if present && !isNull {
		input.Name = &name
	}
	if present, isNull, err = decode("description", &description); err != nil {
		return input, err
	} else if present {
		input.Description = &description
	}
	if present, isNull, err = decode("status", &status); err != nil {
		return input, err
	} else if present && !isNull {
		input.Status = &status
	}
	if present, isNull, err = decode("priority", &priority); err != nil {
		return input, err
	} else if present && !isNull {
		input.Priority = &priority
	}
	if present, isNull, err = decode("label", &label); err != nil {
		return input, err
	} else if present && !isNull {
		input.Label = &label
	}
	if present, isNull, err = decode("due_date", &dueDate); err != nil {
		return input, err
	} else if present {
		if isNull {
			input.ClearDueDate = true
		} else {
			input.DueDate = &dueDate
		}
	}
	if present, isNull, err = decode("member_id", &memberID); err != nil {
		return input, err
	} else if present {
		if isNull {
			input.ClearAssignee = true
		} else {
			input.MemberID = &memberID
		}
	}

	return input, nil
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	taskID, ok := middleware.ParseIDParam(c, middleware.TaskParam)
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), taskID, userID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// GenerateTasks drafts task suggestions from text using AI
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	projectID, userID, ok := projectRequest(c)
	if !ok {
		return
	}

	type GenerateTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	generated, err := h.taskService.GenerateTaskSuggestions(c.Request.Context(), services.GenerateTaskSuggestionsInput{
		ProjectID: projectID,
		UserID:    userID,
		Text:      req.Text,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToGeneratedTaskDTOs(generated),
	})
}
