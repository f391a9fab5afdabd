package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/repository"
)

var (
	ErrTaskNotFound           = apierrors.NewAPIError(apierrors.ErrCodeNotFound, "task not found")
	ErrTaskNameRequired       = apierrors.Validation("name is required")
	ErrInvalidTaskStatus      = apierrors.Validation("status must be one of TO_DO, IN_PROGRESS, DONE, CANCELED")
	ErrInvalidTaskPriority    = apierrors.Validation("priority must be one of LOW, MEDIUM, HIGH")
	ErrInvalidTaskLabel       = apierrors.Validation("label must be one of BUG, FEATURE, DOCUMENTATION")
	ErrInvalidTaskAssignee    = apierrors.Validation("assignee is not a member of this project")
	ErrTaskFieldsRestricted   = apierrors.NewAPIError(apierrors.ErrCodeForbidden, "only owners and admins can change name, description, due date or assignee")
	ErrSuggestionTextRequired = apierrors.Validation("text is required")
	ErrAIServiceNotConfigured = apierrors.NewAPIError(apierrors.ErrCodeServiceUnavailable, "AI service is not configured")
	ErrAINoTasksGenerated     = apierrors.NewAPIError(apierrors.ErrCodeInternalError, "AI did not generate any tasks")
	ErrAINoValidTasks         = apierrors.NewAPIError(apierrors.ErrCodeInternalError, "no valid tasks could be created from AI output")
)

// TaskSuggester drafts tasks from free text.
type TaskSuggester interface {
	GenerateTasksFromText(ctx context.Context, text string) ([]GeneratedTask, error)
}

// TaskService handles task business logic
type TaskService struct {
	authz      *Authorizer
	taskRepo   repository.TaskRepository
	memberRepo repository.MemberRepository
	suggester  TaskSuggester
}

// NewTaskService creates a new TaskService. suggester may be nil when no AI
// backend is configured.
func NewTaskService(authz *Authorizer, taskRepo repository.TaskRepository, memberRepo repository.MemberRepository, suggester TaskSuggester) *TaskService {
	return &TaskService{
		authz:      authz,
		taskRepo:   taskRepo,
		memberRepo: memberRepo,
		suggester:  suggester,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	ProjectID     uint64
	UserID        uint64
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	Label         *models.TaskLabel
	MemberID      *uint64
	AssignedToMe  bool
	SortByDueDate bool
	Page          int
	PageSize      int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ProjectID   uint64
	ActorID     uint64
	Name        string
	Description string
	Label       models.TaskLabel
	Status      models.TaskStatus
	Priority    models.TaskPriority
	DueDate     *time.Time
	MemberID    *uint64
}

// UpdateTaskInput represents input for updating a task. Status, priority and
// label may be changed by any member; the rest needs OWNER or ADMIN.
type UpdateTaskInput struct {
	Status   *models.TaskStatus
	Priority *models.TaskPriority
	Label    *models.TaskLabel

	Name          *string
	Description   *string
	DueDate       *time.Time
	ClearDueDate  bool
	MemberID      *uint64
	ClearAssignee bool
}

func (in UpdateTaskInput) touchesRestrictedFields() bool {
	return in.Name != nil || in.Description != nil || in.DueDate != nil ||
		in.ClearDueDate || in.MemberID != nil || in.ClearAssignee
}

// ListTasks returns a project's tasks. Any member may list them.
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, int64, error) {
	access, err := s.authz.Authorize(ctx, input.ProjectID, input.UserID)
	if err != nil {
		return nil, 0, err
	}

	filter := repository.TaskFilter{
		ProjectID:     input.ProjectID,
		Status:        input.Status,
		Priority:      input.Priority,
		Label:         input.Label,
		MemberID:      input.MemberID,
		SortByDueDate: input.SortByDueDate,
		Page:          input.Page,
		PageSize:      input.PageSize,
	}
	if input.AssignedToMe {
		filter.MemberID = &access.Member.ID
	}

	tasks, total, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, apierrors.Database("failed to list tasks", err)
	}

	return tasks, total, nil
}

// GetTask returns a task if the caller is a member of its project
func (s *TaskService) GetTask(ctx context.Context, taskID, userID uint64) (*models.Task, error) {
	task, err := s.findTask(ctx, taskID, "Assignee.User")
	if err != nil {
		return nil, err
	}

	if _, err := s.authorizeTask(ctx, task, userID); err != nil {
		return nil, err
	}

	return task, nil
}

// CreateTask creates a new task. OWNER and ADMIN only.
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	if _, err := s.authz.RequireManager(ctx, input.ProjectID, input.ActorID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTaskNameRequired
	}

	if input.Status == "" {
		input.Status = models.TaskStatusToDo
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if input.Label == "" {
		input.Label = models.TaskLabelFeature
	}
	if err := validateTaskEnums(&input.Status, &input.Priority, &input.Label); err != nil {
		return nil, err
	}

	if input.MemberID != nil {
		if err := s.ensureAssignee(ctx, input.ProjectID, *input.MemberID); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		Name:        name,
		Description: input.Description,
		Label:       input.Label,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		ProjectID:   input.ProjectID,
		MemberID:    input.MemberID,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, apierrors.Database("failed to create task", err)
	}

	return s.findTask(ctx, task.ID, "Assignee.User")
}

// UpdateTask updates an existing task
func (s *TaskService) UpdateTask(ctx context.Context, taskID, actorID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	access, err := s.authorizeTask(ctx, task, actorID)
	if err != nil {
		return nil, err
	}
	if input.touchesRestrictedFields() && !access.Member.Role.CanManage() {
		return nil, ErrTaskFieldsRestricted
	}

	if err := validateTaskEnums(input.Status, input.Priority, input.Label); err != nil {
		return nil, err
	}

	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.Label != nil {
		task.Label = *input.Label
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTaskNameRequired
		}
		task.Name = name
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.ClearAssignee {
		task.MemberID = nil
	} else if input.MemberID != nil {
		if err := s.ensureAssignee(ctx, task.ProjectID, *input.MemberID); err != nil {
			return nil, err
		}
		task.MemberID = input.MemberID
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrTaskNotFound
		}
		return nil, apierrors.Database("failed to update task", err)
	}

	return s.findTask(ctx, task.ID, "Assignee.User")
}

// DeleteTask deletes a task. OWNER and ADMIN only.
func (s *TaskService) DeleteTask(ctx context.Context, taskID, actorID uint64) error {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return err
	}

	if _, err := s.authz.RequireManager(ctx, task.ProjectID, actorID); err != nil {
		if err == ErrProjectNotFound {
			return ErrTaskNotFound
		}
		return err
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return apierrors.Database("failed to delete task", err)
	}

	return nil
}

// GenerateTaskSuggestionsInput represents input for AI task drafting
type GenerateTaskSuggestionsInput struct {
	ProjectID uint64
	UserID    uint64
	Text      string
}

// GenerateTaskSuggestions drafts tasks from free text. Drafts are returned to
// the caller and not persisted.
func (s *TaskService) GenerateTaskSuggestions(ctx context.Context, input GenerateTaskSuggestionsInput) ([]GeneratedTask, error) {
	if _, err := s.authz.Authorize(ctx, input.ProjectID, input.UserID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, ErrSuggestionTextRequired
	}
	if s.suggester == nil {
		return nil, ErrAIServiceNotConfigured
	}

	aiTasks, err := s.suggester.GenerateTasksFromText(ctx, input.Text)
	if err != nil {
		return nil, apierrors.Wrap(apierrors.ErrCodeInternalError, "failed to generate tasks", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		return nil, apierrors.NewAPIError(apierrors.ErrCodeInternalError,
			fmt.Sprintf("AI generated too many tasks (max %d)", constants.MaxAIGeneratedTasks))
	}

	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	cutoff := time.Now().Add(-24 * time.Hour)
	for _, aiTask := range aiTasks {
		if strings.TrimSpace(aiTask.Name) == "" {
			continue
		}

		if aiTask.DueDate != nil && aiTask.DueDate.Before(cutoff) {
			aiTask.DueDate = nil
		}
		if !aiTask.Priority.Valid() {
			aiTask.Priority = models.TaskPriorityMedium
		}
		if !aiTask.Label.Valid() {
			aiTask.Label = models.TaskLabelFeature
		}

		validTasks = append(validTasks, aiTask)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validTasks, nil
}

func (s *TaskService) findTask(ctx context.Context, taskID uint64, preload ...string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID, preload...)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrTaskNotFound
		}
		return nil, apierrors.Database("failed to find task", err)
	}
	return task, nil
}

// authorizeTask checks membership in the task's project. Non-members see the
// task as missing.
func (s *TaskService) authorizeTask(ctx context.Context, task *models.Task, userID uint64) (*Access, error) {
	access, err := s.authz.Authorize(ctx, task.ProjectID, userID)
	if err != nil {
		if err == ErrProjectNotFound {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return access, nil
}

// ensureAssignee verifies the member belongs to the same project as the task.
func (s *TaskService) ensureAssignee(ctx context.Context, projectID, memberID uint64) error {
	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrInvalidTaskAssignee
		}
		return apierrors.Database("failed to verify assignee", err)
	}
	if member.ProjectID != projectID {
		return ErrInvalidTaskAssignee
	}
	return nil
}

func validateTaskEnums(status *models.TaskStatus, priority *models.TaskPriority, label *models.TaskLabel) error {
	if status != nil && !status.Valid() {
		return ErrInvalidTaskStatus
	}
	if priority != nil && !priority.Valid() {
		return ErrInvalidTaskPriority
	}
	if label != nil && !label.Valid() {
		return ErrInvalidTaskLabel
	}
	return nil
}
