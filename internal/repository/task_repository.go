package repository

import (
	"context"

	"github.com/yukikurage/project-tracker-api/internal/database"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/utils"
	"gorm.io/gorm"
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
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.WithContext(ctx)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.WithContext(ctx).Model(&models.Task{}).Where("tasks.project_id = ?", filter.ProjectID)

	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.Label != nil {
		query = query.Where("tasks.label = ?", *filter.Label)
	}
	if filter.MemberID != nil {
		query = query.Where("tasks.member_id = ?", *filter.MemberID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query
	if filter.SortByDueDate {
		listQuery = listQuery.Order("CASE WHEN tasks.due_date IS NULL THEN 1 ELSE 0 END, tasks.due_date ASC")
	} else {
		listQuery = listQuery.Order("tasks.created_at DESC").Order("tasks.id DESC")
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.NewPaginationParams(filter.Page, filter.PageSize)))
	}

	if err := listQuery.Preload("Assignee.User").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update writes the task's editable columns. A task deleted since it was read
// is reported as gorm.ErrRecordNotFound.
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	result := r.db.WithContext(ctx).
		Model(&models.Task{ID: task.ID}).
		Select("name", "description", "label", "status", "priority", "due_date", "member_id").
		Updates(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete soft deletes a task
func (r *GormTaskRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.Task{}, id).Error
}

type countRow struct {
	GroupKey string
	Total    int64
}

func (r *GormTaskRepository) countBy(ctx context.Context, projectID uint64, column string) ([]countRow, error) {
	var rows []countRow
	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Select(column + " AS group_key, COUNT(*) AS total").
		Scopes(database.InProject(projectID)).
		Group(column).
		Scan(&rows).Error
	return rows, err
}

// CountByStatus counts a project's tasks per status
func (r *GormTaskRepository) CountByStatus(ctx context.Context, projectID uint64) (map[models.TaskStatus]int64, error) {
	rows, err := r.countBy(ctx, projectID, "status")
	if err != nil {
		return nil, err
	}

	counts := make(map[models.TaskStatus]int64, len(models.TaskStatuses))
	for _, s := range models.TaskStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[models.TaskStatus(row.GroupKey)] = row.Total
	}
	return counts, nil
}

// CountByPriority counts a project's tasks per priority
func (r *GormTaskRepository) CountByPriority(ctx context.Context, projectID uint64) (map[models.TaskPriority]int64, error) {
	rows, err := r.countBy(ctx, projectID, "priority")
	if err != nil {
		return nil, err
	}

	counts := make(map[models.TaskPriority]int64, len(models.TaskPriorities))
	for _, p := range models.TaskPriorities {
		counts[p] = 0
	}
	for _, row := range rows {
		counts[models.TaskPriority(row.GroupKey)] = row.Total
	}
	return counts, nil
}
