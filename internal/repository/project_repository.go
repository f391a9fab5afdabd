package repository

import (
	"context"
	"fmt"

	"github.com/yukikurage/project-tracker-api/internal/database"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/utils"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// CreateWithOwner creates the project and the creator's OWNER membership atomically.
func (r *GormProjectRepository) CreateWithOwner(ctx context.Context, project *models.Project, owner *models.Member) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return fmt.Errorf("create project: %w", err)
		}

		owner.ProjectID = project.ID
		owner.UserID = project.OwnerID
		owner.Role = models.RoleOwner

		if err := tx.Create(owner).Error; err != nil {
			return fmt.Errorf("create owner membership: %w", err)
		}

		return nil
	})
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(ctx context.Context, id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// Update writes the editable project settings. owner_id only moves through
// TransferOwnership. A project deleted since it was read is reported as
// gorm.ErrRecordNotFound.
func (r *GormProjectRepository) Update(ctx context.Context, project *models.Project) error {
	result := r.db.WithContext(ctx).
		Model(&models.Project{ID: project.ID}).
		Select("name", "description", "status", "is_public").
		Updates(project)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete deletes a project and all related data in a transaction
func (r *GormProjectRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// soft deleted tasks keep their rows, so drop their member references
		// before the memberships go
		if err := tx.Unscoped().Model(&models.Task{}).
			Scopes(database.InProject(id)).
			Update("member_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Scopes(database.InProject(id)).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Scopes(database.InProject(id)).Delete(&models.InvitationCode{}).Error; err != nil {
			return err
		}

		if err := tx.Scopes(database.InProject(id)).Delete(&models.Member{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Project{}, id).Error
	})
}

// ListMembershipsByUserID lists all projects a user is a member of
func (r *GormProjectRepository) ListMembershipsByUserID(ctx context.Context, userID uint64) ([]models.Member, error) {
	var memberships []models.Member
	if err := r.db.WithContext(ctx).
		Preload("Project").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListPublic lists public projects, newest first
func (r *GormProjectRepository) ListPublic(ctx context.Context, params utils.PaginationParams) ([]models.Project, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Project{}).Where("is_public = ?", true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []models.Project
	if err := query.
		Order("created_at DESC").
		Scopes(database.Paginate(params)).
		Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// TransferOwnership swaps the OWNER role and the project's owner_id atomically.
func (r *GormProjectRepository) TransferOwnership(ctx context.Context, projectID uint64, oldOwner, newOwner *models.Member) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Member{}).
			Where("id = ?", newOwner.ID).
			Update("role", models.RoleOwner).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Member{}).
			Where("id = ?", oldOwner.ID).
			Update("role", models.RoleAdmin).Error; err != nil {
			return err
		}

		return tx.Model(&models.Project{}).
			Where("id = ?", projectID).
			Update("owner_id", newOwner.UserID).Error
	})
}
