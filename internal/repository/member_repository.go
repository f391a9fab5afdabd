package repository

import (
	"context"

	"github.com/yukikurage/project-tracker-api/internal/database"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormMemberRepository is a GORM implementation of MemberRepository
type GormMemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &GormMemberRepository{db: db}
}

// Create adds a membership. The unique (project_id, user_id) index turns a
// concurrent duplicate join into ErrDuplicateKey.
func (r *GormMemberRepository) Create(ctx context.Context, member *models.Member) error {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return err
	}
	return nil
}

// FindByID finds a membership by ID
func (r *GormMemberRepository) FindByID(ctx context.Context, id uint64) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByProjectAndUser finds a specific project member
func (r *GormMemberRepository) FindByProjectAndUser(ctx context.Context, projectID, userID uint64) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListByProject lists all members of a project
func (r *GormMemberRepository) ListByProject(ctx context.Context, projectID uint64) ([]models.Member, error) {
	var members []models.Member
	if err := r.db.WithContext(ctx).
		Preload("User").
		Scopes(database.InProject(projectID)).
		Order("id ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// UpdateRole updates the role of a membership
func (r *GormMemberRepository) UpdateRole(ctx context.Context, id uint64, role models.Role) error {
	return r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ?", id).
		Update("role", role).Error
}

// Delete removes the membership; tasks assigned to it become unassigned.
func (r *GormMemberRepository) Delete(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Model(&models.Task{}).
			Where("member_id = ?", member.ID).
			Update("member_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Member{}, member.ID).Error
	})
}
