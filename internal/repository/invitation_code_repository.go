package repository

import (
	"context"
	"errors"

	"github.com/yukikurage/project-tracker-api/internal/database"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvitationCodeRepository is a GORM implementation of InvitationCodeRepository
type GormInvitationCodeRepository struct {
	db *gorm.DB
}

// NewInvitationCodeRepository creates a new InvitationCodeRepository
func NewInvitationCodeRepository(db *gorm.DB) InvitationCodeRepository {
	return &GormInvitationCodeRepository{db: db}
}

// Upsert writes the project's code in a single statement. Concurrent
// regenerations resolve to whichever write commits last.
//
// MySQL's ON DUPLICATE KEY UPDATE fires on any unique key, so a code already
// held by another project would update that project's row instead of failing.
// The row holding the code is read back inside the transaction and a mismatch
// rolls the write back as ErrDuplicateKey.
func (r *GormInvitationCodeRepository) Upsert(ctx context.Context, code *models.InvitationCode) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"code", "expires_at", "updated_at"}),
		}).Create(code).Error; err != nil {
			return err
		}

		var stored models.InvitationCode
		if err := tx.Where("code = ?", code.Code).First(&stored).Error; err != nil {
			return err
		}
		if stored.ProjectID != code.ProjectID {
			return ErrDuplicateKey
		}
		return nil
	})
	if errors.Is(err, ErrDuplicateKey) || isDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	return err
}

// FindByProjectID finds the invitation code of a project
func (r *GormInvitationCodeRepository) FindByProjectID(ctx context.Context, projectID uint64) (*models.InvitationCode, error) {
	var code models.InvitationCode
	if err := r.db.WithContext(ctx).
		Scopes(database.InProject(projectID)).
		First(&code).Error; err != nil {
		return nil, err
	}
	return &code, nil
}

// FindByCode finds an invitation code by value
func (r *GormInvitationCodeRepository) FindByCode(ctx context.Context, code string) (*models.InvitationCode, error) {
	var invitation models.InvitationCode
	if err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}
