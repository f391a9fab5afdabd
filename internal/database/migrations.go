package database

import (
	"fmt"

	"github.com/yukikurage/project-tracker-api/internal/logger"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"gorm.io/gorm"
)

// EnsureIndexes verifies the indexes the application relies on for
// correctness and creates any that are missing. The membership and
// invitation code indexes are unique and back the CONFLICT guarantees.
func EnsureIndexes(db *gorm.DB) error {
	indexes := []struct {
		model interface{}
		name  string
	}{
		{&models.Member{}, "idx_members_project_user"},
		{&models.InvitationCode{}, "idx_invitation_codes_code"},
		{&models.Task{}, "idx_tasks_project_id"},
		{&models.Task{}, "idx_tasks_status"},
		{&models.Task{}, "idx_tasks_due_date"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			continue
		}

		if err := migrator.CreateIndex(idx.model, idx.name); err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		logger.Info().Str("index", idx.name).Msg("created index")
	}

	return nil
}
