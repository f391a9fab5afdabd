package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/utils"
	"gorm.io/gorm"
)

// ErrDuplicateKey is returned when an insert violates a unique constraint.
var ErrDuplicateKey = errors.New("repository: duplicate key")

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// CreateWithOwner creates a project and its OWNER membership in one transaction
	CreateWithOwner(ctx context.Context, project *models.Project, owner *models.Member) error

	// FindByID finds a project by ID
	FindByID(ctx context.Context, id uint64) (*models.Project, error)

	// Update saves a project
	Update(ctx context.Context, project *models.Project) error

	// Delete deletes a project with its tasks, invitation code and members
	Delete(ctx context.Context, id uint64) error

	// ListMembershipsByUserID lists the memberships of a user with their projects
	ListMembershipsByUserID(ctx context.Context, userID uint64) ([]models.Member, error)

	// ListPublic lists public projects
	ListPublic(ctx context.Context, params utils.PaginationParams) ([]models.Project, int64, error)

	// TransferOwnership makes newOwner the OWNER, demotes oldOwner to ADMIN and
	// updates the project's owner_id
	TransferOwnership(ctx context.Context, projectID uint64, oldOwner, newOwner *models.Member) error
}

// MemberRepository defines the interface for membership data access
type MemberRepository interface {
	// Create inserts a membership. Returns ErrDuplicateKey when the user is
	// already a member of the project.
	Create(ctx context.Context, member *models.Member) error

	// FindByID finds a membership by ID
	FindByID(ctx context.Context, id uint64) (*models.Member, error)

	// FindByProjectAndUser finds the membership of a user in a project
	FindByProjectAndUser(ctx context.Context, projectID, userID uint64) (*models.Member, error)

	// ListByProject lists the members of a project with their users
	ListByProject(ctx context.Context, projectID uint64) ([]models.Member, error)

	// UpdateRole changes the role of a membership
	UpdateRole(ctx context.Context, id uint64, role models.Role) error

	// Delete removes a membership and unassigns its tasks
	Delete(ctx context.Context, member *models.Member) error
}

// InvitationCodeRepository defines the interface for invitation code data access
type InvitationCodeRepository interface {
	// Upsert inserts the project's code or overwrites code and expiry in place
	Upsert(ctx context.Context, code *models.InvitationCode) error

	// FindByProjectID finds the code of a project
	FindByProjectID(ctx context.Context, projectID uint64) (*models.InvitationCode, error)

	// FindByCode finds an invitation code by its value
	FindByCode(ctx context.Context, code string) (*models.InvitationCode, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(ctx context.Context, task *models.Task) error

	// Delete soft deletes a task
	Delete(ctx context.Context, id uint64) error

	// CountByStatus counts a project's tasks per status
	CountByStatus(ctx context.Context, projectID uint64) (map[models.TaskStatus]int64, error)

	// CountByPriority counts a project's tasks per priority
	CountByPriority(ctx context.Context, projectID uint64) (map[models.TaskPriority]int64, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ProjectID     uint64
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	Label         *models.TaskLabel
	MemberID      *uint64
	SortByDueDate bool
	Page          int
	PageSize      int
}

// IsNotFound reports whether err is GORM's record-not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicateKeyError recognises unique violations. TranslateError covers the
// dialectors that implement it; the message checks cover the rest.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}
