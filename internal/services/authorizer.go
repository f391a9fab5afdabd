package services

import (
	"context"
	"slices"

	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/repository"
)

var (
	ErrUnauthenticated  = apierrors.NewAPIError(apierrors.ErrCodeUnauthorized, "authentication required")
	ErrProjectNotFound  = apierrors.NewAPIError(apierrors.ErrCodeNotFound, "project not found")
	ErrInsufficientRole = apierrors.NewAPIError(apierrors.ErrCodeForbidden, "your role does not allow this action")
)

// Access is the outcome of a successful authorization check.
type Access struct {
	Project *models.Project
	Member  *models.Member
}

// Authorizer resolves a caller's membership in a project. It is the single
// place where membership and role gates are evaluated.
type Authorizer struct {
	projectRepo repository.ProjectRepository
	memberRepo  repository.MemberRepository
}

// NewAuthorizer creates a new Authorizer.
func NewAuthorizer(projectRepo repository.ProjectRepository, memberRepo repository.MemberRepository) *Authorizer {
	return &Authorizer{
		projectRepo: projectRepo,
		memberRepo:  memberRepo,
	}
}

// Authorize checks that userID is a member of projectID and, when roles are
// given, that the member's role is one of them. A caller who is not a member
// gets the same NOT_FOUND as for a missing project.
func (a *Authorizer) Authorize(ctx context.Context, projectID, userID uint64, roles ...models.Role) (*Access, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}

	project, err := a.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrProjectNotFound
		}
		return nil, apierrors.Database("failed to find project", err)
	}

	member, err := a.memberRepo.FindByProjectAndUser(ctx, projectID, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrProjectNotFound
		}
		return nil, apierrors.Database("failed to verify project membership", err)
	}

	if len(roles) > 0 && !slices.Contains(roles, member.Role) {
		return nil, ErrInsufficientRole
	}

	return &Access{Project: project, Member: member}, nil
}

// RequireManager authorizes OWNER or ADMIN callers.
func (a *Authorizer) RequireManager(ctx context.Context, projectID, userID uint64) (*Access, error) {
	return a.Authorize(ctx, projectID, userID, models.ManagerRoles...)
}

// RequireOwner authorizes the project OWNER only.
func (a *Authorizer) RequireOwner(ctx context.Context, projectID, userID uint64) (*Access, error) {
	return a.Authorize(ctx, projectID, userID, models.RoleOwner)
}
