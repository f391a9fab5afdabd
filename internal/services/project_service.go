package services

import (
	"context"
	"strings"

	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/logger"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

var (
	ErrInvalidProjectName   = apierrors.Validation("project name cannot be empty")
	ErrInvalidProjectStatus = apierrors.Validation("status must be LIVE or BUILDING")
	ErrProjectNotPublic     = apierrors.NewAPIError(apierrors.ErrCodeForbidden, "project is not public; an invitation code is required")
	ErrTransferToSelf       = apierrors.Validation("you already own this project")
)

// ProjectService provides business logic for project operations.
type ProjectService struct {
	authz       *Authorizer
	projectRepo repository.ProjectRepository
	memberRepo  repository.MemberRepository
	taskRepo    repository.TaskRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(
	authz *Authorizer,
	projectRepo repository.ProjectRepository,
	memberRepo repository.MemberRepository,
	taskRepo repository.TaskRepository,
) *ProjectService {
	return &ProjectService{
		authz:       authz,
		projectRepo: projectRepo,
		memberRepo:  memberRepo,
		taskRepo:    taskRepo,
	}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name        string
	Description string
	Status      models.ProjectStatus
	IsPublic    bool
	OwnerID     uint64
}

// UpdateProjectInput carries the fields to change; nil means unchanged.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Status      *models.ProjectStatus
	IsPublic    *bool
}

// ProjectDetail is a project together with its members and the caller's role.
type ProjectDetail struct {
	Project  *models.Project
	Members  []models.Member
	YourRole models.Role
}

// ProjectStats summarises a project's tasks for dashboards.
type ProjectStats struct {
	MemberCount int
	TotalTasks  int64
	ByStatus    map[models.TaskStatus]int64
	ByPriority  map[models.TaskPriority]int64
}

// CreateProject creates a new project; the creator becomes its OWNER.
func (s *ProjectService) CreateProject(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	if input.OwnerID == 0 {
		return nil, ErrUnauthenticated
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidProjectName
	}

	if input.Status == "" {
		input.Status = models.ProjectStatusBuilding
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidProjectStatus
	}

	project := &models.Project{
		Name:        name,
		Description: input.Description,
		Status:      input.Status,
		IsPublic:    input.IsPublic,
		OwnerID:     input.OwnerID,
	}

	if err := s.projectRepo.CreateWithOwner(ctx, project, &models.Member{}); err != nil {
		return nil, apierrors.Database("failed to create project", err)
	}

	logger.Info().Uint64("project_id", project.ID).Uint64("owner_id", project.OwnerID).Msg("project created")
	return project, nil
}

// ListProjectsForUser returns the caller's memberships with their projects.
func (s *ProjectService) ListProjectsForUser(ctx context.Context, userID uint64) ([]models.Member, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}

	memberships, err := s.projectRepo.ListMembershipsByUserID(ctx, userID)
	if err != nil {
		return nil, apierrors.Database("failed to list projects", err)
	}
	return memberships, nil
}

// ListPublicProjects returns public projects anyone signed in can join.
func (s *ProjectService) ListPublicProjects(ctx context.Context, params utils.PaginationParams) ([]models.Project, int64, error) {
	projects, total, err := s.projectRepo.ListPublic(ctx, params)
	if err != nil {
		return nil, 0, apierrors.Database("failed to list public projects", err)
	}
	return projects, total, nil
}

// GetProject returns a project with its members. Any member may read it.
func (s *ProjectService) GetProject(ctx context.Context, projectID, userID uint64) (*ProjectDetail, error) {
	access, err := s.authz.Authorize(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	members, err := s.memberRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apierrors.Database("failed to list project members", err)
	}

	return &ProjectDetail{
		Project:  access.Project,
		Members:  members,
		YourRole: access.Member.Role,
	}, nil
}

// UpdateProject changes project settings. OWNER and ADMIN only.
func (s *ProjectService) UpdateProject(ctx context.Context, projectID, userID uint64, input UpdateProjectInput) (*models.Project, error) {
	access, err := s.authz.RequireManager(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	project := access.Project

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidProjectName
		}
		project.Name = name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidProjectStatus
		}
		project.Status = *input.Status
	}
	if input.IsPublic != nil {
		project.IsPublic = *input.IsPublic
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrProjectNotFound
		}
		return nil, apierrors.Database("failed to update project", err)
	}
	return project, nil
}

// DeleteProject removes the project with its tasks, members and invitation
// code. OWNER only.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID, userID uint64) error {
	if _, err := s.authz.RequireOwner(ctx, projectID, userID); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		return apierrors.Database("failed to delete project", err)
	}

	logger.Info().Uint64("project_id", projectID).Uint64("user_id", userID).Msg("project deleted")
	return nil
}

// JoinPublicProject adds the caller as a MEMBER of a public project without an
// invitation code.
func (s *ProjectService) JoinPublicProject(ctx context.Context, projectID, userID uint64) (*models.Project, *models.Member, error) {
	if userID == 0 {
		return nil, nil, ErrUnauthenticated
	}

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, ErrProjectNotFound
		}
		return nil, nil, apierrors.Database("failed to find project", err)
	}
	if !project.IsPublic {
		return nil, nil, ErrProjectNotPublic
	}

	member, err := addMembership(ctx, s.memberRepo, project.ID, userID, models.RoleMember)
	if err != nil {
		return nil, nil, err
	}
	return project, member, nil
}

// TransferOwnership hands the project to another member. The previous OWNER
// stays on as ADMIN.
func (s *ProjectService) TransferOwnership(ctx context.Context, projectID, ownerID, targetMemberID uint64) (*models.Project, error) {
	access, err := s.authz.RequireOwner(ctx, projectID, ownerID)
	if err != nil {
		return nil, err
	}

	target, err := s.memberRepo.FindByID(ctx, targetMemberID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrProjectMemberNotFound
		}
		return nil, apierrors.Database("failed to find project member", err)
	}
	if target.ProjectID != projectID {
		return nil, ErrProjectMemberNotFound
	}
	if target.ID == access.Member.ID {
		return nil, ErrTransferToSelf
	}

	if err := s.projectRepo.TransferOwnership(ctx, projectID, access.Member, target); err != nil {
		return nil, apierrors.Database("failed to transfer ownership", err)
	}

	logger.Info().
		Uint64("project_id", projectID).
		Uint64("from_user_id", ownerID).
		Uint64("to_user_id", target.UserID).
		Msg("project ownership transferred")

	project := access.Project
	project.OwnerID = target.UserID
	return project, nil
}

// GetProjectStats returns task counts per status and priority.
func (s *ProjectService) GetProjectStats(ctx context.Context, projectID, userID uint64) (*ProjectStats, error) {
	if _, err := s.authz.Authorize(ctx, projectID, userID); err != nil {
		return nil, err
	}

	byStatus, err := s.taskRepo.CountByStatus(ctx, projectID)
	if err != nil {
		return nil, apierrors.Database("failed to count tasks", err)
	}
	byPriority, err := s.taskRepo.CountByPriority(ctx, projectID)
	if err != nil {
		return nil, apierrors.Database("failed to count tasks", err)
	}
	members, err := s.memberRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apierrors.Database("failed to list project members", err)
	}

	var total int64
	for _, n := range byStatus {
		total += n
	}

	return &ProjectStats{
		MemberCount: len(members),
		TotalTasks:  total,
		ByStatus:    byStatus,
		ByPriority:  byPriority,
	}, nil
}
