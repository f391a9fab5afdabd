package services

import (
	"context"
	"errors"
	"strings"

	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/repository"
)

var (
	ErrAlreadyProjectMember   = apierrors.NewAPIError(apierrors.ErrCodeConflict, "user is already a member of this project")
	ErrProjectMemberNotFound  = apierrors.NewAPIError(apierrors.ErrCodeNotFound, "project member not found")
	ErrOwnerCannotLeave       = apierrors.NewAPIError(apierrors.ErrCodeForbidden, "the project owner cannot leave; transfer ownership first")
	ErrCannotRemoveOwner      = apierrors.NewAPIError(apierrors.ErrCodeForbidden, "the project owner cannot be removed")
	ErrCannotChangeOwnerRole  = apierrors.NewAPIError(apierrors.ErrCodeForbidden, "the owner's role can only change through an ownership transfer")
	ErrOnlyOwnerManagesAdmins = apierrors.NewAPIError(apierrors.ErrCodeForbidden, "only the project owner can grant or revoke the admin role")
	ErrInvalidMemberRole      = apierrors.Validation("role must be ADMIN or MEMBER")
	ErrMemberTargetRequired   = apierrors.Validation("user_id or email is required")
)

// MemberService manages project memberships.
type MemberService struct {
	authz      *Authorizer
	memberRepo repository.MemberRepository
	userRepo   repository.UserRepository
}

// NewMemberService creates a new MemberService.
func NewMemberService(authz *Authorizer, memberRepo repository.MemberRepository, userRepo repository.UserRepository) *MemberService {
	return &MemberService{
		authz:      authz,
		memberRepo: memberRepo,
		userRepo:   userRepo,
	}
}

// AddMemberInput identifies the user to add either by ID or by email.
type AddMemberInput struct {
	ProjectID uint64
	ActorID   uint64
	UserID    uint64
	Email     string
	Role      models.Role
}

// ListMembers returns the members of a project. Any member may list them.
func (s *MemberService) ListMembers(ctx context.Context, projectID, userID uint64) ([]models.Member, error) {
	if _, err := s.authz.Authorize(ctx, projectID, userID); err != nil {
		return nil, err
	}

	members, err := s.memberRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apierrors.Database("failed to list project members", err)
	}
	return members, nil
}

// AddMember adds an existing user to the project. OWNER and ADMIN may add
// MEMBERs; only the OWNER may add ADMINs.
func (s *MemberService) AddMember(ctx context.Context, input AddMemberInput) (*models.Member, error) {
	if input.Role == "" {
		input.Role = models.RoleMember
	}
	if input.Role != models.RoleAdmin && input.Role != models.RoleMember {
		return nil, ErrInvalidMemberRole
	}

	access, err := s.authz.RequireManager(ctx, input.ProjectID, input.ActorID)
	if err != nil {
		return nil, err
	}
	if input.Role == models.RoleAdmin && access.Member.Role != models.RoleOwner {
		return nil, ErrOnlyOwnerManagesAdmins
	}

	user, err := s.resolveUser(ctx, input)
	if err != nil {
		return nil, err
	}

	member, err := addMembership(ctx, s.memberRepo, input.ProjectID, user.ID, input.Role)
	if err != nil {
		return nil, err
	}
	member.User = *user
	return member, nil
}

func (s *MemberService) resolveUser(ctx context.Context, input AddMemberInput) (*models.User, error) {
	var (
		user *models.User
		err  error
	)
	switch {
	case input.UserID != 0:
		user, err = s.userRepo.FindByID(ctx, input.UserID)
	case strings.TrimSpace(input.Email) != "":
		user, err = s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	default:
		return nil, ErrMemberTargetRequired
	}

	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, apierrors.Database("failed to find user", err)
	}
	return user, nil
}

// UpdateMemberRole switches a member between ADMIN and MEMBER. Only the OWNER
// may do this; ownership itself moves through TransferOwnership.
func (s *MemberService) UpdateMemberRole(ctx context.Context, projectID, actorID, memberID uint64, role models.Role) (*models.Member, error) {
	if role != models.RoleAdmin && role != models.RoleMember {
		return nil, ErrInvalidMemberRole
	}

	access, err := s.authz.Authorize(ctx, projectID, actorID, models.ManagerRoles...)
	if err != nil {
		return nil, err
	}
	if access.Member.Role != models.RoleOwner {
		return nil, ErrOnlyOwnerManagesAdmins
	}

	target, err := s.findProjectMember(ctx, projectID, memberID)
	if err != nil {
		return nil, err
	}
	if target.Role == models.RoleOwner {
		return nil, ErrCannotChangeOwnerRole
	}

	if err := s.memberRepo.UpdateRole(ctx, target.ID, role); err != nil {
		return nil, apierrors.Database("failed to update member role", err)
	}

	target.Role = role
	return target, nil
}

// RemoveMember removes a member from the project. The OWNER can never be
// removed, including by themself; ADMINs may only remove MEMBERs.
// Removing your own non-owner membership is the same as leaving.
func (s *MemberService) RemoveMember(ctx context.Context, projectID, actorID, memberID uint64) error {
	target, err := s.findProjectMemberForActor(ctx, projectID, actorID, memberID)
	if err != nil {
		return err
	}

	if target.UserID == actorID {
		return s.leave(ctx, target)
	}

	access, err := s.authz.RequireManager(ctx, projectID, actorID)
	if err != nil {
		return err
	}

	switch {
	case target.Role == models.RoleOwner:
		return ErrCannotRemoveOwner
	case target.Role == models.RoleAdmin && access.Member.Role != models.RoleOwner:
		return ErrOnlyOwnerManagesAdmins
	}

	if err := s.memberRepo.Delete(ctx, target); err != nil {
		return apierrors.Database("failed to remove member", err)
	}
	return nil
}

// LeaveProject removes the caller's own membership.
func (s *MemberService) LeaveProject(ctx context.Context, projectID, userID uint64) error {
	access, err := s.authz.Authorize(ctx, projectID, userID)
	if err != nil {
		return err
	}
	return s.leave(ctx, access.Member)
}

func (s *MemberService) leave(ctx context.Context, member *models.Member) error {
	if member.Role == models.RoleOwner {
		return ErrOwnerCannotLeave
	}
	if err := s.memberRepo.Delete(ctx, member); err != nil {
		return apierrors.Database("failed to leave project", err)
	}
	return nil
}

// findProjectMemberForActor checks the actor belongs to the project before
// revealing anything about the target member.
func (s *MemberService) findProjectMemberForActor(ctx context.Context, projectID, actorID, memberID uint64) (*models.Member, error) {
	if _, err := s.authz.Authorize(ctx, projectID, actorID); err != nil {
		return nil, err
	}
	return s.findProjectMember(ctx, projectID, memberID)
}

func (s *MemberService) findProjectMember(ctx context.Context, projectID, memberID uint64) (*models.Member, error) {
	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrProjectMemberNotFound
		}
		return nil, apierrors.Database("failed to find project member", err)
	}
	if member.ProjectID != projectID {
		return nil, ErrProjectMemberNotFound
	}
	return member, nil
}

// addMembership inserts a membership after an existence check. The unique
// index catches the race the check cannot.
func addMembership(ctx context.Context, memberRepo repository.MemberRepository, projectID, userID uint64, role models.Role) (*models.Member, error) {
	if _, err := memberRepo.FindByProjectAndUser(ctx, projectID, userID); err == nil {
		return nil, ErrAlreadyProjectMember
	} else if !repository.IsNotFound(err) {
		return nil, apierrors.Database("failed to verify membership", err)
	}

	member := &models.Member{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
	}

	if err := memberRepo.Create(ctx, member); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrAlreadyProjectMember
		}
		return nil, apierrors.Database("failed to add member to project", err)
	}

	return member, nil
}
