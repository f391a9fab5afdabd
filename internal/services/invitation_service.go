package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yukikurage/project-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/logger"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

var (
	ErrInvitationCodeRequired     = apierrors.Validation("invitation code is required")
	ErrInvitationCodeNotFound     = apierrors.NewAPIError(apierrors.ErrCodeNotFound, "invitation code not found")
	ErrInvalidInvitationCode      = apierrors.NewAPIError(apierrors.ErrCodeNotFound, "invalid invitation code")
	ErrInvitationCodeExpired      = apierrors.NewAPIError(apierrors.ErrCodeExpired, "invitation code has expired")
	ErrInviteCodeGenerationFailed = apierrors.NewAPIError(apierrors.ErrCodeInternalError, "failed to generate invitation code")
)

// DefaultInvitationTTL is how long a generated code stays valid.
const DefaultInvitationTTL = 7 * 24 * time.Hour

// InvitationOptions configures code generation.
type InvitationOptions struct {
	CodeLength int
	TTL        time.Duration
}

// InvitationService issues invitation codes and lets users join projects with them.
type InvitationService struct {
	authz       *Authorizer
	projectRepo repository.ProjectRepository
	memberRepo  repository.MemberRepository
	codeRepo    repository.InvitationCodeRepository
	opts        InvitationOptions
	now         func() time.Time
}

// NewInvitationService creates a new InvitationService. Zero options fall back
// to 10 character codes valid for seven days.
func NewInvitationService(
	authz *Authorizer,
	projectRepo repository.ProjectRepository,
	memberRepo repository.MemberRepository,
	codeRepo repository.InvitationCodeRepository,
	opts InvitationOptions,
) *InvitationService {
	if opts.CodeLength <= 0 {
		opts.CodeLength = 10
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultInvitationTTL
	}

	return &InvitationService{
		authz:       authz,
		projectRepo: projectRepo,
		memberRepo:  memberRepo,
		codeRepo:    codeRepo,
		opts:        opts,
		now:         time.Now,
	}
}

// GetInvitationCode returns the project's current code. Only OWNER and ADMIN
// may read it.
func (s *InvitationService) GetInvitationCode(ctx context.Context, projectID, userID uint64) (*models.InvitationCode, error) {
	if _, err := s.authz.RequireManager(ctx, projectID, userID); err != nil {
		return nil, err
	}

	code, err := s.codeRepo.FindByProjectID(ctx, projectID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvitationCodeNotFound
		}
		return nil, apierrors.Database("failed to find invitation code", err)
	}

	return code, nil
}

// GenerateInvitationCode issues a new code for the project, replacing any
// previous one. The old code stops working as soon as the write commits.
func (s *InvitationService) GenerateInvitationCode(ctx context.Context, projectID, userID uint64) (*models.InvitationCode, error) {
	if _, err := s.authz.RequireManager(ctx, projectID, userID); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < constants.MaxInvitationCodeAttempts; attempt++ {
		value, err := utils.GenerateInviteCode(s.opts.CodeLength)
		if err != nil {
			return nil, ErrInviteCodeGenerationFailed
		}

		taken, err := s.codeTakenByOtherProject(ctx, value, projectID)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		code := &models.InvitationCode{
			ProjectID: projectID,
			Code:      value,
			ExpiresAt: s.now().Add(s.opts.TTL),
		}

		if err := s.codeRepo.Upsert(ctx, code); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				continue
			}
			return nil, apierrors.Database("failed to save invitation code", err)
		}

		logger.Info().
			Uint64("project_id", projectID).
			Uint64("user_id", userID).
			Time("expires_at", code.ExpiresAt).
			Msg("invitation code generated")

		return code, nil
	}

	return nil, ErrInviteCodeGenerationFailed
}

func (s *InvitationService) codeTakenByOtherProject(ctx context.Context, value string, projectID uint64) (bool, error) {
	existing, err := s.codeRepo.FindByCode(ctx, value)
	if err != nil {
		if repository.IsNotFound(err) {
			return false, nil
		}
		return false, apierrors.Database("failed to check invitation code", err)
	}
	return existing.ProjectID != projectID, nil
}

// JoinProject adds the caller as a MEMBER of the project the code belongs to.
// The code is shared and stays valid for other users until it expires or is
// regenerated.
func (s *InvitationService) JoinProject(ctx context.Context, code string, userID uint64) (*models.Project, *models.Member, error) {
	if userID == 0 {
		return nil, nil, ErrUnauthenticated
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil, ErrInvitationCodeRequired
	}

	invitation, err := s.codeRepo.FindByCode(ctx, code)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, ErrInvalidInvitationCode
		}
		return nil, nil, apierrors.Database("failed to find invitation code", err)
	}

	if invitation.Expired(s.now()) {
		return nil, nil, ErrInvitationCodeExpired
	}

	project, err := s.projectRepo.FindByID(ctx, invitation.ProjectID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, ErrInvalidInvitationCode
		}
		return nil, nil, apierrors.Database("failed to find project", err)
	}

	member, err := addMembership(ctx, s.memberRepo, project.ID, userID, models.RoleMember)
	if err != nil {
		return nil, nil, err
	}

	logger.Info().
		Uint64("project_id", project.ID).
		Uint64("user_id", userID).
		Msg("user joined project with invitation code")

	return project, member, nil
}
