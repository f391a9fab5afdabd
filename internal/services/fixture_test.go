package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-tracker-api/internal/database"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fixture struct {
	db *gorm.DB

	userRepo    repository.UserRepository
	projectRepo repository.ProjectRepository
	memberRepo  repository.MemberRepository
	codeRepo    repository.InvitationCodeRepository
	taskRepo    repository.TaskRepository

	authz *Authorizer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:"), gormlogger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))

	f := &fixture{
		db:          db,
		userRepo:    repository.NewUserRepository(db),
		projectRepo: repository.NewProjectRepository(db),
		memberRepo:  repository.NewMemberRepository(db),
		codeRepo:    repository.NewInvitationCodeRepository(db),
		taskRepo:    repository.NewTaskRepository(db),
	}
	f.authz = NewAuthorizer(f.projectRepo, f.memberRepo)
	return f
}

func (f *fixture) createUser(t *testing.T, name string) *models.User {
	t.Helper()

	user := &models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: "hashedpassword",
	}
	require.NoError(t, f.userRepo.Create(context.Background(), user))
	return user
}

func (f *fixture) createProject(t *testing.T, owner *models.User, name string) *models.Project {
	t.Helper()

	project := &models.Project{
		Name:    name,
		Status:  models.ProjectStatusBuilding,
		OwnerID: owner.ID,
	}
	require.NoError(t, f.projectRepo.CreateWithOwner(context.Background(), project, &models.Member{}))
	return project
}

func (f *fixture) addMember(t *testing.T, project *models.Project, user *models.User, role models.Role) *models.Member {
	t.Helper()

	member := &models.Member{
		ProjectID: project.ID,
		UserID:    user.ID,
		Role:      role,
	}
	require.NoError(t, f.memberRepo.Create(context.Background(), member))
	return member
}

func (f *fixture) membership(t *testing.T, project *models.Project, user *models.User) *models.Member {
	t.Helper()

	member, err := f.memberRepo.FindByProjectAndUser(context.Background(), project.ID, user.ID)
	require.NoError(t, err)
	return member
}

func (f *fixture) invitationService() *InvitationService {
	return NewInvitationService(f.authz, f.projectRepo, f.memberRepo, f.codeRepo, InvitationOptions{})
}

func (f *fixture) memberService() *MemberService {
	return NewMemberService(f.authz, f.memberRepo, f.userRepo)
}

func (f *fixture) projectService() *ProjectService {
	return NewProjectService(f.authz, f.projectRepo, f.memberRepo, f.taskRepo)
}

func (f *fixture) taskService(suggester TaskSuggester) *TaskService {
	return NewTaskService(f.authz, f.taskRepo, f.memberRepo, suggester)
}

// requireCode asserts err is an APIError carrying the given type tag.
func requireCode(t *testing.T, err error, code string) {
	t.Helper()

	require.Error(t, err)
	require.Equal(t, code, apierrors.CodeOf(err), "unexpected error: %v", err)
}
