package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-tracker-api/internal/constants"
	"github.com/yukikurage/project-tracker-api/internal/database"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	db *gorm.DB

	userRepo    repository.UserRepository
	projectRepo repository.ProjectRepository
	memberRepo  repository.MemberRepository

	authz             *services.Authorizer
	authService       *services.AuthService
	taskService       *services.TaskService
	invitationService *services.InvitationService

	authHandler       *AuthHandler
	projectHandler    *ProjectHandler
	invitationHandler *InvitationHandler
	memberHandler     *MemberHandler
	taskHandler       *TaskHandler
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:"), gormlogger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))

	env := &testEnv{
		db:          db,
		userRepo:    repository.NewUserRepository(db),
		projectRepo: repository.NewProjectRepository(db),
		memberRepo:  repository.NewMemberRepository(db),
	}
	codeRepo := repository.NewInvitationCodeRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	env.authz = services.NewAuthorizer(env.projectRepo, env.memberRepo)
	env.authService = services.NewAuthService(env.userRepo)
	env.taskService = services.NewTaskService(env.authz, taskRepo, env.memberRepo, nil)
	env.invitationService = services.NewInvitationService(env.authz, env.projectRepo, env.memberRepo, codeRepo, services.InvitationOptions{})

	env.authHandler = NewAuthHandler(env.authService)
	env.projectHandler = NewProjectHandler(services.NewProjectService(env.authz, env.projectRepo, env.memberRepo, taskRepo))
	env.invitationHandler = NewInvitationHandler(env.invitationService)
	env.memberHandler = NewMemberHandler(services.NewMemberService(env.authz, env.memberRepo, env.userRepo))
	env.taskHandler = NewTaskHandler(env.taskService)

	return env
}

func (env *testEnv) createUser(t *testing.T, name string) *models.User {
	t.Helper()

	user := &models.User{Name: name, Email: name + "@example.com", PasswordHash: "hashedpassword"}
	require.NoError(t, env.userRepo.Create(context.Background(), user))
	return user
}

func (env *testEnv) createProject(t *testing.T, owner *models.User, name string) *models.Project {
	t.Helper()

	project := &models.Project{Name: name, Status: models.ProjectStatusBuilding, OwnerID: owner.ID}
	require.NoError(t, env.projectRepo.CreateWithOwner(context.Background(), project, &models.Member{}))
	return project
}

func (env *testEnv) addMember(t *testing.T, project *models.Project, user *models.User, role models.Role) *models.Member {
	t.Helper()

	member := &models.Member{ProjectID: project.ID, UserID: user.ID, Role: role}
	require.NoError(t, env.memberRepo.Create(context.Background(), member))
	return member
}

// asUser simulates RequireAuth for userID.
func asUser(userID uint64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

func performJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}
