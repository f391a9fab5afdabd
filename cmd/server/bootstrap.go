package main

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/yukikurage/project-tracker-api/internal/config"
	"github.com/yukikurage/project-tracker-api/internal/handlers"
	"github.com/yukikurage/project-tracker-api/internal/logger"
	"github.com/yukikurage/project-tracker-api/internal/middleware"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"gorm.io/gorm"
)

// appServices holds the handlers and shared middleware state the routes need.
type appServices struct {
	taskService *services.TaskService
	joinLimiter *middleware.RateLimiter

	authHandler       *handlers.AuthHandler
	projectHandler    *handlers.ProjectHandler
	invitationHandler *handlers.InvitationHandler
	memberHandler     *handlers.MemberHandler
	taskHandler       *handlers.TaskHandler
}

// bootstrap wires repositories, services and handlers on top of db.
func bootstrap(cfg *config.Config, db *gorm.DB) *appServices {
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	codeRepo := repository.NewInvitationCodeRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	authz := services.NewAuthorizer(projectRepo, memberRepo)

	// AI drafting stays disabled without an API key
	var suggester services.TaskSuggester
	if cfg.OpenAI.APIKey != "" {
		suggester = services.NewAIService(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	} else {
		logger.Warn().Msg("OPENAI_API_KEY not set; task generation is disabled")
	}

	authService := services.NewAuthService(userRepo)
	projectService := services.NewProjectService(authz, projectRepo, memberRepo, taskRepo)
	invitationService := services.NewInvitationService(authz, projectRepo, memberRepo, codeRepo, services.InvitationOptions{
		CodeLength: cfg.Invitation.CodeLength,
		TTL:        cfg.InvitationTTL(),
	})
	memberService := services.NewMemberService(authz, memberRepo, userRepo)
	taskService := services.NewTaskService(authz, taskRepo, memberRepo, suggester)

	return &appServices{
		taskService: taskService,
		joinLimiter: middleware.NewRateLimiter(cfg.RateLimit.JoinRPS, cfg.RateLimit.JoinBurst),

		authHandler:       handlers.NewAuthHandler(authService),
		projectHandler:    handlers.NewProjectHandler(projectService),
		invitationHandler: handlers.NewInvitationHandler(invitationService),
		memberHandler:     handlers.NewMemberHandler(memberService),
		taskHandler:       handlers.NewTaskHandler(taskService),
	}
}

// newSessionStore builds the configured session store.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store

	switch cfg.Session.Store {
	case "redis":
		rs, err := redisStore.NewStore(
			cfg.Redis.PoolSize,
			"tcp",
			cfg.RedisAddr(),
			"", // username (empty for default user)
			cfg.Redis.Password,
			[]byte(cfg.Session.Secret),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis session store: %w", err)
		}
		store = rs
	case "cookie":
		store = cookie.NewStore([]byte(cfg.Session.Secret))
	default:
		return nil, fmt.Errorf("unsupported session store: %s", cfg.Session.Store)
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Session.MaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}
