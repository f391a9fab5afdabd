package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/logger"
	"github.com/yukikurage/project-tracker-api/internal/middleware"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Project Tracker API is running",
		})
	})

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", svc.authHandler.Signup)
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/logout", svc.authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), svc.authHandler.GetCurrentUser)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(middleware.RequireAuth())
		{
			projects.POST("", svc.projectHandler.CreateProject)
			projects.GET("", svc.projectHandler.ListProjects)
			projects.GET("/public", svc.projectHandler.ListPublicProjects)
			projects.POST("/join", svc.joinLimiter.Middleware(), svc.invitationHandler.JoinProject)

			project := projects.Group("/:" + middleware.ProjectParam)
			{
				project.GET("", svc.projectHandler.GetProject)
				project.PATCH("", svc.projectHandler.UpdateProject)
				project.DELETE("", svc.projectHandler.DeleteProject)
				project.POST("/join", svc.joinLimiter.Middleware(), svc.projectHandler.JoinPublicProject)
				project.POST("/leave", svc.memberHandler.LeaveProject)
				project.POST("/transfer-ownership", svc.projectHandler.TransferOwnership)
				project.GET("/stats", svc.projectHandler.GetProjectStats)

				project.GET("/invitation-code", svc.invitationHandler.GetInvitationCode)
				project.POST("/invitation-code", svc.invitationHandler.GenerateInvitationCode)

				project.GET("/members", svc.memberHandler.ListMembers)
				project.POST("/members", svc.memberHandler.AddMember)
				project.PATCH("/members/:memberId", svc.memberHandler.UpdateMemberRole)
				project.DELETE("/members/:memberId", svc.memberHandler.RemoveMember)

				project.GET("/tasks", svc.taskHandler.ListTasks)
				project.POST("/tasks", svc.taskHandler.CreateTask)
				project.POST("/tasks/generate", svc.taskHandler.GenerateTasks)
			}
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("/:"+middleware.TaskParam, middleware.RequireTaskAccess(svc.taskService), svc.taskHandler.GetTask)
			tasks.PATCH("/:"+middleware.TaskParam, svc.taskHandler.UpdateTask)
			tasks.DELETE("/:"+middleware.TaskParam, svc.taskHandler.DeleteTask)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		logger.Debug().Str("path", c.Request.URL.Path).Msg("no route")
		c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "message": "Resource not found"})
	})
}
