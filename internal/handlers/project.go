package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/middleware"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// CreateProject creates a new project owned by the caller
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateProjectRequest struct {
		Name        string               `json:"name" binding:"required,max=255"`
		Description string               `json:"description"`
		Status      models.ProjectStatus `json:"status"`
		IsPublic    bool                 `json:"is_public"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		IsPublic:    req.IsPublic,
		OwnerID:     userID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// ListProjects returns all projects the user is a member of
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	memberships, err := h.projectService.ListProjectsForUser(c.Request.Context(), userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	projects := make([]dto.ProjectWithRoleDTO, len(memberships))
	for i, m := range memberships {
		projects[i] = dto.ToProjectWithRoleDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
	})
}

// ListPublicProjects returns public projects
func (h *ProjectHandler) ListPublicProjects(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	projects, total, err := h.projectService.ListPublicProjects(c.Request.Context(), params)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": dto.ToProjectDTOs(projects),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetProject returns project details with its members
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, userID, ok := projectRequest(c)
	if !ok {
		return
	}

	detail, err := h.projectService.GetProject(c.Request.Context(), projectID, userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDetailDTO(*detail))
}

// UpdateProject updates project settings
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	projectID, userID, ok := projectRequest(c)
	if !ok {
		return
	}

	type UpdateProjectRequest struct {
		Name        *string               `json:"name"`
		Description *string               `json:"description"`
		Status      *models.ProjectStatus `json:"status"`
		IsPublic    *bool                 `json:"is_public"`
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), projectID, userID, services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject deletes a project
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	projectID, userID, ok := projectRequest(c)
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(c.Request.Context(), projectID, userID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}

// JoinPublicProject joins a public project without an invitation code
func (h *ProjectHandler) JoinPublicProject(c *gin.Context) {
	projectID, userID, ok := projectRequest(c)
	if !ok {
		return
	}

	project, member, err := h.projectService.JoinPublicProject(c.Request.Context(), projectID, userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.JoinProjectResponse{
		Project: dto.ToProjectDTO(*project),
		Member:  dto.ToMemberDTO(*member),
	})
}

// TransferOwnership hands the project to another member
func (h *ProjectHandler) TransferOwnership(c *gin.Context) {
	projectID, userID, ok := projectRequest(c)
	if !ok {
		return
	}

	type TransferRequest struct {
		MemberID uint64 `json:"member_id" binding:"required"`
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.TransferOwnership(c.Request.Context(), projectID, userID, req.MemberID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// GetProjectStats returns task counts for a project
func (h *ProjectHandler) GetProjectStats(c *gin.Context) {
	projectID, userID, ok := projectRequest(c)
	if !ok {
		return
	}

	stats, err := h.projectService.GetProjectStats(c.Request.Context(), projectID, userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectStatsDTO(*stats))
}

// projectRequest reads the caller and the project ID from the URL, writing
// the error response itself when either is missing.
func projectRequest(c *gin.Context) (projectID, userID uint64, ok bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, 0, false
	}

	projectID, ok = middleware.ParseIDParam(c, middleware.ProjectParam)
	if !ok {
		apierrors.BadRequest(c, "Invalid project ID")
		return 0, 0, false
	}

	return projectID, userID, true
}
