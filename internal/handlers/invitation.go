package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/middleware"
	"github.com/yukikurage/project-tracker-api/internal/services"
)

type InvitationHandler struct {
	invitationService *services.InvitationService
}

func NewInvitationHandler(invitationService *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{
		invitationService: invitationService,
	}
}

// GetInvitationCode returns the project's current invitation code
func (h *InvitationHandler) GetInvitationCode(c *gin.Context) {
	projectID, userID, ok := projectRequest(c)
	if !ok {
		return
	}

	code, err := h.invitationService.GetInvitationCode(c.Request.Context(), projectID, userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInvitationCodeDTO(*code, time.Now()))
}

// GenerateInvitationCode issues a new code, replacing the previous one
func (h *InvitationHandler) GenerateInvitationCode(c *gin.Context) {
	projectID, userID, ok := projectRequest(c)
	if !ok {
		return
	}

	code, err := h.invitationService.GenerateInvitationCode(c.Request.Context(), projectID, userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToInvitationCodeDTO(*code, time.Now()))
}

// JoinProject joins the project an invitation code belongs to
func (h *InvitationHandler) JoinProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type JoinRequest struct {
		Code string `json:"code" binding:"required"`
	}

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, member, err := h.invitationService.JoinProject(c.Request.Context(), req.Code, userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.JoinProjectResponse{
		Project: dto.ToProjectDTO(*project),
		Member:  dto.ToMemberDTO(*member),
	})
}
