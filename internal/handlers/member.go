package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/middleware"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/services"
)

// MemberParam is the route parameter holding the membership ID.
const MemberParam = "memberId"

type MemberHandler struct {
	memberService *services.MemberService
}

func NewMemberHandler(memberService *services.MemberService) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
	}
}

// ListMembers returns the members of a project
func (h *MemberHandler) ListMembers(c *gin.Context) {
	projectID, userID, ok := projectRequest(c)
	if !ok {
		return
	}

	members, err := h.memberService.ListMembers(c.Request.Context(), projectID, userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"members": dto.ToMemberDTOs(members),
	})
}

// AddMember adds an existing user to a project by ID or email
func (h *MemberHandler) AddMember(c *gin.Context) {
	projectID, userID, ok := projectRequest(c)
	if !ok {
		return
	}

	type AddMemberRequest struct {
		UserID uint64      `json:"user_id"`
		Email  string      `json:"email"`
		Role   models.Role `json:"role"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.memberService.AddMember(c.Request.Context(), services.AddMemberInput{
		ProjectID: projectID,
		ActorID:   userID,
		UserID:    req.UserID,
		Email:     req.Email,
		Role:      req.Role,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMemberDTO(*member))
}

// UpdateMemberRole changes a member's role
func (h *MemberHandler) UpdateMemberRole(c *gin.Context) {
	projectID, userID, ok := projectRequest(c)
	if !ok {
		return
	}
	memberID, ok := middleware.ParseIDParam(c, MemberParam)
	if !ok {
		apierrors.BadRequest(c, "Invalid member ID")
		return
	}

	type UpdateRoleRequest struct {
		Role models.Role `json:"role" binding:"required"`
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.memberService.UpdateMemberRole(c.Request.Context(), projectID, userID, memberID, req.Role)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         member.ID,
		"project_id": member.ProjectID,
		"user_id":    member.UserID,
		"role":       member.Role,
	})
}

// RemoveMember removes a member from the project
func (h *MemberHandler) RemoveMember(c *gin.Context) {
	projectID, userID, ok := projectRequest(c)
	if !ok {
		return
	}
	memberID, ok := middleware.ParseIDParam(c, MemberParam)
	if !ok {
		apierrors.BadRequest(c, "Invalid member ID")
		return
	}

	if err := h.memberService.RemoveMember(c.Request.Context(), projectID, userID, memberID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}

// LeaveProject removes the caller from the project
func (h *MemberHandler) LeaveProject(c *gin.Context) {
	projectID, userID, ok := projectRequest(c)
	if !ok {
		return
	}

	if err := h.memberService.LeaveProject(c.Request.Context(), projectID, userID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Left project successfully",
	})
}
