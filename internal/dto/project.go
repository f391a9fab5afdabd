package dto

import (
	"time"

	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/services"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
	OwnerID     uint64               `json:"owner_id"`
	IsPublic    bool                 `json:"is_public"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// ProjectWithRoleDTO represents a project with the user's role
type ProjectWithRoleDTO struct {
	ProjectDTO
	Role models.Role `json:"role"`
}

// MemberDTO represents a member in a project
type MemberDTO struct {
	ID        uint64      `json:"id"`
	ProjectID uint64      `json:"project_id"`
	Role      models.Role `json:"role"`
	User      UserDTO     `json:"user"`
	JoinedAt  time.Time   `json:"joined_at"`
}

// ProjectDetailDTO represents detailed project information
type ProjectDetailDTO struct {
	ProjectDTO
	Members  []MemberDTO `json:"members"`
	YourRole models.Role `json:"your_role"`
}

// InvitationCodeDTO represents a project's invitation code
type InvitationCodeDTO struct {
	ProjectID uint64    `json:"project_id"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	Expired   bool      `json:"expired"`
}

// JoinProjectResponse is returned after joining a project
type JoinProjectResponse struct {
	Project ProjectDTO `json:"project"`
	Member  MemberDTO  `json:"member"`
}

// ProjectStatsDTO summarises a project's tasks
type ProjectStatsDTO struct {
	MemberCount int                           `json:"member_count"`
	TotalTasks  int64                         `json:"total_tasks"`
	ByStatus    map[models.TaskStatus]int64   `json:"by_status"`
	ByPriority  map[models.TaskPriority]int64 `json:"by_priority"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Status:      project.Status,
		OwnerID:     project.OwnerID,
		IsPublic:    project.IsPublic,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

// ToProjectDTOs converts a slice of projects
func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	items := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		items[i] = ToProjectDTO(p)
	}
	return items
}

// ToProjectWithRoleDTO converts a membership to a project DTO with role
func ToProjectWithRoleDTO(member models.Member) ProjectWithRoleDTO {
	return ProjectWithRoleDTO{
		ProjectDTO: ToProjectDTO(member.Project),
		Role:       member.Role,
	}
}

// ToMemberDTO converts a member to DTO
func ToMemberDTO(member models.Member) MemberDTO {
	return MemberDTO{
		ID:        member.ID,
		ProjectID: member.ProjectID,
		Role:      member.Role,
		User:      ToUserDTO(member.User),
		JoinedAt:  member.CreatedAt,
	}
}

// ToMemberDTOs converts a slice of members
func ToMemberDTOs(members []models.Member) []MemberDTO {
	items := make([]MemberDTO, len(members))
	for i, m := range members {
		items[i] = ToMemberDTO(m)
	}
	return items
}

// ToProjectDetailDTO converts project details to DTO
func ToProjectDetailDTO(detail services.ProjectDetail) ProjectDetailDTO {
	return ProjectDetailDTO{
		ProjectDTO: ToProjectDTO(*detail.Project),
		Members:    ToMemberDTOs(detail.Members),
		YourRole:   detail.YourRole,
	}
}

// ToInvitationCodeDTO converts an invitation code; expired is evaluated at now
func ToInvitationCodeDTO(code models.InvitationCode, now time.Time) InvitationCodeDTO {
	return InvitationCodeDTO{
		ProjectID: code.ProjectID,
		Code:      code.Code,
		ExpiresAt: code.ExpiresAt,
		Expired:   code.Expired(now),
	}
}

// ToProjectStatsDTO converts project stats
func ToProjectStatsDTO(stats services.ProjectStats) ProjectStatsDTO {
	return ProjectStatsDTO{
		MemberCount: stats.MemberCount,
		TotalTasks:  stats.TotalTasks,
		ByStatus:    stats.ByStatus,
		ByPriority:  stats.ByPriority,
	}
}
