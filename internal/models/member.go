package models

import "time"

type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// Valid reports whether r is one of OWNER, ADMIN or MEMBER.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// CanManage reports whether the role may manage members, tasks and invitation codes.
func (r Role) CanManage() bool {
	return r == RoleOwner || r == RoleAdmin
}

// ManagerRoles are the roles allowed to perform management operations.
var ManagerRoles = []Role{RoleOwner, RoleAdmin}

// Member joins a user to a project. (project_id, user_id) is unique at the
// storage layer so concurrent joins cannot produce duplicate rows.
type Member struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	ProjectID uint64    `gorm:"not null;uniqueIndex:idx_members_project_user" json:"project_id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:idx_members_project_user;index" json:"user_id"`
	Role      Role      `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"-"`
	User    User    `gorm:"foreignKey:UserID" json:"-"`
}
