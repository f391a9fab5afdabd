package models

import "time"

// InvitationCode is the single live join code of a project. Regenerating
// overwrites the row in place.
type InvitationCode struct {
	ProjectID uint64    `gorm:"primaryKey;autoIncrement:false" json:"project_id"`
	Code      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Expired reports whether the code is no longer usable at now.
func (c InvitationCode) Expired(now time.Time) bool {
	return c.ExpiresAt.Before(now)
}
