package models

import (
	"time"

	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectStatusLive     ProjectStatus = "LIVE"
	ProjectStatusBuilding ProjectStatus = "BUILDING"
)

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	return s == ProjectStatusLive || s == ProjectStatusBuilding
}

type Project struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Status      ProjectStatus  `gorm:"type:varchar(20);not null;default:'BUILDING'" json:"status"`
	OwnerID     uint64         `gorm:"not null;index" json:"owner_id"`
	IsPublic    bool           `gorm:"not null;default:false" json:"is_public"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Owner   User     `gorm:"foreignKey:OwnerID" json:"-"`
	Members []Member `gorm:"foreignKey:ProjectID" json:"-"`
	Tasks   []Task   `gorm:"foreignKey:ProjectID" json:"-"`
}
