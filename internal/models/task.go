package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusToDo       TaskStatus = "TO_DO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
	TaskStatusCanceled   TaskStatus = "CANCELED"
)

var TaskStatuses = []TaskStatus{TaskStatusToDo, TaskStatusInProgress, TaskStatusDone, TaskStatusCanceled}

func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

var TaskPriorities = []TaskPriority{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh}

func (p TaskPriority) Valid() bool {
	for _, v := range TaskPriorities {
		if p == v {
			return true
		}
	}
	return false
}

type TaskLabel string

const (
	TaskLabelBug           TaskLabel = "BUG"
	TaskLabelFeature       TaskLabel = "FEATURE"
	TaskLabelDocumentation TaskLabel = "DOCUMENTATION"
)

var TaskLabels = []TaskLabel{TaskLabelBug, TaskLabelFeature, TaskLabelDocumentation}

func (l TaskLabel) Valid() bool {
	for _, v := range TaskLabels {
		if l == v {
			return true
		}
	}
	return false
}

type Task struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Label       TaskLabel      `gorm:"type:varchar(20);not null;default:'FEATURE'" json:"label"`
	Status      TaskStatus     `gorm:"type:varchar(20);not null;default:'TO_DO';index" json:"status"`
	Priority    TaskPriority   `gorm:"type:varchar(20);not null;default:'MEDIUM'" json:"priority"`
	DueDate     *time.Time     `gorm:"index" json:"due_date"`
	ProjectID   uint64         `gorm:"not null;index" json:"project_id"`
	MemberID    *uint64        `gorm:"index" json:"member_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Project  Project `gorm:"foreignKey:ProjectID" json:"-"`
	Assignee *Member `gorm:"foreignKey:MemberID" json:"-"`
}
