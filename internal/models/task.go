package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "To Do"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusDone       TaskStatus = "Done"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "Low"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityHigh   TaskPriority = "High"
)

type Task struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Title        string         `gorm:"type:varchar(100);not null" json:"title"`
	Description  string         `gorm:"type:varchar(1000);not null" json:"description"`
	Status       TaskStatus     `gorm:"type:varchar(20);not null;default:'To Do';index" json:"status"`
	Priority     TaskPriority   `gorm:"type:varchar(10);not null;default:'Low';index" json:"priority"`
	DueDate      time.Time      `gorm:"not null;index" json:"due_date"`
	AssignedToID uint64         `gorm:"not null;index" json:"assigned_to_id"`
	CreatedByID  uint64         `gorm:"not null;index" json:"created_by_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	AssignedTo        User       `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
	CreatedBy         User       `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	AttachedDocuments []Document `gorm:"foreignKey:TaskID" json:"attached_documents"`
}
