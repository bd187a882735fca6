package models

import "time"

// Document is a PDF attachment owned by a single task. Rows are hard-deleted
// when the owning task drops them; a document never outlives its task.
type Document struct {
	ID         uint64    `gorm:"primarykey" json:"id"`
	TaskID     uint64    `gorm:"not null;index" json:"task_id"`
	Filename   string    `gorm:"type:varchar(255);not null" json:"filename"`
	StoredName string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"stored_name"`
	Path       string    `gorm:"type:varchar(512);not null" json:"-"`
	Mimetype   string    `gorm:"type:varchar(100);not null" json:"mimetype"`
	CreatedAt  time.Time `json:"created_at"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"-"`
}
