package dto

import (
	"time"

	"github.com/taskhub/taskhub-api/internal/models"
)

// UserDTO is the minimal user projection embedded in task responses.
type UserDTO struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
}

// DocumentDTO represents an attachment in API responses. The storage path is
// deliberately absent: consumers address documents by stored name only.
type DocumentDTO struct {
	ID         uint64 `json:"id"`
	Filename   string `json:"filename"`
	StoredName string `json:"stored_name"`
	Mimetype   string `json:"mimetype"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID                uint64              `json:"id"`
	Title             string              `json:"title"`
	Description       string              `json:"description"`
	Status            models.TaskStatus   `json:"status"`
	Priority          models.TaskPriority `json:"priority"`
	DueDate           time.Time           `json:"due_date"`
	AssignedToID      uint64              `json:"assigned_to_id"`
	CreatedByID       uint64              `json:"created_by_id"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	AssignedTo        *UserDTO            `json:"assigned_to,omitempty"`
	CreatedBy         *UserDTO            `json:"created_by,omitempty"`
	AttachedDocuments []DocumentDTO       `json:"attached_documents"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		Email: user.Email,
	}
}

// ToDocumentDTO converts a Document model to DocumentDTO
func ToDocumentDTO(doc models.Document) DocumentDTO {
	return DocumentDTO{
		ID:         doc.ID,
		Filename:   doc.Filename,
		StoredName: doc.StoredName,
		Mimetype:   doc.Mimetype,
	}
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		Status:       task.Status,
		Priority:     task.Priority,
		DueDate:      task.DueDate,
		AssignedToID: task.AssignedToID,
		CreatedByID:  task.CreatedByID,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}

	// Include projections if preloaded
	if task.AssignedTo.ID != 0 {
		assignee := ToUserDTO(task.AssignedTo)
		dto.AssignedTo = &assignee
	}
	if task.CreatedBy.ID != 0 {
		creator := ToUserDTO(task.CreatedBy)
		dto.CreatedBy = &creator
	}

	dto.AttachedDocuments = make([]DocumentDTO, len(task.AttachedDocuments))
	for i, doc := range task.AttachedDocuments {
		dto.AttachedDocuments[i] = ToDocumentDTO(doc)
	}

	return dto
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, page, pageSize int, totalCount int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	totalPages := int(totalCount) / pageSize
	if int(totalCount)%pageSize > 0 {
		totalPages++
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
