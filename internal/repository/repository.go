package repository

import (
	"time"

	"github.com/taskhub/taskhub-api/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task together with its attached documents
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering, sorting and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update persists field changes on a task
	Update(task *models.Task) error

	// UpdateWithDocuments persists field changes, removes the given document
	// rows and inserts the new ones in a single transaction
	UpdateWithDocuments(task *models.Task, removedDocIDs []uint64, newDocs []models.Document) error

	// Delete removes a task and hard-deletes its document rows
	Delete(id uint64) error

	// FindByDocumentStoredName locates the task owning the document with the
	// given stored filename, returning both
	FindByDocumentStoredName(storedName string) (*models.Task, *models.Document, error)
}

// TaskFilter holds filtering options for listing tasks. AccessibleToUserID is
// the implicit creator-or-assignee restriction for non-admin actors; it is
// conjoined with all other filters.
type TaskFilter struct {
	Status             *models.TaskStatus
	Priority           *models.TaskPriority
	DueDateBefore      *time.Time
	AssignedToID       *uint64
	Search             string
	AccessibleToUserID *uint64
	SortBy             string
	SortOrder          string
	Page               int
	PageSize           int
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// List returns all users
	List() ([]models.User, error)

	// Update persists changes on a user
	Update(user *models.User) error

	// Delete removes a user
	Delete(id uint64) error

	// Exists reports whether a user with the given ID exists
	Exists(id uint64) (bool, error)
}
