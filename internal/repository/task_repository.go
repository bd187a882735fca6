package repository

import (
	"strings"

	"github.com/taskhub/taskhub-api/internal/database"
	"github.com/taskhub/taskhub-api/internal/models"
	"github.com/taskhub/taskhub-api/internal/utils"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// sortColumns whitelists API sort keys to their column names.
var sortColumns = map[string]string{
	"createdAt": "tasks.created_at",
	"dueDate":   "tasks.due_date",
	"priority":  "tasks.priority",
	"status":    "tasks.status",
	"title":     "tasks.title",
}

// Create creates a new task together with its attached documents
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering, sorting and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{})

	// The access restriction is ANDed with every caller-supplied filter.
	if filter.AccessibleToUserID != nil {
		query = query.Where("tasks.created_by_id = ? OR tasks.assigned_to_id = ?",
			*filter.AccessibleToUserID, *filter.AccessibleToUserID)
	}

	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.DueDateBefore != nil {
		query = query.Where("tasks.due_date < ?", *filter.DueDateBefore)
	}
	if filter.AssignedToID != nil {
		query = query.Where("tasks.assigned_to_id = ?", *filter.AssignedToID)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(tasks.title) LIKE ? OR LOWER(tasks.description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "tasks.created_at"
	}
	direction := "ASC"
	if strings.EqualFold(filter.SortOrder, "desc") {
		direction = "DESC"
	}

	listQuery := query.Order(column + " " + direction)

	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	err := listQuery.
		Preload("AssignedTo").
		Preload("CreatedBy").
		Preload("AttachedDocuments").
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update persists field changes on a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Omit("AttachedDocuments", "AssignedTo", "CreatedBy").Save(task).Error
}

// UpdateWithDocuments persists field changes, removes the given document rows
// and inserts the new ones in a single transaction
func (r *GormTaskRepository) UpdateWithDocuments(task *models.Task, removedDocIDs []uint64, newDocs []models.Document) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(removedDocIDs) > 0 {
			if err := tx.Where("task_id = ? AND id IN ?", task.ID, removedDocIDs).
				Delete(&models.Document{}).Error; err != nil {
				return err
			}
		}

		if len(newDocs) > 0 {
			for i := range newDocs {
				newDocs[i].TaskID = task.ID
			}
			if err := tx.Create(&newDocs).Error; err != nil {
				return err
			}
		}

		return tx.Omit("AttachedDocuments", "AssignedTo", "CreatedBy").Save(task).Error
	})
}

// Delete removes a task and hard-deletes its document rows
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.Document{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

// FindByDocumentStoredName locates the task owning the document with the
// given stored filename
func (r *GormTaskRepository) FindByDocumentStoredName(storedName string) (*models.Task, *models.Document, error) {
	var doc models.Document
	if err := r.db.Where("stored_name = ?", storedName).First(&doc).Error; err != nil {
		return nil, nil, err
	}

	var task models.Task
	if err := r.db.First(&task, doc.TaskID).Error; err != nil {
		return nil, nil, err
	}

	return &task, &doc, nil
}
