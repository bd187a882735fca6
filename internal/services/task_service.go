package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/taskhub/taskhub-api/internal/access"
	"github.com/taskhub/taskhub-api/internal/constants"
	"github.com/taskhub/taskhub-api/internal/models"
	"github.com/taskhub/taskhub-api/internal/repository"
	"github.com/taskhub/taskhub-api/internal/storage"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrViewForbidden        = errors.New("user is not allowed to view this task")
	ErrUpdateForbidden      = errors.New("only the task creator or an admin can modify this task")
	ErrDownloadForbidden    = errors.New("user is not allowed to download this document")
	ErrAssignedUserNotFound = errors.New("assigned user does not exist")
	ErrTooManyDocuments     = fmt.Errorf("a task cannot have more than %d attached documents", constants.MaxDocumentsPerTask)
	ErrDocumentNotFound     = errors.New("document not found")
	ErrFileMissingOnDisk    = errors.New("document file is missing from storage")
	ErrTitleRequired        = errors.New("title is required")
)

// UploadedFile is a newly uploaded blob already accepted onto storage by the
// HTTP layer (mimetype and size ceiling validated there).
type UploadedFile struct {
	OriginalName string
	StoredName   string
	Path         string
	Mimetype     string
}

// Download is a handle sufficient for the caller to stream a document back.
type Download struct {
	Path     string
	Filename string
}

// TaskService owns the task lifecycle: creation, field updates, attachment
// set reconciliation and cascading file cleanup on delete.
type TaskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	store    storage.Store
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, store storage.Store) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		store:    store,
	}
}

// ListTasksInput represents caller-supplied filters for listing tasks
type ListTasksInput struct {
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	DueDateBefore *time.Time
	AssignedToID  *uint64
	Search        string
	SortBy        string
	SortOrder     string
	Page          int
	PageSize      int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title        string
	Description  string
	Status       models.TaskStatus
	Priority     models.TaskPriority
	DueDate      time.Time
	AssignedToID uint64
}

// UpdateTaskInput represents input for updating a task. Only non-nil fields
// are applied. RetainedDocumentIDs lists the existing documents that survive
// the update; nil means none of them do.
type UpdateTaskInput struct {
	Title               *string
	Description         *string
	Status              *models.TaskStatus
	Priority            *models.TaskPriority
	DueDate             *time.Time
	AssignedToID        *uint64
	RetainedDocumentIDs []uint64
}

var taskPreloads = []string{"AssignedTo", "CreatedBy", "AttachedDocuments"}

// ListTasks returns tasks visible to the actor. Admins see the unfiltered
// set; everyone else is implicitly restricted to tasks they created or are
// assigned to, conjoined with the caller-supplied filters.
func (s *TaskService) ListTasks(actor access.Actor, input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		Status:             input.Status,
		Priority:           input.Priority,
		DueDateBefore:      input.DueDateBefore,
		AssignedToID:       input.AssignedToID,
		Search:             input.Search,
		AccessibleToUserID: access.ListScopeUserID(actor),
		SortBy:             input.SortBy,
		SortOrder:          input.SortOrder,
		Page:               input.Page,
		PageSize:           input.PageSize,
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task with related data if the actor may view it
func (s *TaskService) GetTask(taskID uint64, actor access.Actor) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, taskPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !access.CanView(actor, task) {
		return nil, ErrViewForbidden
	}

	return task, nil
}

// CreateTask creates a new task with attachments built from the uploaded
// files. CreatedBy is always the actor, regardless of any client-sent value.
// The attachment cap holds here too, not just at the HTTP boundary. On any
// rejection every accepted blob is discarded from storage before the error is
// returned.
func (s *TaskService) CreateTask(actor access.Actor, input CreateTaskInput, uploads []UploadedFile) (*models.Task, error) {
	if input.Title == "" {
		s.discardUploads(uploads)
		return nil, ErrTitleRequired
	}

	if len(uploads) > constants.MaxDocumentsPerTask {
		s.discardUploads(uploads)
		return nil, ErrTooManyDocuments
	}

	exists, err := s.userRepo.Exists(input.AssignedToID)
	if err != nil {
		s.discardUploads(uploads)
		return nil, fmt.Errorf("failed to verify assignee: %w", err)
	}
	if !exists {
		s.discardUploads(uploads)
		return nil, ErrAssignedUserNotFound
	}

	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityLow
	}

	task := &models.Task{
		Title:             input.Title,
		Description:       input.Description,
		Status:            input.Status,
		Priority:          input.Priority,
		DueDate:           input.DueDate,
		AssignedToID:      input.AssignedToID,
		CreatedByID:       actor.ID,
		AttachedDocuments: buildDocuments(uploads),
	}

	if err := s.taskRepo.Create(task); err != nil {
		s.discardUploads(uploads)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// UpdateTask applies field changes and reconciles the attachment set against
// the retain set and the newly uploaded files.
//
// Ordering is load-bearing: orphaned files are deleted before the cap check,
// and deletions already committed are NOT undone when a later step fails.
// There is no optimistic-concurrency token; callers needing protection
// against concurrent updates of one task must serialize them per task id.
func (s *TaskService) UpdateTask(taskID uint64, actor access.Actor, input UpdateTaskInput, uploads []UploadedFile) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "AttachedDocuments")
	if err != nil {
		s.discardUploads(uploads)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !access.CanUpdate(actor, task) {
		s.discardUploads(uploads)
		return nil, ErrUpdateForbidden
	}

	// Set-difference over stable document ids, never positional. The task's
	// stored paths are authoritative; client-supplied paths are ignored.
	retained := make(map[uint64]struct{}, len(input.RetainedDocumentIDs))
	for _, id := range input.RetainedDocumentIDs {
		retained[id] = struct{}{}
	}

	var toKeep []models.Document
	var removedIDs []uint64
	for _, doc := range task.AttachedDocuments {
		if _, ok := retained[doc.ID]; ok {
			toKeep = append(toKeep, doc)
			continue
		}
		removedIDs = append(removedIDs, doc.ID)
		if err := s.store.Remove(doc.Path); err != nil {
			s.discardUploads(uploads)
			return nil, fmt.Errorf("failed to remove document file: %w", err)
		}
	}

	newDocs := buildDocuments(uploads)

	if len(toKeep)+len(newDocs) > constants.MaxDocumentsPerTask {
		s.discardUploads(uploads)
		return nil, ErrTooManyDocuments
	}

	if input.AssignedToID != nil && *input.AssignedToID != task.AssignedToID {
		exists, err := s.userRepo.Exists(*input.AssignedToID)
		if err != nil {
			s.discardUploads(uploads)
			return nil, fmt.Errorf("failed to verify assignee: %w", err)
		}
		if !exists {
			s.discardUploads(uploads)
			return nil, ErrAssignedUserNotFound
		}
	}

	if input.Title != nil {
		if *input.Title == "" {
			s.discardUploads(uploads)
			return nil, ErrTitleRequired
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = *input.DueDate
	}
	if input.AssignedToID != nil {
		task.AssignedToID = *input.AssignedToID
	}
	// CreatedByID is never touched by updates.

	// Field-only updates skip the document transaction.
	if len(removedIDs) == 0 && len(newDocs) == 0 {
		err = s.taskRepo.Update(task)
	} else {
		err = s.taskRepo.UpdateWithDocuments(task, removedIDs, newDocs)
	}
	if err != nil {
		s.discardUploads(uploads)
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// DeleteTask deletes a task and every file its documents reference. File
// cleanup runs before the record delete; missing files are tolerated.
func (s *TaskService) DeleteTask(taskID uint64, actor access.Actor) error {
	task, err := s.taskRepo.FindByID(taskID, "AttachedDocuments")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if !access.CanDelete(actor, task) {
		return ErrUpdateForbidden
	}

	for _, doc := range task.AttachedDocuments {
		if err := s.store.Remove(doc.Path); err != nil {
			return fmt.Errorf("failed to remove document file: %w", err)
		}
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// ResolveDocumentForDownload locates the task owning the stored filename and
// returns a download handle if the actor may view that task. A filename no
// task references does not exist from the API's perspective, whatever the
// filesystem holds.
func (s *TaskService) ResolveDocumentForDownload(storedName string, actor access.Actor) (*Download, error) {
	task, doc, err := s.taskRepo.FindByDocumentStoredName(storedName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to locate document: %w", err)
	}

	if !access.CanDownload(actor, task) {
		return nil, ErrDownloadForbidden
	}

	if !s.store.Exists(doc.Path) {
		return nil, ErrFileMissingOnDisk
	}

	return &Download{
		Path:     doc.Path,
		Filename: doc.Filename,
	}, nil
}

// buildDocuments converts accepted uploads 1:1 into document records.
func buildDocuments(uploads []UploadedFile) []models.Document {
	docs := make([]models.Document, len(uploads))
	for i, f := range uploads {
		docs[i] = models.Document{
			Filename:   f.OriginalName,
			StoredName: f.StoredName,
			Path:       f.Path,
			Mimetype:   f.Mimetype,
		}
	}
	return docs
}

// discardUploads removes files accepted onto storage during a request that is
// being rejected, so no orphaned files survive it.
func (s *TaskService) discardUploads(uploads []UploadedFile) {
	for _, f := range uploads {
		_ = s.store.Remove(f.Path)
	}
}
