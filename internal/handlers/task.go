package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/taskhub/taskhub-api/internal/access"
	"github.com/taskhub/taskhub-api/internal/constants"
	"github.com/taskhub/taskhub-api/internal/dto"
	apierrors "github.com/taskhub/taskhub-api/internal/errors"
	"github.com/taskhub/taskhub-api/internal/middleware"
	"github.com/taskhub/taskhub-api/internal/models"
	"github.com/taskhub/taskhub-api/internal/services"
	"github.com/taskhub/taskhub-api/internal/storage"
	"github.com/taskhub/taskhub-api/internal/utils"
)

// TaskHandler coordinates task-related HTTP handlers. It owns multipart
// validation (mimetype, size ceiling, file count) before anything reaches the
// task service.
type TaskHandler struct {
	taskService   *services.TaskService
	store         storage.Store
	maxUploadSize int64
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService, store storage.Store, maxUploadSize int64) *TaskHandler {
	return &TaskHandler{
		taskService:   taskService,
		store:         store,
		maxUploadSize: maxUploadSize,
	}
}

// ListTasks returns tasks visible to the current user with filtering, search,
// sorting and pagination.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	input := services.ListTasksInput{
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if v := c.Query("status"); v != "" {
		status := models.TaskStatus(v)
		input.Status = &status
	}
	if v := c.Query("priority"); v != "" {
		priority := models.TaskPriority(v)
		input.Priority = &priority
	}
	if v := c.Query("due_before"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_before date")
			return
		}
		input.DueDateBefore = &t
	}
	if v := c.Query("assigned_to"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid assigned_to")
			return
		}
		input.AssignedToID = &id
	}

	params := utils.GetPaginationParams(c)
	input.Page = params.Page
	input.PageSize = params.Limit

	tasks, total, err := h.taskService.ListTasks(actor, input)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params.Page, params.Limit, total))
}

// GetTask returns a specific task by ID.
func (h *TaskHandler) GetTask(c *gin.Context) {
	actor, taskID, ok := h.actorAndTaskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(taskID, actor)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task from a multipart form, with up to three PDF
// attachments under the "files" field.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	title := c.PostForm("title")
	description := c.PostForm("description")
	if err := validateTextFields(title, description, true); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	dueDate, err := parseDate(c.PostForm("due_date"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid or missing due_date")
		return
	}

	assignedTo, err := strconv.ParseUint(c.PostForm("assigned_to"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid or missing assigned_to")
		return
	}

	uploads, ok := h.acceptUploads(c)
	if !ok {
		return
	}

	task, err := h.taskService.CreateTask(actor, services.CreateTaskInput{
		Title:        title,
		Description:  description,
		Status:       models.TaskStatus(c.PostForm("status")),
		Priority:     models.TaskPriority(c.PostForm("priority")),
		DueDate:      dueDate,
		AssignedToID: assignedTo,
	}, uploads)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update from a multipart form. Existing
// documents survive only if listed in the "documents" field; omitting the
// field drops all of them.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actor, taskID, ok := h.actorAndTaskID(c)
	if !ok {
		return
	}

	var input services.UpdateTaskInput

	if v, ok := c.GetPostForm("title"); ok {
		input.Title = &v
	}
	if v, ok := c.GetPostForm("description"); ok {
		input.Description = &v
	}
	title, description := "", ""
	if input.Title != nil {
		title = *input.Title
	}
	if input.Description != nil {
		description = *input.Description
	}
	if err := validateTextFields(title, description, false); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	if v, ok := c.GetPostForm("status"); ok {
		status := models.TaskStatus(v)
		input.Status = &status
	}
	if v, ok := c.GetPostForm("priority"); ok {
		priority := models.TaskPriority(v)
		input.Priority = &priority
	}
	if v, ok := c.GetPostForm("due_date"); ok {
		t, err := parseDate(v)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_date")
			return
		}
		input.DueDate = &t
	}
	if v, ok := c.GetPostForm("assigned_to"); ok {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid assigned_to")
			return
		}
		input.AssignedToID = &id
	}

	retained, err := parseRetainedDocuments(c)
	if err != nil {
		apierrors.BadRequest(c, "Invalid documents field")
		return
	}
	input.RetainedDocumentIDs = retained

	uploads, ok := h.acceptUploads(c)
	if !ok {
		return
	}

	task, err := h.taskService.UpdateTask(taskID, actor, input, uploads)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task and its attachments.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, taskID, ok := h.actorAndTaskID(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(taskID, actor); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// actorAndTaskID pulls the authenticated actor and the :id route parameter.
func (h *TaskHandler) actorAndTaskID(c *gin.Context) (actor access.Actor, taskID uint64, ok bool) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return actor, 0, false
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return actor, 0, false
	}

	return actor, taskID, true
}

// acceptUploads validates and stores the request's new files. On a rejected
// file, everything already stored for this request is removed again.
func (h *TaskHandler) acceptUploads(c *gin.Context) ([]services.UploadedFile, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		apierrors.BadRequest(c, "Invalid multipart form")
		return nil, false
	}

	files := form.File["files"]
	if len(files) > constants.MaxDocumentsPerTask {
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeTooManyDocuments,
			fmt.Sprintf("At most %d documents can be uploaded", constants.MaxDocumentsPerTask))
		return nil, false
	}

	uploads := make([]services.UploadedFile, 0, len(files))
	reject := func(code, message string) ([]services.UploadedFile, bool) {
		for _, u := range uploads {
			_ = h.store.Remove(u.Path)
		}
		apierrors.BadRequestWithCode(c, code, message)
		return nil, false
	}

	for _, file := range files {
		if !isPDF(file) {
			return reject(apierrors.ErrCodeInvalidInput, "Only PDF files are allowed")
		}
		if file.Size > h.maxUploadSize {
			return reject(apierrors.ErrCodeInvalidInput, "File exceeds the maximum upload size")
		}

		storedName, path, err := h.store.Save(c, file)
		if err != nil {
			return reject(apierrors.ErrCodeInternalError, "Failed to store uploaded file")
		}

		uploads = append(uploads, services.UploadedFile{
			OriginalName: file.Filename,
			StoredName:   storedName,
			Path:         path,
			Mimetype:     constants.PDFMimeType,
		})
	}

	return uploads, true
}

func isPDF(file *multipart.FileHeader) bool {
	return file.Header.Get("Content-Type") == constants.PDFMimeType
}

// parseRetainedDocuments reads the "documents" form field: a JSON array of
// either document ids or objects carrying an id. An absent field means no
// existing document is retained.
func parseRetainedDocuments(c *gin.Context) ([]uint64, error) {
	raw, exists := c.GetPostForm("documents")
	if !exists || raw == "" {
		return nil, nil
	}

	var ids []uint64
	if err := json.Unmarshal([]byte(raw), &ids); err == nil {
		return ids, nil
	}

	var objs []struct {
		ID uint64 `json:"id"`
	}
	if err := json.Unmarshal([]byte(raw), &objs); err != nil {
		return nil, err
	}

	ids = make([]uint64, len(objs))
	for i, o := range objs {
		ids[i] = o.ID
	}
	return ids, nil
}

func validateTextFields(title, description string, required bool) error {
	if required && title == "" {
		return errors.New("title is required")
	}
	if required && description == "" {
		return errors.New("description is required")
	}
	// Limits are in characters, not bytes.
	if utf8.RuneCountInString(title) > constants.MaxTitleLength {
		return fmt.Errorf("title must be at most %d characters", constants.MaxTitleLength)
	}
	if utf8.RuneCountInString(description) > constants.MaxDescriptionLength {
		return fmt.Errorf("description must be at most %d characters", constants.MaxDescriptionLength)
	}
	return nil
}

// parseDate accepts RFC3339 timestamps and plain dates.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrDocumentNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrFileMissingOnDisk):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrViewForbidden),
		errors.Is(err, services.ErrUpdateForbidden),
		errors.Is(err, services.ErrDownloadForbidden):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrAssignedUserNotFound):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeInvalidAssignee, err.Error())
	case errors.Is(err, services.ErrTooManyDocuments):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeTooManyDocuments, err.Error())
	case errors.Is(err, services.ErrTitleRequired):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
