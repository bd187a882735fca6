package handlers

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/taskhub/taskhub-api/internal/errors"
	"github.com/taskhub/taskhub-api/internal/middleware"
	"github.com/taskhub/taskhub-api/internal/services"
)

// DocumentHandler serves attachment downloads.
type DocumentHandler struct {
	taskService *services.TaskService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(taskService *services.TaskService) *DocumentHandler {
	return &DocumentHandler{
		taskService: taskService,
	}
}

// Download streams a document if the actor may view its owning task. The
// response carries the original upload name, not the stored one.
func (h *DocumentHandler) Download(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	download, err := h.taskService.ResolveDocumentForDownload(c.Param("filename"), actor)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.FileAttachment(download.Path, download.Filename)
}
