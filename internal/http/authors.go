package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/catalog/internal/database/authors"
	"github.com/mrlokans/catalog/internal/tasks"
)

// AuthorStore lists authors and removes the ones without books.
type AuthorStore interface {
	List(ctx context.Context) ([]authors.Summary, error)
	DeleteOrphans(ctx context.Context) (int64, error)
}

// TaskEnqueuer hands work to the background task queue.
type TaskEnqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

type AuthorsController struct {
	store AuthorStore
	tasks TaskEnqueuer
}

// NewAuthorsController creates a controller. taskQueue may be nil, in which
// case the cleanup runs inside the request.
func NewAuthorsController(store AuthorStore, taskQueue TaskEnqueuer) *AuthorsController {
	return &AuthorsController{store: store, tasks: taskQueue}
}

// ListAuthors handles GET /api/v1/authors
func (ac *AuthorsController) ListAuthors(c *gin.Context) {
	summaries, err := ac.store.List(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list authors")
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// CleanupOrphanAuthors handles POST /api/v1/admin/authors/cleanup
// Removes authors left without books by earlier updates.
func (ac *AuthorsController) CleanupOrphanAuthors(c *gin.Context) {
	if ac.tasks != nil {
		id, err := ac.tasks.Enqueue(tasks.CleanupOrphanAuthorsTask{})
		if err != nil {
			respondInternalError(c, err, "enqueue cleanup task")
			return
		}
		respondAccepted(c, "cleanup task started", gin.H{"task_id": id})
		return
	}

	deleted, err := ac.store.DeleteOrphans(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "cleanup orphan authors")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Message: "orphaned authors removed",
		Data:    gin.H{"deleted": deleted},
	})
}
