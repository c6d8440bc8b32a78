package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/momentmaker/internal/storage"
)

type JobHandler struct {
	db *storage.PostgresStore
}

func NewJobHandler(db *storage.PostgresStore) *JobHandler {
	return &JobHandler{db: db}
}

// Get reports the state of one video detection job.
func (h *JobHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	job, err := h.db.GetJob(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         job.ID,
		"status":     job.Status,
		"object_key": job.ObjectKey,
		"error":      job.Error,
		"created_at": job.CreatedAt.Format("2006-01-02T15:04:05Z"),
		"updated_at": job.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	})
}
