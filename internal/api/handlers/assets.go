package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/your-org/momentmaker/internal/models"
	"github.com/your-org/momentmaker/internal/queue"
	"github.com/your-org/momentmaker/internal/storage"
	"github.com/your-org/momentmaker/pkg/dto"
)

type AssetHandler struct {
	db       *storage.PostgresStore
	minio    *storage.MinIOStore
	producer *queue.Producer
}

func NewAssetHandler(db *storage.PostgresStore, minio *storage.MinIOStore, producer *queue.Producer) *AssetHandler {
	return &AssetHandler{db: db, minio: minio, producer: producer}
}

// List returns the user's registered media assets.
func (h *AssetHandler) List(c *gin.Context) {
	userID := c.Query("userID")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userID is required"})
		return
	}

	assets, err := h.db.ListAssets(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.AssetResponse, 0, len(assets))
	for _, a := range assets {
		resp = append(resp, dto.AssetResponse{
			ID:         a.ID,
			Kind:       string(a.Kind),
			ObjectKey:  a.ObjectKey,
			UploadedAt: a.UploadedAt.Format("2006-01-02T15:04:05Z"),
		})
	}

	c.JSON(http.StatusOK, dto.AssetListResponse{Assets: resp, Total: len(resp)})
}

// Songs lists the audio tracks the user has uploaded, by name, for use as
// moment backing tracks.
func (h *AssetHandler) Songs(c *gin.Context) {
	userID := c.Query("userID")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userID is required"})
		return
	}

	prefix := storage.MediaPrefixFor(userID, storage.AudioSegment)
	keys, err := h.minio.ListObjects(c.Request.Context(), prefix)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	songs := make([]string, 0, len(keys))
	for _, key := range keys {
		name := strings.TrimPrefix(key, prefix)
		name = strings.TrimSuffix(name, ".mp3")
		if name != "" {
			songs = append(songs, name)
		}
	}

	c.JSON(http.StatusOK, gin.H{"songs": songs, "total": len(songs)})
}

// Event is the upload-notification ingress: bucket hooks (or the uploader
// itself) post here and the signal is queued for the analysis worker. The
// object must already exist; queueing a signal for a missing object would
// just burn worker retries.
func (h *AssetHandler) Event(c *gin.Context) {
	var req dto.UploadEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Bucket == "" {
		req.Bucket = h.minio.Bucket()
	}

	if _, err := h.minio.StatObject(c.Request.Context(), req.Key); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "object not found"})
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = "unknown"
	}

	signal := models.UploadSignal{
		Bucket: req.Bucket,
		Key:    req.Key,
		UserID: req.UserID,
	}
	if err := h.producer.PublishUpload(c.Request.Context(), userID, signal); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
