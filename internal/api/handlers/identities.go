package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/momentmaker/internal/faces"
	"github.com/your-org/momentmaker/internal/storage"
	"github.com/your-org/momentmaker/pkg/dto"
)

type IdentityHandler struct {
	db    *storage.PostgresStore
	minio *storage.MinIOStore
	index *faces.Index
}

func NewIdentityHandler(db *storage.PostgresStore, minio *storage.MinIOStore, index *faces.Index) *IdentityHandler {
	return &IdentityHandler{db: db, minio: minio, index: index}
}

// List returns every identity catalogued for a user. FaceID in the response
// is the canonical crop's object key, usable directly as a moment filter.
func (h *IdentityHandler) List(c *gin.Context) {
	userID := c.Query("userID")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userID is required"})
		return
	}

	identities, err := h.db.ListIdentities(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.IdentityResponse, 0, len(identities))
	for _, id := range identities {
		resp = append(resp, dto.IdentityResponse{
			ID:        id.ID,
			FaceID:    id.CropKey,
			CreatedAt: id.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}

	c.JSON(http.StatusOK, dto.IdentityListResponse{Identities: resp, Total: len(resp)})
}

// Occurrences lists where an identity has been seen. With no faceID it
// covers every identity of the user.
func (h *IdentityHandler) Occurrences(c *gin.Context) {
	userID := c.Query("userID")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userID is required"})
		return
	}

	var faceIDs []string
	if faceID := c.Query("faceID"); faceID != "" {
		faceIDs = []string{faceID}
	}

	occurrences, err := h.index.Lookup(c.Request.Context(), userID, faceIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.OccurrenceResponse, 0, len(occurrences))
	for _, occ := range occurrences {
		resp = append(resp, dto.OccurrenceResponse{
			FaceID:      occ.FaceKey,
			AssetKey:    occ.AssetKey,
			TimestampMS: occ.TimestampMS,
		})
	}

	c.JSON(http.StatusOK, dto.OccurrenceListResponse{Occurrences: resp, Total: len(resp)})
}

// Crop streams an identity's canonical face crop.
func (h *IdentityHandler) Crop(c *gin.Context) {
	faceID := c.Query("faceID")
	if faceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "faceID is required"})
		return
	}

	data, err := h.minio.GetObject(c.Request.Context(), faceID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "crop not found"})
		return
	}

	c.Data(http.StatusOK, "image/jpeg", data)
}
