package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/momentmaker/internal/moment"
	"github.com/your-org/momentmaker/internal/storage"
	"github.com/your-org/momentmaker/pkg/dto"
)

type MomentHandler struct {
	db      *storage.PostgresStore
	minio   *storage.MinIOStore
	moments *moment.Service
}

func NewMomentHandler(db *storage.PostgresStore, minio *storage.MinIOStore, moments *moment.Service) *MomentHandler {
	return &MomentHandler{db: db, minio: minio, moments: moments}
}

// Create assembles a moment synchronously and reports where it landed.
// Accepts both JSON bodies and query parameters so a browser link works too.
func (h *MomentHandler) Create(c *gin.Context) {
	req, ok := h.parseRequest(c)
	if !ok {
		return
	}

	m, err := h.moments.CreateMoment(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, moment.ErrNoMedia):
			c.JSON(http.StatusNotFound, gin.H{"error": "no media uploaded for this user"})
		case errors.Is(err, moment.ErrNoOccurrences):
			c.JSON(http.StatusNotFound, gin.H{"error": "no media matches the requested faces"})
		case errors.Is(err, moment.ErrEmptyAssembly):
			c.JSON(http.StatusNotFound, gin.H{"error": "nothing to assemble"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, dto.MomentResponse{
		Message: "moment created",
		File:    m.ObjectKey,
	})
}

func (h *MomentHandler) parseRequest(c *gin.Context) (moment.Request, bool) {
	var in dto.MomentRequest

	if c.Request.Method == http.MethodPost && c.ContentType() == "application/json" {
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return moment.Request{}, false
		}
	} else {
		in.UserID = c.Query("userID")
		in.Song = c.Query("song")
		in.FaceIDs = c.QueryArray("faceID")
		if v := c.Query("timeLimit"); v != "" {
			limit, err := strconv.Atoi(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timeLimit"})
				return moment.Request{}, false
			}
			in.TimeLimit = &limit
		}
	}

	if in.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userID is required"})
		return moment.Request{}, false
	}
	if in.TimeLimit == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "timeLimit is required"})
		return moment.Request{}, false
	}

	// Support comma-separated faceID values alongside repeated parameters.
	var faceIDs []string
	for _, raw := range in.FaceIDs {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				faceIDs = append(faceIDs, id)
			}
		}
	}

	return moment.Request{
		UserID:    in.UserID,
		FaceIDs:   faceIDs,
		TimeLimit: *in.TimeLimit,
		Song:      in.Song,
	}, true
}

// List returns the user's previously assembled moments.
func (h *MomentHandler) List(c *gin.Context) {
	userID := c.Query("userID")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userID is required"})
		return
	}

	moments, err := h.db.ListMoments(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.MomentSummary, 0, len(moments))
	for _, m := range moments {
		resp = append(resp, dto.MomentSummary{
			ID:              m.ID,
			ObjectKey:       m.ObjectKey,
			DurationSeconds: m.DurationSeconds,
			CreatedAt:       m.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}

	c.JSON(http.StatusOK, dto.MomentListResponse{Moments: resp, Total: len(resp)})
}

// Download streams an assembled moment video.
func (h *MomentHandler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid moment id"})
		return
	}

	m, err := h.db.GetMoment(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if m == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "moment not found"})
		return
	}

	data, err := h.minio.GetObject(c.Request.Context(), m.ObjectKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "video/mp4", data)
}
