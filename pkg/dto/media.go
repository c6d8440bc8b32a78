package dto

import "github.com/google/uuid"

type AssetResponse struct {
	ID         uuid.UUID `json:"id"`
	Kind       string    `json:"kind"`
	ObjectKey  string    `json:"object_key"`
	UploadedAt string    `json:"uploaded_at"`
}

type AssetListResponse struct {
	Assets []AssetResponse `json:"assets"`
	Total  int             `json:"total"`
}

// UploadEventRequest is the storage-notification ingress: it reports that an
// object landed in the media bucket and should enter the pipeline.
type UploadEventRequest struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key" binding:"required"`
	UserID string `json:"userId"`
}

type IdentityResponse struct {
	ID        uuid.UUID `json:"id"`
	FaceID    string    `json:"faceId"`
	CreatedAt string    `json:"created_at"`
}

type IdentityListResponse struct {
	Identities []IdentityResponse `json:"identities"`
	Total      int                `json:"total"`
}

type OccurrenceResponse struct {
	FaceID      string `json:"faceId"`
	AssetKey    string `json:"asset_key"`
	TimestampMS *int64 `json:"timestamp_ms,omitempty"`
}

type OccurrenceListResponse struct {
	Occurrences []OccurrenceResponse `json:"occurrences"`
	Total       int                  `json:"total"`
}

// WSEvent is a WebSocket message for real-time pipeline notifications.
type WSEvent struct {
	Type   string         `json:"type"` // identity_created, face_indexed, job_succeeded, job_failed, moment_ready
	UserID string         `json:"user_id"`
	Data   map[string]any `json:"data,omitempty"`
}
