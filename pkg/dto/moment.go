package dto

import "github.com/google/uuid"

// MomentRequest describes one moment to assemble. FaceIDs are canonical crop
// keys; an empty list selects every photo and video the user has. TimeLimit
// is the duration budget in seconds and must be supplied.
type MomentRequest struct {
	UserID    string   `json:"userID" form:"userID"`
	FaceIDs   []string `json:"faceIDs" form:"faceID"`
	TimeLimit *int     `json:"timeLimit" form:"timeLimit"`
	Song      string   `json:"song" form:"song"`
}

// MomentResponse reports a finished assembly.
type MomentResponse struct {
	Message string `json:"message"`
	File    string `json:"file"`
}

type MomentSummary struct {
	ID              uuid.UUID `json:"id"`
	ObjectKey       string    `json:"object_key"`
	DurationSeconds float64   `json:"duration_seconds"`
	CreatedAt       string    `json:"created_at"`
}

type MomentListResponse struct {
	Moments []MomentSummary `json:"moments"`
	Total   int             `json:"total"`
}
