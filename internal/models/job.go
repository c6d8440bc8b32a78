package models

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusSubmitted JobStatus = "submitted"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// DetectionJob tracks one asynchronous video face detection run.
type DetectionJob struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	ObjectKey string    `json:"object_key" db:"object_key"`
	Status    JobStatus `json:"status" db:"status"`
	Error     string    `json:"error,omitempty" db:"error"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
