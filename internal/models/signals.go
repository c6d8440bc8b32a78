package models

import "github.com/google/uuid"

// UploadSignal is the asset-uploaded message consumed by the worker.
// Mirrors the object storage notification shape.
type UploadSignal struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	UserID string `json:"userId,omitempty"`
}

// JobTask asks the worker to run face detection across one whole video.
type JobTask struct {
	JobID  uuid.UUID `json:"job_id"`
	UserID string    `json:"user_id"`
	Bucket string    `json:"bucket"`
	Key    string    `json:"key"`
}

// VideoRef identifies the analyzed video inside a completion signal.
type VideoRef struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// JobCompletion is the completion signal emitted when an asynchronous video
// detection job reaches a terminal state.
type JobCompletion struct {
	Status JobStatus `json:"status"` // succeeded or failed
	JobID  uuid.UUID `json:"jobId"`
	UserID string    `json:"user_id"`
	Video  VideoRef  `json:"video"`
	Error  string    `json:"error,omitempty"`
}
