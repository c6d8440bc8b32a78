package models

import (
	"time"

	"github.com/google/uuid"
)

type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
	MediaKindAudio MediaKind = "audio"
)

// MediaAsset is one uploaded photo, video or audio track. Immutable once
// registered.
type MediaAsset struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	Kind       MediaKind `json:"kind" db:"kind"`
	ObjectKey  string    `json:"object_key" db:"object_key"`
	UploadedAt time.Time `json:"uploaded_at" db:"uploaded_at"`
}

// Moment is an assembled highlight video. Duration never exceeds the budget
// the caller asked for.
type Moment struct {
	ID              uuid.UUID `json:"id" db:"id"`
	UserID          string    `json:"user_id" db:"user_id"`
	ObjectKey       string    `json:"object_key" db:"object_key"`
	DurationSeconds float64   `json:"duration_seconds" db:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
