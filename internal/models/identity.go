package models

import (
	"time"

	"github.com/google/uuid"
)

// Identity is a canonical, user-scoped face. CropKey points at the one
// representative face crop used for all future comparisons; it doubles as the
// identity reference in the occurrence index and the public API.
type Identity struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	CropKey   string    `json:"crop_key" db:"crop_key"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Occurrence records one appearance of an identity in one asset.
// TimestampMS is set only for faces found in video frames.
type Occurrence struct {
	FaceKey     string `json:"face_key"`
	AssetKey    string `json:"asset_key"`
	TimestampMS *int64 `json:"timestamp_ms,omitempty"`
}

// Location is the stored form of one occurrence inside a per-identity record.
type Location struct {
	AssetKey    string `json:"asset_key"`
	TimestampMS *int64 `json:"timestamp_ms,omitempty"`
}
