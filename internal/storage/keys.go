package storage

import (
	"fmt"

	"github.com/google/uuid"
)

// Object key layout. Face crops and moments live under their own path
// segments so the classifier never re-analyzes pipeline output.
const (
	MediaPrefix   = "user-media"
	FacesSegment  = "faces"
	MomentSegment = "moments"
	ImageSegment  = "image"
	VideoSegment  = "video"
	AudioSegment  = "audio"
)

// FaceCropKey builds the storage key for a new canonical face crop.
func FaceCropKey(userID string) string {
	return fmt.Sprintf("%s/%s/%s/%s.jpg", MediaPrefix, userID, FacesSegment, uuid.New().String())
}

// MomentKey builds the storage key for an assembled moment.
func MomentKey(userID, fileName string) string {
	return fmt.Sprintf("%s/%s/%s/%s", MediaPrefix, userID, MomentSegment, fileName)
}

// SongKey resolves a song name to its audio object key.
func SongKey(userID, song string) string {
	return fmt.Sprintf("%s/%s/%s/%s.mp3", MediaPrefix, userID, AudioSegment, song)
}

// JobFacesKey builds the storage key for a detection job's face list.
func JobFacesKey(jobID uuid.UUID) string {
	return fmt.Sprintf("jobs/%s/faces.json", jobID)
}

// MediaPrefixFor returns the listing prefix for one media kind of one user.
func MediaPrefixFor(userID, segment string) string {
	return fmt.Sprintf("%s/%s/%s/", MediaPrefix, userID, segment)
}
