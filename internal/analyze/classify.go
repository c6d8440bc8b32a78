package analyze

import (
	"path"
	"strings"

	"github.com/your-org/momentmaker/internal/models"
	"github.com/your-org/momentmaker/internal/storage"
)

// Classification routes one uploaded object key through the pipeline.
// Analyzable is false for pipeline output (face crops, assembled moments) and
// for keys outside the media layout; analyzing those would feed the pipeline
// its own products back.
type Classification struct {
	Kind       models.MediaKind
	UserID     string
	Analyzable bool
}

var extensionKinds = map[string]models.MediaKind{
	".jpg":  models.MediaKindImage,
	".jpeg": models.MediaKindImage,
	".png":  models.MediaKindImage,
	".gif":  models.MediaKindImage,
	".mp4":  models.MediaKindVideo,
	".avi":  models.MediaKindVideo,
	".mov":  models.MediaKindVideo,
	".mkv":  models.MediaKindVideo,
	".mp3":  models.MediaKindAudio,
}

// Classify inspects an object key of the form
// user-media/{user}/{segment}/{file}. The path segment decides the media
// kind; the file extension is only a fallback when the segment is unknown.
func Classify(key string) Classification {
	parts := strings.Split(key, "/")
	if len(parts) < 4 || parts[0] != storage.MediaPrefix {
		return Classification{}
	}

	userID := parts[1]
	if userID == "" {
		return Classification{}
	}

	switch parts[2] {
	case storage.FacesSegment, storage.MomentSegment:
		return Classification{UserID: userID}
	case storage.ImageSegment:
		return Classification{Kind: models.MediaKindImage, UserID: userID, Analyzable: true}
	case storage.VideoSegment:
		return Classification{Kind: models.MediaKindVideo, UserID: userID, Analyzable: true}
	case storage.AudioSegment:
		return Classification{Kind: models.MediaKindAudio, UserID: userID, Analyzable: true}
	}

	if kind, ok := extensionKinds[strings.ToLower(path.Ext(key))]; ok {
		return Classification{Kind: kind, UserID: userID, Analyzable: true}
	}
	return Classification{UserID: userID}
}
