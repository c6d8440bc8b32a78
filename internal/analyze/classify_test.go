package analyze

import (
	"testing"

	"github.com/your-org/momentmaker/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		kind       models.MediaKind
		userID     string
		analyzable bool
	}{
		{
			name:       "image by segment",
			key:        "user-media/u1/image/photo.jpg",
			kind:       models.MediaKindImage,
			userID:     "u1",
			analyzable: true,
		},
		{
			name:       "video by segment",
			key:        "user-media/u1/video/clip.mp4",
			kind:       models.MediaKindVideo,
			userID:     "u1",
			analyzable: true,
		},
		{
			name:       "audio by segment",
			key:        "user-media/u1/audio/song.mp3",
			kind:       models.MediaKindAudio,
			userID:     "u1",
			analyzable: true,
		},
		{
			name:   "face crop never re-enters the pipeline",
			key:    "user-media/u1/faces/abc.jpg",
			userID: "u1",
		},
		{
			name:   "assembled moment never re-enters the pipeline",
			key:    "user-media/u1/moments/final_video_x.mp4",
			userID: "u1",
		},
		{
			name:       "unknown segment falls back to extension",
			key:        "user-media/u1/misc/pic.jpeg",
			kind:       models.MediaKindImage,
			userID:     "u1",
			analyzable: true,
		},
		{
			name:       "extension fallback is case insensitive",
			key:        "user-media/u1/misc/CLIP.MOV",
			kind:       models.MediaKindVideo,
			userID:     "u1",
			analyzable: true,
		},
		{
			name:   "unknown segment and extension",
			key:    "user-media/u1/misc/data.bin",
			userID: "u1",
		},
		{
			name: "outside media prefix",
			key:  "jobs/xyz/faces.json",
		},
		{
			name: "too shallow",
			key:  "user-media/u1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.key)
			if got.Analyzable != tc.analyzable {
				t.Errorf("Classify(%q).Analyzable = %v; want %v", tc.key, got.Analyzable, tc.analyzable)
			}
			if got.Kind != tc.kind {
				t.Errorf("Classify(%q).Kind = %q; want %q", tc.key, got.Kind, tc.kind)
			}
			if got.UserID != tc.userID {
				t.Errorf("Classify(%q).UserID = %q; want %q", tc.key, got.UserID, tc.userID)
			}
		})
	}
}

func TestFilterQuality(t *testing.T) {
	f64 := func(v float64) *float64 { return &v }

	all := []models.VideoFace{
		{TimestampMS: 1, Brightness: f64(50), Sharpness: f64(40)}, // passes
		{TimestampMS: 2, Brightness: f64(40), Sharpness: f64(40)}, // brightness at threshold fails
		{TimestampMS: 3, Brightness: f64(50), Sharpness: f64(30)}, // sharpness at threshold fails
		{TimestampMS: 4, Brightness: nil, Sharpness: f64(90)},     // missing score dropped
		{TimestampMS: 5, Brightness: f64(90), Sharpness: nil},     // missing score dropped
	}

	got := filterQuality(all, 40, 30)
	if len(got) != 1 || got[0].TimestampMS != 1 {
		t.Errorf("filterQuality = %v; want only the first face", got)
	}
}
