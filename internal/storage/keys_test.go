package storage

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestFaceCropKey(t *testing.T) {
	key := FaceCropKey("u1")

	if !strings.HasPrefix(key, "user-media/u1/faces/") {
		t.Errorf("key %q not under the faces path", key)
	}
	if !strings.HasSuffix(key, ".jpg") {
		t.Errorf("key %q missing .jpg extension", key)
	}
	if key == FaceCropKey("u1") {
		t.Error("keys must be unique per call")
	}
}

func TestMomentKey(t *testing.T) {
	key := MomentKey("u1", "final_video_x.mp4")
	if key != "user-media/u1/moments/final_video_x.mp4" {
		t.Errorf("key = %q", key)
	}
}

func TestSongKey(t *testing.T) {
	key := SongKey("u1", "summer")
	if key != "user-media/u1/audio/summer.mp3" {
		t.Errorf("key = %q", key)
	}
}

func TestJobFacesKeyOutsideMediaPrefix(t *testing.T) {
	id := uuid.New()
	key := JobFacesKey(id)

	// Job artifacts must never land under user-media or the classifier
	// would try to analyze them.
	if strings.HasPrefix(key, MediaPrefix) {
		t.Errorf("job key %q leaks into the media layout", key)
	}
	if !strings.Contains(key, id.String()) {
		t.Errorf("job key %q missing job id", key)
	}
}

func TestMediaPrefixFor(t *testing.T) {
	got := MediaPrefixFor("u1", ImageSegment)
	if got != "user-media/u1/image/" {
		t.Errorf("prefix = %q", got)
	}
}
