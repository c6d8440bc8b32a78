package moment

import (
	"errors"
	"testing"
	"time"

	"github.com/your-org/momentmaker/internal/models"
)

func asset(kind models.MediaKind, key string) models.MediaAsset {
	return models.MediaAsset{Kind: kind, ObjectKey: key}
}

func ts(v int64) *int64 { return &v }

func TestSelectClipsUnfiltered(t *testing.T) {
	assets := []models.MediaAsset{
		asset(models.MediaKindImage, "user-media/u1/image/a.jpg"),
		asset(models.MediaKindVideo, "user-media/u1/video/b.mp4"),
		asset(models.MediaKindAudio, "user-media/u1/audio/c.mp3"),
	}

	got, err := SelectClips(assets, nil, false, 3*time.Second, 500*time.Millisecond)
	if err != nil {
		t.Fatalf("SelectClips: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2 (audio excluded)", len(got))
	}
	for _, c := range got {
		if len(c.Ranges) != 0 {
			t.Errorf("unfiltered candidate %s should be untrimmed", c.AssetKey)
		}
	}
}

func TestSelectClipsFiltered(t *testing.T) {
	assets := []models.MediaAsset{
		asset(models.MediaKindImage, "img1"),
		asset(models.MediaKindImage, "img2"),
		asset(models.MediaKindVideo, "vid1"),
	}
	occurrences := []models.Occurrence{
		{FaceKey: "f1", AssetKey: "img1"},
		{FaceKey: "f1", AssetKey: "vid1", TimestampMS: ts(1000)},
		{FaceKey: "f1", AssetKey: "vid1", TimestampMS: ts(1500)},
		{FaceKey: "f1", AssetKey: "vid1", TimestampMS: ts(9000)},
	}

	got, err := SelectClips(assets, occurrences, true, 3*time.Second, 500*time.Millisecond)
	if err != nil {
		t.Fatalf("SelectClips: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}

	byKey := map[string]Candidate{}
	for _, c := range got {
		byKey[c.AssetKey] = c
	}

	if _, ok := byKey["img2"]; ok {
		t.Error("img2 has no sightings and must not be selected")
	}
	if c := byKey["img1"]; len(c.Ranges) != 0 {
		t.Errorf("image candidate must be untrimmed, got ranges %v", c.Ranges)
	}
	if c := byKey["vid1"]; len(c.Ranges) != 2 {
		t.Errorf("video candidate ranges = %v; want two clusters", c.Ranges)
	}
}

func TestSelectClipsIgnoresStaleOccurrences(t *testing.T) {
	assets := []models.MediaAsset{asset(models.MediaKindImage, "img1")}
	occurrences := []models.Occurrence{
		{FaceKey: "f1", AssetKey: "img1"},
		{FaceKey: "f1", AssetKey: "deleted-asset"},
	}

	got, err := SelectClips(assets, occurrences, true, 3*time.Second, 500*time.Millisecond)
	if err != nil {
		t.Fatalf("SelectClips: %v", err)
	}
	if len(got) != 1 || got[0].AssetKey != "img1" {
		t.Errorf("got %v; want only img1", got)
	}
}

func TestSelectClipsEmptyIntersection(t *testing.T) {
	assets := []models.MediaAsset{asset(models.MediaKindImage, "img1")}

	_, err := SelectClips(assets, nil, true, 3*time.Second, 500*time.Millisecond)
	if !errors.Is(err, ErrNoOccurrences) {
		t.Errorf("err = %v; want ErrNoOccurrences", err)
	}
}

func TestSelectClipsNoVisualMedia(t *testing.T) {
	assets := []models.MediaAsset{asset(models.MediaKindAudio, "song.mp3")}

	_, err := SelectClips(assets, nil, false, 3*time.Second, 500*time.Millisecond)
	if !errors.Is(err, ErrNoOccurrences) {
		t.Errorf("err = %v; want ErrNoOccurrences", err)
	}
}
