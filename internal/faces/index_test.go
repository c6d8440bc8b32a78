package faces

import (
	"context"
	"testing"

	"github.com/your-org/momentmaker/internal/models"
	"github.com/your-org/momentmaker/internal/storage"
)

type fakeOccurrences struct {
	records   []models.Occurrence
	conflicts int
}

func (f *fakeOccurrences) AppendOccurrence(ctx context.Context, userID, faceKey string, loc models.Location) (storage.AppendOutcome, error) {
	if f.conflicts > 0 {
		f.conflicts--
		return storage.OutcomeConflict, nil
	}
	f.records = append(f.records, models.Occurrence{
		FaceKey:     faceKey,
		AssetKey:    loc.AssetKey,
		TimestampMS: loc.TimestampMS,
	})
	return storage.OutcomeAppended, nil
}

func (f *fakeOccurrences) GetOccurrences(ctx context.Context, userID string, faceKeys []string) ([]models.Occurrence, error) {
	if len(faceKeys) == 0 {
		return f.records, nil
	}
	want := map[string]bool{}
	for _, k := range faceKeys {
		want[k] = true
	}
	var out []models.Occurrence
	for _, r := range f.records {
		if want[r.FaceKey] {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestRecordIsAppendOnly(t *testing.T) {
	store := &fakeOccurrences{}
	idx := NewIndex(store)
	ctx := context.Background()

	loc := models.Location{AssetKey: "img1"}
	for i := 0; i < 3; i++ {
		if err := idx.Record(ctx, "u1", "f1", loc); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}

	// Re-analysis appends again; nothing is rewritten.
	if len(store.records) != 3 {
		t.Errorf("records = %d; want 3", len(store.records))
	}
}

func TestRecordRetriesConflictOnce(t *testing.T) {
	store := &fakeOccurrences{conflicts: 1}
	idx := NewIndex(store)

	if err := idx.Record(context.Background(), "u1", "f1", models.Location{AssetKey: "img1"}); err != nil {
		t.Fatalf("Record after conflict: %v", err)
	}
	if len(store.records) != 1 {
		t.Errorf("records = %d; want 1", len(store.records))
	}
}

func TestLookupDeduplicates(t *testing.T) {
	store := &fakeOccurrences{}
	idx := NewIndex(store)
	ctx := context.Background()

	loc := models.Location{AssetKey: "img1"}
	_ = idx.Record(ctx, "u1", "f1", loc)
	_ = idx.Record(ctx, "u1", "f1", loc)

	ts := int64(1000)
	_ = idx.Record(ctx, "u1", "f1", models.Location{AssetKey: "vid1", TimestampMS: &ts})

	got, err := idx.Lookup(ctx, "u1", []string{"f1"})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d occurrences, want 2 after dedup: %v", len(got), got)
	}
}

func TestLookupDistinguishesTimestamps(t *testing.T) {
	store := &fakeOccurrences{}
	idx := NewIndex(store)
	ctx := context.Background()

	t1, t2 := int64(1000), int64(2000)
	_ = idx.Record(ctx, "u1", "f1", models.Location{AssetKey: "vid1", TimestampMS: &t1})
	_ = idx.Record(ctx, "u1", "f1", models.Location{AssetKey: "vid1", TimestampMS: &t2})

	got, err := idx.Lookup(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("different timestamps must both survive, got %v", got)
	}
}

func TestLookupFiltersByFace(t *testing.T) {
	store := &fakeOccurrences{}
	idx := NewIndex(store)
	ctx := context.Background()

	_ = idx.Record(ctx, "u1", "f1", models.Location{AssetKey: "img1"})
	_ = idx.Record(ctx, "u1", "f2", models.Location{AssetKey: "img2"})

	got, err := idx.Lookup(ctx, "u1", []string{"f2"})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(got) != 1 || got[0].AssetKey != "img2" {
		t.Errorf("got %v; want only f2's occurrence", got)
	}
}
