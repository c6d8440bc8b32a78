package faces

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/your-org/momentmaker/internal/models"
	"github.com/your-org/momentmaker/internal/storage"
)

// fakeComparer scores by a fixed table keyed on target crop key.
type fakeComparer struct {
	scores    map[string]float64
	threshold float64
	calls     []string
}

func (f *fakeComparer) CompareFaces(ctx context.Context, source []byte, target string) (float64, error) {
	f.calls = append(f.calls, target)
	return f.scores[target], nil
}

func (f *fakeComparer) MatchThreshold() float64 { return f.threshold }

type fakeCatalogue struct {
	faces       map[string][]string
	identities  []string
	conflicts   int // number of appends that report a conflict before succeeding
	identityErr error
}

func (f *fakeCatalogue) GetCatalogueFaces(ctx context.Context, userID string) ([]string, error) {
	return f.faces[userID], nil
}

func (f *fakeCatalogue) AppendCatalogueFace(ctx context.Context, userID, cropKey string) (storage.AppendOutcome, error) {
	if f.conflicts > 0 {
		f.conflicts--
		return storage.OutcomeConflict, nil
	}
	if _, ok := f.faces[userID]; ok {
		f.faces[userID] = append(f.faces[userID], cropKey)
		return storage.OutcomeAppended, nil
	}
	if f.faces == nil {
		f.faces = map[string][]string{}
	}
	f.faces[userID] = []string{cropKey}
	return storage.OutcomeCreatedFresh, nil
}

func (f *fakeCatalogue) CreateIdentity(ctx context.Context, userID, cropKey string, embedding []float32) (*models.Identity, error) {
	if f.identityErr != nil {
		return nil, f.identityErr
	}
	f.identities = append(f.identities, cropKey)
	return &models.Identity{UserID: userID, CropKey: cropKey}, nil
}

type fakeCrops struct {
	stored []string
}

func (f *fakeCrops) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	f.stored = append(f.stored, key)
	return nil
}

func TestResolveFirstMatchWins(t *testing.T) {
	comparer := &fakeComparer{
		threshold: 90,
		scores:    map[string]float64{"crop-a": 95, "crop-b": 99},
	}
	cat := &fakeCatalogue{faces: map[string][]string{"u1": {"crop-a", "crop-b"}}}
	m := NewMatcher(comparer, cat, &fakeCrops{})

	res, err := m.Resolve(context.Background(), "u1", []byte("face"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.Matched || res.FaceKey != "crop-a" {
		t.Errorf("res = %+v; want first match crop-a", res)
	}
	// crop-b scores higher but must never be consulted.
	if len(comparer.calls) != 1 {
		t.Errorf("compared against %v; want just crop-a", comparer.calls)
	}
}

func TestResolveAtThresholdMatches(t *testing.T) {
	comparer := &fakeComparer{threshold: 90, scores: map[string]float64{"crop-a": 90}}
	cat := &fakeCatalogue{faces: map[string][]string{"u1": {"crop-a"}}}
	m := NewMatcher(comparer, cat, &fakeCrops{})

	res, err := m.Resolve(context.Background(), "u1", []byte("face"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.Matched {
		t.Error("similarity exactly at threshold must match")
	}
}

func TestResolveNewIdentity(t *testing.T) {
	comparer := &fakeComparer{threshold: 90, scores: map[string]float64{"crop-a": 10}}
	cat := &fakeCatalogue{faces: map[string][]string{"u1": {"crop-a"}}}
	crops := &fakeCrops{}
	m := NewMatcher(comparer, cat, crops)

	res, err := m.Resolve(context.Background(), "u1", []byte("face"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Matched {
		t.Fatal("below-threshold face must mint a new identity")
	}
	if !strings.Contains(res.FaceKey, "/faces/") || !strings.HasSuffix(res.FaceKey, ".jpg") {
		t.Errorf("face key %q not in the faces path", res.FaceKey)
	}
	if len(crops.stored) != 1 || crops.stored[0] != res.FaceKey {
		t.Errorf("canonical crop not stored under face key: %v", crops.stored)
	}
	if got := cat.faces["u1"]; len(got) != 2 || got[1] != res.FaceKey {
		t.Errorf("catalogue = %v; want crop-a plus new face", got)
	}
	if len(cat.identities) != 1 {
		t.Errorf("identities = %v; want one new row", cat.identities)
	}
}

func TestResolveEmptyCatalogueCreatesFirstIdentity(t *testing.T) {
	m := NewMatcher(&fakeComparer{threshold: 90}, &fakeCatalogue{}, &fakeCrops{})

	res, err := m.Resolve(context.Background(), "u1", []byte("face"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Matched {
		t.Error("empty catalogue cannot match")
	}
	if res.FaceKey == "" {
		t.Error("expected a new face key")
	}
}

func TestResolveRetriesConflictOnce(t *testing.T) {
	cat := &fakeCatalogue{conflicts: 1}
	m := NewMatcher(&fakeComparer{threshold: 90}, cat, &fakeCrops{})

	res, err := m.Resolve(context.Background(), "u1", []byte("face"))
	if err != nil {
		t.Fatalf("Resolve after one conflict: %v", err)
	}
	if res.FaceKey == "" {
		t.Error("expected face key after conflict retry")
	}
}

func TestResolveFailsWhenIdentityRowFails(t *testing.T) {
	cat := &fakeCatalogue{identityErr: errors.New("insert identity: connection reset")}
	m := NewMatcher(&fakeComparer{threshold: 90}, cat, &fakeCrops{})

	// A catalogue entry without an identity row would be invisible to
	// listings, so registration must report the failure instead of warning.
	if _, err := m.Resolve(context.Background(), "u1", []byte("face")); err == nil {
		t.Fatal("expected error when the identity row cannot be written")
	}
}

func TestResolveAgainstIgnoresLaterAdditions(t *testing.T) {
	comparer := &fakeComparer{threshold: 90, scores: map[string]float64{}}
	cat := &fakeCatalogue{faces: map[string][]string{"u1": {}}}
	m := NewMatcher(comparer, cat, &fakeCrops{})

	snapshot := []string{}

	// Two unmatched faces against the same snapshot each mint an identity,
	// even though the first one is in the live catalogue by the time the
	// second resolves.
	first, err := m.ResolveAgainst(context.Background(), "u1", []byte("f1"), snapshot)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := m.ResolveAgainst(context.Background(), "u1", []byte("f2"), snapshot)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}

	if first.FaceKey == second.FaceKey {
		t.Error("snapshot resolution must not see identities created mid-job")
	}
	if len(comparer.calls) != 0 {
		t.Errorf("no comparisons expected against an empty snapshot, got %v", comparer.calls)
	}
}
